package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/baharkarakas/approval-backend/internal/apperr"
	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/models"
	repo "github.com/baharkarakas/approval-backend/internal/repository"
)

type BankInput struct {
	BankCode    string  `json:"bankCode" validate:"required,len=3,numeric"`
	BankSwift   string  `json:"bankSwift" validate:"required,min=8,max=11,alphanum"`
	Name        string  `json:"name" validate:"required,max=50"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

// BankPatch holds the fields an update request sets; nil means unchanged.
type BankPatch struct {
	BankCode    *string `json:"bankCode" validate:"omitempty,len=3,numeric"`
	BankSwift   *string `json:"bankSwift" validate:"omitempty,min=8,max=11,alphanum"`
	Name        *string `json:"name" validate:"omitempty,max=50"`
	Description *string `json:"description" validate:"omitempty,max=255"`
	Status      *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (p BankPatch) Fields() models.Fields {
	f := models.Fields{}
	setIf(f, "bankCode", p.BankCode)
	setIf(f, "bankSwift", p.BankSwift)
	setIf(f, "name", p.Name)
	setIf(f, "description", p.Description)
	setIf(f, "status", p.Status)
	return f
}

func setIf[T any](f models.Fields, key string, v *T) {
	if v != nil {
		f[key] = *v
	}
}

type BankService struct {
	db        db.Beginner
	q         db.Querier
	banks     repo.Banks
	approvals *ApprovalService
	txTimeout time.Duration
	log       *slog.Logger
}

func NewBankService(b db.Beginner, q db.Querier, banks repo.Banks, approvals *ApprovalService, txTimeout time.Duration, log *slog.Logger) *BankService {
	if log == nil {
		log = slog.Default()
	}
	return &BankService{db: b, q: q, banks: banks, approvals: approvals, txTimeout: txTimeout, log: log}
}

func (s *BankService) List(ctx context.Context, page, pageSize int, filters []repo.Filter) (models.Page[models.Bank], error) {
	out, err := s.banks.List(ctx, s.q, page, pageSize, filters)
	return out, apperr.Translate(err)
}

func (s *BankService) Get(ctx context.Context, id int64) (models.Bank, error) {
	b, err := s.banks.GetByID(ctx, s.q, id)
	return b, apperr.Translate(err)
}

// Create inserts the bank in pending and files the create request in the
// same transaction.
func (s *BankService) Create(ctx context.Context, actor int64, in BankInput) (models.ChangeRequest, error) {
	var cr models.ChangeRequest
	err := db.WithTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx pgx.Tx) error {
		b, err := s.banks.Insert(ctx, tx, models.Bank{
			BankCode:    in.BankCode,
			BankSwift:   in.BankSwift,
			Name:        in.Name,
			Description: in.Description,
			Status:      models.StatusPending,
			CreatedBy:   &actor,
		})
		if err != nil {
			return err
		}
		state := b.Fields()
		delete(state, "status")
		cr, err = s.approvals.Submit(ctx, tx, SubmitInput{
			EntityKind:  models.EntityBanks,
			EntityID:    b.ID,
			ActionType:  models.ActionCreate,
			RequestedBy: actor,
			Old:         models.Fields{},
			New:         state,
		})
		return err
	})
	if err != nil {
		return cr, logFailure(ctx, s.log, "BANK_CREATE", err)
	}
	s.approvals.Submitted(ctx, cr)
	return cr, nil
}

func (s *BankService) Update(ctx context.Context, actor, id int64, patch BankPatch) (models.ChangeRequest, error) {
	var cr models.ChangeRequest
	err := db.WithTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx pgx.Tx) error {
		cur, err := s.live(ctx, tx, id)
		if err != nil {
			return err
		}
		old := cur.Fields()
		cr, err = s.approvals.Submit(ctx, tx, SubmitInput{
			EntityKind:    models.EntityBanks,
			EntityID:      id,
			ActionType:    models.ActionUpdate,
			RequestedBy:   actor,
			Old:           old,
			New:           old.Overlay(patch.Fields()),
			CurrentStatus: cur.Status,
		})
		if err != nil {
			return err
		}
		return s.banks.UpdateStatus(ctx, tx, id, models.StatusPending, actor)
	})
	if err != nil {
		return cr, logFailure(ctx, s.log, "BANK_UPDATE", err)
	}
	s.approvals.Submitted(ctx, cr)
	return cr, nil
}

func (s *BankService) Delete(ctx context.Context, actor, id int64) (models.ChangeRequest, error) {
	var cr models.ChangeRequest
	err := db.WithTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx pgx.Tx) error {
		cur, err := s.live(ctx, tx, id)
		if err != nil {
			return err
		}
		cr, err = s.approvals.Submit(ctx, tx, SubmitInput{
			EntityKind:    models.EntityBanks,
			EntityID:      id,
			ActionType:    models.ActionDelete,
			RequestedBy:   actor,
			Old:           cur.Fields(),
			New:           models.Fields{},
			CurrentStatus: cur.Status,
		})
		if err != nil {
			return err
		}
		return s.banks.UpdateStatus(ctx, tx, id, models.StatusPending, actor)
	})
	if err != nil {
		return cr, logFailure(ctx, s.log, "BANK_DELETE", err)
	}
	s.approvals.Submitted(ctx, cr)
	return cr, nil
}

// live loads a bank that can still receive a change request.
func (s *BankService) live(ctx context.Context, q db.Querier, id int64) (models.Bank, error) {
	b, err := s.banks.GetByID(ctx, q, id)
	if err != nil {
		return models.Bank{}, err
	}
	if b.Status == models.StatusDeleted {
		return models.Bank{}, &apperr.NotFoundError{Resource: "bank", ID: itoa(id), Reason: "is deleted"}
	}
	return b, nil
}
