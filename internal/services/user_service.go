package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/baharkarakas/approval-backend/internal/apperr"
	"github.com/baharkarakas/approval-backend/internal/auth"
	"github.com/baharkarakas/approval-backend/internal/bulk"
	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/models"
	repo "github.com/baharkarakas/approval-backend/internal/repository"
)

const initialPasswordLength = 12

type UserInput struct {
	Username    string  `json:"username" validate:"required,min=3,max=50"`
	FirstName   *string `json:"firstName" validate:"omitempty,max=100"`
	LastName    *string `json:"lastName" validate:"omitempty,max=100"`
	Email       *string `json:"email" validate:"omitempty,email,max=100"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=20"`
	AvatarURL   *string `json:"avatarUrl" validate:"omitempty,url"`
	BranchID    *int64  `json:"branchId" validate:"omitempty,gt=0"`
	RoleID      *int64  `json:"roleId" validate:"omitempty,gt=0"`
}

type UserPatch struct {
	Username    *string `json:"username" validate:"omitempty,min=3,max=50"`
	Password    *string `json:"password" validate:"omitempty,min=6,max=100"`
	FirstName   *string `json:"firstName" validate:"omitempty,max=100"`
	LastName    *string `json:"lastName" validate:"omitempty,max=100"`
	Email       *string `json:"email" validate:"omitempty,email,max=100"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=20"`
	AvatarURL   *string `json:"avatarUrl" validate:"omitempty,url"`
	BranchID    *int64  `json:"branchId" validate:"omitempty,gt=0"`
	RoleID      *int64  `json:"roleId" validate:"omitempty,gt=0"`
	Status      *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

type UserUpdateItem struct {
	ID int64 `json:"id" validate:"required,gt=0"`
	UserPatch
}

// CreatedUser carries the generated password; it is not stored anywhere in
// plain text.
type CreatedUser struct {
	Request           models.ChangeRequest `json:"request"`
	TemporaryPassword string               `json:"temporary_password"`
}

type UserService struct {
	db        db.Beginner
	q         db.Querier
	users     repo.Users
	approvals *ApprovalService
	runner    *bulk.Runner
	txTimeout time.Duration
	log       *slog.Logger
}

func NewUserService(b db.Beginner, q db.Querier, users repo.Users, approvals *ApprovalService, runner *bulk.Runner, txTimeout time.Duration, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{db: b, q: q, users: users, approvals: approvals, runner: runner, txTimeout: txTimeout, log: log}
}

func (s *UserService) List(ctx context.Context, page, pageSize int, filters []repo.Filter) (models.Page[models.UserDetails], error) {
	out, err := s.users.List(ctx, s.q, page, pageSize, filters)
	return out, apperr.Translate(err)
}

func (s *UserService) Get(ctx context.Context, id int64) (models.UserDetails, error) {
	u, err := s.users.GetByID(ctx, s.q, id)
	return u, apperr.Translate(err)
}

func (s *UserService) Create(ctx context.Context, actor int64, in UserInput) (CreatedUser, error) {
	var out CreatedUser
	err := db.WithTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		out, err = s.createTx(ctx, tx, actor, in)
		return err
	})
	if err != nil {
		return out, logFailure(ctx, s.log, "USER_CREATE", err)
	}
	s.approvals.Submitted(ctx, out.Request)
	return out, nil
}

func (s *UserService) Update(ctx context.Context, actor, id int64, patch UserPatch) (models.ChangeRequest, error) {
	var cr models.ChangeRequest
	err := db.WithTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		cr, err = s.updateTx(ctx, tx, actor, id, patch)
		return err
	})
	if err != nil {
		return cr, logFailure(ctx, s.log, "USER_UPDATE", err)
	}
	s.approvals.Submitted(ctx, cr)
	return cr, nil
}

func (s *UserService) Delete(ctx context.Context, actor, id int64) (models.ChangeRequest, error) {
	var cr models.ChangeRequest
	err := db.WithTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		cr, err = s.deleteTx(ctx, tx, actor, id)
		return err
	})
	if err != nil {
		return cr, logFailure(ctx, s.log, "USER_DELETE", err)
	}
	s.approvals.Submitted(ctx, cr)
	return cr, nil
}

func (s *UserService) CreateBulk(ctx context.Context, actor int64, items []UserInput, limit int) bulk.Result {
	crs := make([]*models.ChangeRequest, len(items))
	res := bulk.RunItems(ctx, s.runner, items, limit, func(ctx context.Context, in UserInput, i int, tx pgx.Tx) error {
		out, err := s.createTx(ctx, tx, actor, in)
		if err != nil {
			return err
		}
		crs[i] = &out.Request
		return nil
	})
	s.approvals.submittedCommitted(ctx, res, crs)
	s.logBulk("USER_CREATE_BULK", res)
	return res
}

func (s *UserService) UpdateBulk(ctx context.Context, actor int64, items []UserUpdateItem, limit int) bulk.Result {
	crs := make([]*models.ChangeRequest, len(items))
	res := bulk.RunItems(ctx, s.runner, items, limit, func(ctx context.Context, it UserUpdateItem, i int, tx pgx.Tx) error {
		cr, err := s.updateTx(ctx, tx, actor, it.ID, it.UserPatch)
		if err != nil {
			return err
		}
		crs[i] = &cr
		return nil
	})
	s.approvals.submittedCommitted(ctx, res, crs)
	s.logBulk("USER_UPDATE_BULK", res)
	return res
}

func (s *UserService) DeleteBulk(ctx context.Context, actor int64, ids []int64, limit int) bulk.Result {
	crs := make([]*models.ChangeRequest, len(ids))
	res := bulk.RunItems(ctx, s.runner, ids, limit, func(ctx context.Context, id int64, i int, tx pgx.Tx) error {
		cr, err := s.deleteTx(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		crs[i] = &cr
		return nil
	})
	s.approvals.submittedCommitted(ctx, res, crs)
	s.logBulk("USER_DELETE_BULK", res)
	return res
}

func (s *UserService) logBulk(process string, res bulk.Result) {
	s.log.Info("bulk finished", "process", process,
		"total", res.Summary.Total, "success", res.Summary.Success, "failed", res.Summary.Failed)
}

func (s *UserService) createTx(ctx context.Context, q db.Querier, actor int64, in UserInput) (CreatedUser, error) {
	password, err := auth.RandomPassword(initialPasswordLength)
	if err != nil {
		return CreatedUser{}, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return CreatedUser{}, err
	}

	u, err := s.users.InsertUser(ctx, q, models.User{
		Username:     in.Username,
		PasswordHash: hash,
		Status:       models.StatusPending,
		CreatedBy:    &actor,
	})
	if err != nil {
		return CreatedUser{}, err
	}
	profile := models.UserProfile{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		AvatarURL:   in.AvatarURL,
	}
	if err := s.users.InsertProfile(ctx, q, u.ID, profile); err != nil {
		return CreatedUser{}, err
	}
	if in.BranchID != nil {
		if err := s.users.ReplaceBranch(ctx, q, u.ID, in.BranchID); err != nil {
			return CreatedUser{}, err
		}
	}
	if in.RoleID != nil {
		if err := s.users.ReplaceRole(ctx, q, u.ID, in.RoleID); err != nil {
			return CreatedUser{}, err
		}
	}

	details := models.UserDetails{User: u, Profile: profile, BranchID: in.BranchID, RoleID: in.RoleID}
	state := details.Tables()
	delete(state[models.TableUsers], "status")
	cr, err := s.approvals.Submit(ctx, q, SubmitInput{
		EntityKind:  models.EntityUsers,
		EntityID:    u.ID,
		ActionType:  models.ActionCreate,
		RequestedBy: actor,
		OldTables:   map[string]models.Fields{},
		NewTables:   state,
	})
	if err != nil {
		return CreatedUser{}, err
	}
	return CreatedUser{Request: cr, TemporaryPassword: password}, nil
}

func (s *UserService) updateTx(ctx context.Context, q db.Querier, actor, id int64, patch UserPatch) (models.ChangeRequest, error) {
	cur, err := s.users.GetByID(ctx, q, id)
	if err != nil {
		return models.ChangeRequest{}, err
	}
	old := cur.Tables()
	next, err := applyUserPatch(cur, patch)
	if err != nil {
		return models.ChangeRequest{}, err
	}

	cr, err := s.approvals.Submit(ctx, q, SubmitInput{
		EntityKind:    models.EntityUsers,
		EntityID:      id,
		ActionType:    models.ActionUpdate,
		RequestedBy:   actor,
		OldTables:     old,
		NewTables:     next,
		CurrentStatus: cur.Status,
	})
	if err != nil {
		return models.ChangeRequest{}, err
	}
	return cr, s.users.UpdateStatus(ctx, q, id, models.StatusPending, actor)
}

func (s *UserService) deleteTx(ctx context.Context, q db.Querier, actor, id int64) (models.ChangeRequest, error) {
	cur, err := s.users.GetByID(ctx, q, id)
	if err != nil {
		return models.ChangeRequest{}, err
	}
	cr, err := s.approvals.Submit(ctx, q, SubmitInput{
		EntityKind:    models.EntityUsers,
		EntityID:      id,
		ActionType:    models.ActionDelete,
		RequestedBy:   actor,
		OldTables:     cur.Tables(),
		NewTables:     map[string]models.Fields{},
		CurrentStatus: cur.Status,
	})
	if err != nil {
		return models.ChangeRequest{}, err
	}
	return cr, s.users.UpdateStatus(ctx, q, id, models.StatusPending, actor)
}

// applyUserPatch returns the per-table state after patch. The password is
// re-hashed only when it differs from the stored one, so an unchanged
// password never shows up in the diff.
func applyUserPatch(cur models.UserDetails, p UserPatch) (map[string]models.Fields, error) {
	next := cur
	if p.Username != nil {
		next.Username = *p.Username
	}
	if p.Password != nil && auth.VerifyPassword(*p.Password, cur.PasswordHash) != nil {
		hash, err := auth.HashPassword(*p.Password)
		if err != nil {
			return nil, err
		}
		next.PasswordHash = hash
	}
	if p.Status != nil {
		next.Status = models.EntityStatus(*p.Status)
	}
	if p.FirstName != nil {
		next.Profile.FirstName = p.FirstName
	}
	if p.LastName != nil {
		next.Profile.LastName = p.LastName
	}
	if p.Email != nil {
		next.Profile.Email = p.Email
	}
	if p.PhoneNumber != nil {
		next.Profile.PhoneNumber = p.PhoneNumber
	}
	if p.AvatarURL != nil {
		next.Profile.AvatarURL = p.AvatarURL
	}
	if p.BranchID != nil {
		next.BranchID = p.BranchID
	}
	if p.RoleID != nil {
		next.RoleID = p.RoleID
	}
	return next.Tables(), nil
}
