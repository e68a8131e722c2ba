package services

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/baharkarakas/approval-backend/internal/apperr"
	"github.com/baharkarakas/approval-backend/internal/approval"
	"github.com/baharkarakas/approval-backend/internal/audit"
	"github.com/baharkarakas/approval-backend/internal/bulk"
	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/metrics"
	"github.com/baharkarakas/approval-backend/internal/models"
	repo "github.com/baharkarakas/approval-backend/internal/repository"
)

// Auditor is satisfied by *audit.Recorder.
type Auditor interface {
	Record(ev audit.Event)
}

type SubmitInput struct {
	EntityKind  models.EntityKind
	EntityID    int64
	ActionType  models.ActionType
	RequestedBy int64

	// Old and New describe a single-table entity.
	Old, New models.Fields
	// OldTables and NewTables describe a composite entity; they take
	// precedence when either is set.
	OldTables, NewTables map[string]models.Fields

	// CurrentStatus is the live status before the request parks the row in
	// pending. Updates and deletes record it on the old side so a rejection
	// puts it back.
	CurrentStatus models.EntityStatus
}

func (in SubmitInput) composite() bool { return in.OldTables != nil || in.NewTables != nil }

type DecisionItem struct {
	ID       uuid.UUID       `json:"id" validate:"required"`
	Decision models.Decision `json:"status" validate:"required,oneof=approved rejected"`
}

type ApprovalService struct {
	q          db.Querier
	approvals  repo.Approvals
	dispatcher *approval.Dispatcher
	runner     *bulk.Runner
	audit      Auditor
	log        *slog.Logger
}

func NewApprovalService(q db.Querier, approvals repo.Approvals, d *approval.Dispatcher, runner *bulk.Runner, a Auditor, log *slog.Logger) *ApprovalService {
	if log == nil {
		log = slog.Default()
	}
	return &ApprovalService{q: q, approvals: approvals, dispatcher: d, runner: runner, audit: a, log: log}
}

// Submit records a change request on q, normally the transaction that
// also parks the entity in pending. A submission that changes nothing is
// refused with NoChangesError unless it is a delete. Callers pass the
// stored request to Submitted once that transaction commits.
func (s *ApprovalService) Submit(ctx context.Context, q db.Querier, in SubmitInput) (models.ChangeRequest, error) {
	var cr *models.ChangeRequest
	if in.composite() {
		cr = approval.BuildMulti(in.EntityKind, in.EntityID, in.ActionType, in.RequestedBy, in.OldTables, in.NewTables)
	} else {
		cr = approval.Build(in.EntityKind, in.EntityID, in.ActionType, in.RequestedBy, in.Old, in.New)
	}
	if cr == nil {
		return models.ChangeRequest{}, &apperr.NoChangesError{EntityKind: string(in.EntityKind), EntityID: in.EntityID}
	}
	if in.CurrentStatus != "" && in.ActionType != models.ActionCreate {
		pinStatus(cr, in.composite(), in.CurrentStatus)
	}

	stored, err := s.approvals.Insert(ctx, q, *cr)
	if err != nil {
		return models.ChangeRequest{}, apperr.Translate(err)
	}
	return stored, nil
}

// Submitted counts and audits a committed submission.
func (s *ApprovalService) Submitted(ctx context.Context, cr models.ChangeRequest) {
	metrics.ChangeRequestsSubmitted.WithLabelValues(string(cr.EntityKind), cr.ActionType.String()).Inc()
	s.log.DebugContext(ctx, "change request submitted",
		"process", "APPROVAL_SUBMIT",
		"request_id", cr.ID,
		"entity_kind", cr.EntityKind,
		"entity_id", cr.EntityID,
		"action", cr.ActionType.String(),
	)
	if s.audit != nil {
		s.audit.Record(audit.Event{
			EntityType: string(cr.EntityKind),
			EntityID:   strconv.FormatInt(cr.EntityID, 10),
			Action:     "submit_" + cr.ActionType.String(),
			ActorID:    cr.RequestedBy,
			Details:    map[string]any{"request_id": cr.ID.String()},
		})
	}
}

// submittedCommitted runs Submitted for every bulk item that committed.
func (s *ApprovalService) submittedCommitted(ctx context.Context, res bulk.Result, crs []*models.ChangeRequest) {
	failed := failedItems(res)
	for i, cr := range crs {
		if cr != nil && !failed[i] {
			s.Submitted(ctx, *cr)
		}
	}
}

func pinStatus(cr *models.ChangeRequest, composite bool, status models.EntityStatus) {
	if !composite {
		cr.Changes.Old["status"] = string(status)
		return
	}
	users, _ := cr.Changes.Old.Table(models.TableUsers)
	users = users.Clone()
	users["status"] = string(status)
	cr.Changes.Old[models.TableUsers] = users
}

func (s *ApprovalService) Decide(ctx context.Context, id uuid.UUID, actor int64, decision models.Decision) (approval.DecisionResult, error) {
	return s.dispatcher.Decide(ctx, id, actor, decision)
}

// DecideBulk decides every item in its own transaction. Post-commit hooks
// run for the items that committed.
func (s *ApprovalService) DecideBulk(ctx context.Context, actor int64, items []DecisionItem, limit int) bulk.Result {
	decided := make([]*approval.DecisionResult, len(items))
	res := bulk.RunItems(ctx, s.runner, items, limit, func(ctx context.Context, item DecisionItem, i int, tx pgx.Tx) error {
		r, err := s.dispatcher.DecideTx(ctx, tx, item.ID, actor, item.Decision)
		if err != nil {
			return err
		}
		decided[i] = &r
		return nil
	})

	failed := failedItems(res)
	for i, r := range decided {
		if r != nil && !failed[i] {
			s.dispatcher.AfterCommit(ctx, *r)
		}
	}
	s.log.Info("bulk decision finished",
		"process", "APPROVAL_DECIDE_BULK",
		"total", res.Summary.Total,
		"success", res.Summary.Success,
		"failed", res.Summary.Failed,
	)
	return res
}

func failedItems(res bulk.Result) map[int]bool {
	failed := make(map[int]bool, len(res.Errors))
	for _, e := range res.Errors {
		failed[e.Index] = true
	}
	return failed
}

func (s *ApprovalService) List(ctx context.Context, page, pageSize int, filters []repo.Filter) (models.Page[models.ChangeRequest], error) {
	out, err := s.approvals.List(ctx, s.q, page, pageSize, filters)
	return out, apperr.Translate(err)
}
