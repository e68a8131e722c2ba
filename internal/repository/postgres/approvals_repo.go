package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/baharkarakas/approval-backend/internal/apperr"
	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/models"
	"github.com/baharkarakas/approval-backend/internal/repository"
)

type approvalsRepo struct{}

var approvalFilterable = repository.Columns{
	"id":          "id",
	"entityKind":  "entity_kind",
	"entityId":    "entity_id",
	"actionType":  "action_type",
	"requestedBy": "requested_by",
	"requestedAt": "requested_at",
	"status":      "status",
	"approvedBy":  "approved_by",
	"approvedAt":  "approved_at",
}

const approvalColumns = `id, entity_kind, entity_id, action_type, changes, requested_by, requested_at, status, approved_by, approved_at`

func scanChangeRequest(row pgx.Row) (models.ChangeRequest, error) {
	var (
		cr  models.ChangeRequest
		raw []byte
	)
	err := row.Scan(&cr.ID, &cr.EntityKind, &cr.EntityID, &cr.ActionType, &raw,
		&cr.RequestedBy, &cr.RequestedAt, &cr.Status, &cr.ApprovedBy, &cr.ApprovedAt)
	if err != nil {
		return models.ChangeRequest{}, err
	}
	if err := json.Unmarshal(raw, &cr.Changes); err != nil {
		return models.ChangeRequest{}, err
	}
	return cr, nil
}

func (r *approvalsRepo) Insert(ctx context.Context, q db.Querier, cr models.ChangeRequest) (models.ChangeRequest, error) {
	if cr.ID == uuid.Nil {
		cr.ID = uuid.New()
	}
	if cr.Changes.Old == nil {
		cr.Changes.Old = models.Fields{}
	}
	if cr.Changes.New == nil {
		cr.Changes.New = models.Fields{}
	}
	changes, err := json.Marshal(cr.Changes)
	if err != nil {
		return models.ChangeRequest{}, err
	}
	cr.Status = models.RequestPending

	err = q.QueryRow(ctx,
		`INSERT INTO approvals(id, entity_kind, entity_id, action_type, changes, requested_by, status)
		 VALUES($1,$2,$3,$4,$5,$6,$7)
		 RETURNING requested_at`,
		cr.ID, cr.EntityKind, cr.EntityID, cr.ActionType, changes, cr.RequestedBy, cr.Status,
	).Scan(&cr.RequestedAt)
	return cr, err
}

// FetchForDecision only sees pending requests, which also rules out a
// request already carrying the status being applied. FOR UPDATE makes a
// concurrent decision on the same request wait, then miss.
func (r *approvalsRepo) FetchForDecision(ctx context.Context, q db.Querier, id uuid.UUID, decision models.Decision) (models.ChangeRequest, error) {
	cr, err := scanChangeRequest(q.QueryRow(ctx,
		`SELECT `+approvalColumns+`
		   FROM approvals
		  WHERE id=$1 AND status=$2
		  FOR UPDATE`,
		id, models.RequestPending,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ChangeRequest{}, &apperr.NotFoundError{
			Resource: "change request",
			ID:       id.String(),
			Reason:   "not found or already processed",
		}
	}
	return cr, err
}

func (r *approvalsRepo) RecordDecision(ctx context.Context, q db.Querier, id uuid.UUID, decidedBy int64, status models.RequestStatus) (time.Time, error) {
	var at time.Time
	err := q.QueryRow(ctx,
		`UPDATE approvals
		    SET status=$2, approved_by=$3, approved_at=now()
		  WHERE id=$1 AND status=$4
		RETURNING approved_at`,
		id, status, decidedBy, models.RequestPending,
	).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, notFound("change request", id)
	}
	return at, err
}

func (r *approvalsRepo) List(ctx context.Context, q db.Querier, page, pageSize int, filters []repository.Filter) (models.Page[models.ChangeRequest], error) {
	return listPage(ctx, q, listQuery{
		from:    "approvals",
		columns: approvalColumns,
		orderBy: "requested_at DESC, id",
		filter:  approvalFilterable,
	}, page, pageSize, filters, func(rows pgx.Rows) (models.ChangeRequest, error) { return scanChangeRequest(rows) })
}
