package approval

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/baharkarakas/approval-backend/internal/apperr"
	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/metrics"
	"github.com/baharkarakas/approval-backend/internal/models"
	"github.com/baharkarakas/approval-backend/internal/repository"
)

type DecisionResult struct {
	RequestID  uuid.UUID            `json:"request_id"`
	EntityKind models.EntityKind    `json:"entity_kind"`
	EntityID   int64                `json:"entity_id"`
	ActionType models.ActionType    `json:"action_type"`
	Status     models.RequestStatus `json:"status"`
	DecidedBy  int64                `json:"decided_by"`
	DecidedAt  time.Time            `json:"decided_at"`
}

// Hook runs after a decision has committed. It cannot undo the decision, so
// it reports its own failures.
type Hook func(ctx context.Context, res DecisionResult)

type Dispatcher struct {
	db        db.Beginner
	approvals repository.Approvals
	registry  *Registry
	txTimeout time.Duration
	log       *slog.Logger
	hooks     []Hook
}

func NewDispatcher(b db.Beginner, approvals repository.Approvals, registry *Registry, txTimeout time.Duration, log *slog.Logger, hooks ...Hook) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		db:        b,
		approvals: approvals,
		registry:  registry,
		txTimeout: txTimeout,
		log:       log,
		hooks:     hooks,
	}
}

// Decide applies one decision in its own transaction. On any failure
// nothing is written: the entity, the request and the audit trail keep
// their previous state.
func (d *Dispatcher) Decide(ctx context.Context, id uuid.UUID, decidedBy int64, decision models.Decision) (DecisionResult, error) {
	start := time.Now()
	var res DecisionResult
	err := db.WithTx(ctx, d.db, d.txTimeout, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		res, err = d.DecideTx(ctx, tx, id, decidedBy, decision)
		return err
	})
	metrics.DecisionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		err = apperr.Translate(err)
		metrics.DecisionsFailed.WithLabelValues(apperr.Code(err)).Inc()
		level := slog.LevelWarn
		if apperr.IsOperatorAlert(err) {
			level = slog.LevelError
		}
		d.log.Log(ctx, level, "decision rolled back",
			"process", "APPROVAL_DECIDE", "request_id", id, "decision", decision, "err", err)
		return DecisionResult{}, err
	}

	d.AfterCommit(ctx, res)
	return res, nil
}

// DecideTx runs the decision steps on a transaction owned by the caller.
// The caller commits, and calls AfterCommit once it has.
func (d *Dispatcher) DecideTx(ctx context.Context, q db.Querier, id uuid.UUID, decidedBy int64, decision models.Decision) (DecisionResult, error) {
	cr, err := d.approvals.FetchForDecision(ctx, q, id, decision)
	if err != nil {
		return DecisionResult{}, err
	}
	policy, err := d.registry.Lookup(cr.EntityKind)
	if err != nil {
		return DecisionResult{}, err
	}
	err = policy.Apply(ctx, q, ApplyInput{
		EntityID:   cr.EntityID,
		ActionType: cr.ActionType,
		Changes:    cr.Changes,
		Decision:   decision,
		Actor:      decidedBy,
	})
	if err != nil {
		return DecisionResult{}, err
	}
	decidedAt, err := d.approvals.RecordDecision(ctx, q, id, decidedBy, decision.Status())
	if err != nil {
		return DecisionResult{}, err
	}

	return DecisionResult{
		RequestID:  id,
		EntityKind: cr.EntityKind,
		EntityID:   cr.EntityID,
		ActionType: cr.ActionType,
		Status:     decision.Status(),
		DecidedBy:  decidedBy,
		DecidedAt:  decidedAt,
	}, nil
}

func (d *Dispatcher) AfterCommit(ctx context.Context, res DecisionResult) {
	metrics.DecisionsTotal.WithLabelValues(string(res.EntityKind), string(res.Status)).Inc()
	d.log.Info("decision committed",
		"process", "APPROVAL_DECIDE",
		"request_id", res.RequestID,
		"entity_kind", res.EntityKind,
		"entity_id", res.EntityID,
		"action", res.ActionType.String(),
		"status", res.Status,
		"decided_by", res.DecidedBy,
	)
	for _, h := range d.hooks {
		h(ctx, res)
	}
}
