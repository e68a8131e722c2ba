// Package audit writes audit_logs rows off the request path.
package audit

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/baharkarakas/approval-backend/internal/approval"
	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/metrics"
	"github.com/baharkarakas/approval-backend/internal/models"
	"github.com/baharkarakas/approval-backend/internal/repository"
	"github.com/baharkarakas/approval-backend/internal/worker"
)

const writeTimeout = 3 * time.Second

// Event is one audit entry before it is persisted.
type Event struct {
	EntityType string
	EntityID   string
	Action     string
	ActorID    int64
	Details    map[string]any
}

// Recorder queues events on a worker pool. A full queue drops the event.
type Recorder struct {
	pool *worker.Pool
	q    db.Querier
	repo repository.AuditLogs
	log  *slog.Logger
}

func NewRecorder(pool *worker.Pool, q db.Querier, repo repository.AuditLogs, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{pool: pool, q: q, repo: repo, log: log}
}

func (r *Recorder) Record(ev Event) {
	entry := models.AuditLog{
		EntityType: ev.EntityType,
		Action:     ev.Action,
		Details:    ev.Details,
	}
	if ev.EntityID != "" {
		id := ev.EntityID
		entry.EntityID = &id
	}
	if ev.ActorID != 0 {
		actor := ev.ActorID
		entry.ActorID = &actor
	}

	ok := r.pool.TrySubmit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := r.repo.Create(ctx, r.q, entry); err != nil {
			r.log.Error("audit write failed", "entity_type", entry.EntityType, "action", entry.Action, "err", err)
		}
	})
	if !ok {
		metrics.AuditDropped.Inc()
		r.log.Warn("audit queue full, event dropped", "entity_type", ev.EntityType, "action", ev.Action)
	}
}

// DecisionHook records every committed decision.
func (r *Recorder) DecisionHook() approval.Hook {
	return func(_ context.Context, res approval.DecisionResult) {
		r.Record(Event{
			EntityType: string(res.EntityKind),
			EntityID:   strconv.FormatInt(res.EntityID, 10),
			Action:     "decision_" + string(res.Status),
			ActorID:    res.DecidedBy,
			Details: map[string]any{
				"request_id": res.RequestID.String(),
				"action":     res.ActionType.String(),
			},
		})
	}
}
