package postgres

import (
	"context"

	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/models"
)

type auditLogsRepo struct{}

func (r *auditLogsRepo) Create(ctx context.Context, q db.Querier, l models.AuditLog) error {
	_, err := q.Exec(ctx,
		`INSERT INTO audit_logs(entity_type, entity_id, action, actor_id, details) VALUES($1,$2,$3,$4,$5)`,
		l.EntityType, l.EntityID, l.Action, l.ActorID, l.Details,
	)
	return err
}
