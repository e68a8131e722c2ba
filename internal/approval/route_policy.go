package approval

import (
	"context"

	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/models"
	"github.com/baharkarakas/approval-backend/internal/repository"
)

func NewRoutePolicy(routes repository.Entities) Policy {
	return &flatPolicy{
		kind: models.EntityRoutes,
		repo: routes,
		approveDelete: func(ctx context.Context, q db.Querier, in ApplyInput) error {
			return routes.UpdateStatus(ctx, q, in.EntityID, models.StatusDeleted, in.Actor)
		},
	}
}
