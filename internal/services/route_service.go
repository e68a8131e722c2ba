package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/baharkarakas/approval-backend/internal/apperr"
	"github.com/baharkarakas/approval-backend/internal/approval"
	"github.com/baharkarakas/approval-backend/internal/cache"
	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/models"
	repo "github.com/baharkarakas/approval-backend/internal/repository"
)

type RouteInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Path        string  `json:"path" validate:"required,startswith=/"`
	Method      string  `json:"method" validate:"required,oneof=GET POST PUT PATCH DELETE"`
	IsProtected *bool   `json:"isProtected"`
	Internal    bool    `json:"internal"`
	Description *string `json:"description" validate:"omitempty,max=255"`
	MenuID      *int64  `json:"menuId" validate:"omitempty,gt=0"`
	ActionType  string  `json:"actionType" validate:"required,oneof=c r u d"`
}

type RoutePatch struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Path        *string `json:"path" validate:"omitempty,startswith=/"`
	Method      *string `json:"method" validate:"omitempty,oneof=GET POST PUT PATCH DELETE"`
	IsProtected *bool   `json:"isProtected"`
	Internal    *bool   `json:"internal"`
	Description *string `json:"description" validate:"omitempty,max=255"`
	MenuID      *int64  `json:"menuId" validate:"omitempty,gt=0"`
	ActionType  *string `json:"actionType" validate:"omitempty,oneof=c r u d"`
	Status      *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (p RoutePatch) Fields() models.Fields {
	f := models.Fields{}
	setIf(f, "name", p.Name)
	setIf(f, "path", p.Path)
	setIf(f, "method", p.Method)
	setIf(f, "isProtected", p.IsProtected)
	setIf(f, "internal", p.Internal)
	setIf(f, "description", p.Description)
	setIf(f, "menuId", p.MenuID)
	setIf(f, "routeAction", p.ActionType)
	setIf(f, "status", p.Status)
	return f
}

type RouteService struct {
	db        db.Beginner
	q         db.Querier
	routes    repo.Routes
	approvals *ApprovalService
	cache     cache.RouteCache
	txTimeout time.Duration
	log       *slog.Logger
}

func NewRouteService(b db.Beginner, q db.Querier, routes repo.Routes, approvals *ApprovalService, c cache.RouteCache, txTimeout time.Duration, log *slog.Logger) *RouteService {
	if c == nil {
		c = cache.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &RouteService{db: b, q: q, routes: routes, approvals: approvals, cache: c, txTimeout: txTimeout, log: log}
}

func (s *RouteService) List(ctx context.Context, page, pageSize int, filters []repo.Filter) (models.Page[models.Route], error) {
	out, err := s.routes.List(ctx, s.q, page, pageSize, filters)
	return out, apperr.Translate(err)
}

func (s *RouteService) Get(ctx context.Context, id int64) (models.Route, error) {
	r, err := s.routes.GetByID(ctx, s.q, id)
	return r, apperr.Translate(err)
}

// ActiveRoutes serves the route table used for authorization checks. The
// list only changes when a route decision commits.
func (s *RouteService) ActiveRoutes(ctx context.Context) ([]models.Route, error) {
	if routes, ok := s.cache.Get(ctx); ok {
		return routes, nil
	}
	routes, err := s.routes.ListActive(ctx, s.q)
	if err != nil {
		return nil, apperr.Translate(err)
	}
	if routes == nil {
		routes = []models.Route{}
	}
	s.cache.Set(ctx, routes)
	return routes, nil
}

// RouteCacheHook drops the cached active routes after a route decision.
func RouteCacheHook(c cache.RouteCache) approval.Hook {
	return func(ctx context.Context, res approval.DecisionResult) {
		if res.EntityKind == models.EntityRoutes {
			c.Invalidate(ctx)
		}
	}
}

func (s *RouteService) Create(ctx context.Context, actor int64, in RouteInput) (models.ChangeRequest, error) {
	protected := true
	if in.IsProtected != nil {
		protected = *in.IsProtected
	}
	var cr models.ChangeRequest
	err := db.WithTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx pgx.Tx) error {
		r, err := s.routes.Insert(ctx, tx, models.Route{
			Name:        in.Name,
			Path:        in.Path,
			Method:      in.Method,
			IsProtected: protected,
			Internal:    in.Internal,
			Description: in.Description,
			MenuID:      in.MenuID,
			ActionType:  models.ActionType(in.ActionType),
			Status:      models.StatusPending,
			CreatedBy:   &actor,
		})
		if err != nil {
			return err
		}
		state := r.Fields()
		delete(state, "status")
		cr, err = s.approvals.Submit(ctx, tx, SubmitInput{
			EntityKind:  models.EntityRoutes,
			EntityID:    r.ID,
			ActionType:  models.ActionCreate,
			RequestedBy: actor,
			Old:         models.Fields{},
			New:         state,
		})
		return err
	})
	if err != nil {
		return cr, logFailure(ctx, s.log, "ROUTE_CREATE", err)
	}
	s.approvals.Submitted(ctx, cr)
	return cr, nil
}

func (s *RouteService) Update(ctx context.Context, actor, id int64, patch RoutePatch) (models.ChangeRequest, error) {
	var cr models.ChangeRequest
	err := db.WithTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx pgx.Tx) error {
		cur, err := s.live(ctx, tx, id)
		if err != nil {
			return err
		}
		old := cur.Fields()
		cr, err = s.approvals.Submit(ctx, tx, SubmitInput{
			EntityKind:    models.EntityRoutes,
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
		return s.routes.UpdateStatus(ctx, tx, id, models.StatusPending, actor)
	})
	if err != nil {
		return cr, logFailure(ctx, s.log, "ROUTE_UPDATE", err)
	}
	s.approvals.Submitted(ctx, cr)
	return cr, nil
}

func (s *RouteService) Delete(ctx context.Context, actor, id int64) (models.ChangeRequest, error) {
	var cr models.ChangeRequest
	err := db.WithTx(ctx, s.db, s.txTimeout, func(ctx context.Context, tx pgx.Tx) error {
		cur, err := s.live(ctx, tx, id)
		if err != nil {
			return err
		}
		cr, err = s.approvals.Submit(ctx, tx, SubmitInput{
			EntityKind:    models.EntityRoutes,
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
		return s.routes.UpdateStatus(ctx, tx, id, models.StatusPending, actor)
	})
	if err != nil {
		return cr, logFailure(ctx, s.log, "ROUTE_DELETE", err)
	}
	s.approvals.Submitted(ctx, cr)
	return cr, nil
}

func (s *RouteService) live(ctx context.Context, q db.Querier, id int64) (models.Route, error) {
	r, err := s.routes.GetByID(ctx, q, id)
	if err != nil {
		return models.Route{}, err
	}
	if r.Status == models.StatusDeleted {
		return models.Route{}, &apperr.NotFoundError{Resource: "route", ID: itoa(id), Reason: "is deleted"}
	}
	return r, nil
}
