package handlers

import (
	"context"
	"net/http"

	"github.com/baharkarakas/approval-backend/internal/api/httpx"
	"github.com/baharkarakas/approval-backend/internal/models"
	repo "github.com/baharkarakas/approval-backend/internal/repository"
	"github.com/baharkarakas/approval-backend/internal/services"
)

type RouteAPI interface {
	List(ctx context.Context, page, pageSize int, filters []repo.Filter) (models.Page[models.Route], error)
	Get(ctx context.Context, id int64) (models.Route, error)
	ActiveRoutes(ctx context.Context) ([]models.Route, error)
	Create(ctx context.Context, actor int64, in services.RouteInput) (models.ChangeRequest, error)
	Update(ctx context.Context, actor, id int64, patch services.RoutePatch) (models.ChangeRequest, error)
	Delete(ctx context.Context, actor, id int64) (models.ChangeRequest, error)
}

type RouteHandler struct {
	svc RouteAPI
}

func NewRouteHandler(svc RouteAPI) *RouteHandler { return &RouteHandler{svc: svc} }

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	req, ok := listRequest(w, r)
	if !ok {
		return
	}
	page, err := h.svc.List(r.Context(), req.Page, req.Limit, req.Filters)
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rt, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rt)
}

func (h *RouteHandler) Active(w http.ResponseWriter, r *http.Request) {
	routes, err := h.svc.ActiveRoutes(r.Context())
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	if routes == nil {
		routes = []models.Route{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"data": routes})
}

func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	var in services.RouteInput
	if !decode(w, r, &in) {
		return
	}
	cr, err := h.svc.Create(r.Context(), uid, in)
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	submitted(w, "Create", cr)
}

func (h *RouteHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch services.RoutePatch
	if !decode(w, r, &patch) {
		return
	}
	cr, err := h.svc.Update(r.Context(), uid, id, patch)
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	submitted(w, "Update", cr)
}

func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cr, err := h.svc.Delete(r.Context(), uid, id)
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	submitted(w, "Delete", cr)
}
