package handlers

import (
	"context"
	"net/http"

	"github.com/baharkarakas/approval-backend/internal/api/httpx"
	"github.com/baharkarakas/approval-backend/internal/api/validate"
	"github.com/baharkarakas/approval-backend/internal/bulk"
	"github.com/baharkarakas/approval-backend/internal/models"
	repo "github.com/baharkarakas/approval-backend/internal/repository"
	"github.com/baharkarakas/approval-backend/internal/services"
)

type UserAPI interface {
	List(ctx context.Context, page, pageSize int, filters []repo.Filter) (models.Page[models.UserDetails], error)
	Get(ctx context.Context, id int64) (models.UserDetails, error)
	Create(ctx context.Context, actor int64, in services.UserInput) (services.CreatedUser, error)
	Update(ctx context.Context, actor, id int64, patch services.UserPatch) (models.ChangeRequest, error)
	Delete(ctx context.Context, actor, id int64) (models.ChangeRequest, error)
	CreateBulk(ctx context.Context, actor int64, items []services.UserInput, limit int) bulk.Result
	UpdateBulk(ctx context.Context, actor int64, items []services.UserUpdateItem, limit int) bulk.Result
	DeleteBulk(ctx context.Context, actor int64, ids []int64, limit int) bulk.Result
}

type UserHandler struct {
	svc    UserAPI
	limits BulkConfig
}

func NewUserHandler(svc UserAPI, cfg BulkConfig) *UserHandler {
	return &UserHandler{svc: svc, limits: cfg}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
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

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	var in services.UserInput
	if !decode(w, r, &in) {
		return
	}
	created, err := h.svc.Create(r.Context(), uid, in)
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	submitted(w, "Create", created)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch services.UserPatch
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

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *UserHandler) CreateBulk(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	items, ok := decodeSlice[services.UserInput](w, r, h.limits)
	if !ok {
		return
	}
	httpx.WriteBulk(w, h.svc.CreateBulk(r.Context(), uid, items, h.limits.Concurrency))
}

func (h *UserHandler) UpdateBulk(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	items, ok := decodeSlice[services.UserUpdateItem](w, r, h.limits)
	if !ok {
		return
	}
	httpx.WriteBulk(w, h.svc.UpdateBulk(r.Context(), uid, items, h.limits.Concurrency))
}

func (h *UserHandler) DeleteBulk(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	var req DeleteBulkRequest
	if !decode(w, r, &req) {
		return
	}
	if err := validate.Bulk(len(req.IDs), h.limits.MaxItems); err != nil {
		writeValidation(w, err)
		return
	}
	httpx.WriteBulk(w, h.svc.DeleteBulk(r.Context(), uid, req.IDs, h.limits.Concurrency))
}
