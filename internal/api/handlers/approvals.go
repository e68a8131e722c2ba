package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/baharkarakas/approval-backend/internal/api/httpx"
	"github.com/baharkarakas/approval-backend/internal/approval"
	"github.com/baharkarakas/approval-backend/internal/bulk"
	"github.com/baharkarakas/approval-backend/internal/models"
	repo "github.com/baharkarakas/approval-backend/internal/repository"
	"github.com/baharkarakas/approval-backend/internal/services"
)

type ApprovalAPI interface {
	List(ctx context.Context, page, pageSize int, filters []repo.Filter) (models.Page[models.ChangeRequest], error)
	Decide(ctx context.Context, id uuid.UUID, actor int64, decision models.Decision) (approval.DecisionResult, error)
	DecideBulk(ctx context.Context, actor int64, items []services.DecisionItem, limit int) bulk.Result
}

type ApprovalHandler struct {
	svc    ApprovalAPI
	limits BulkConfig
}

func NewApprovalHandler(svc ApprovalAPI, cfg BulkConfig) *ApprovalHandler {
	return &ApprovalHandler{svc: svc, limits: cfg}
}

type decideReq struct {
	Status models.Decision `json:"status" validate:"required,oneof=approved rejected"`
}

func (h *ApprovalHandler) List(w http.ResponseWriter, r *http.Request) {
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

func (h *ApprovalHandler) Decide(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_id", "id must be a UUID", nil)
		return
	}
	var req decideReq
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Decide(r.Context(), id, uid, req.Status)
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *ApprovalHandler) DecideBulk(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	items, ok := decodeSlice[services.DecisionItem](w, r, h.limits)
	if !ok {
		return
	}
	httpx.WriteBulk(w, h.svc.DecideBulk(r.Context(), uid, items, h.limits.Concurrency))
}
