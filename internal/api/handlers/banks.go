package handlers

import (
	"context"
	"net/http"

	"github.com/baharkarakas/approval-backend/internal/api/httpx"
	"github.com/baharkarakas/approval-backend/internal/models"
	repo "github.com/baharkarakas/approval-backend/internal/repository"
	"github.com/baharkarakas/approval-backend/internal/services"
)

type BankAPI interface {
	List(ctx context.Context, page, pageSize int, filters []repo.Filter) (models.Page[models.Bank], error)
	Get(ctx context.Context, id int64) (models.Bank, error)
	Create(ctx context.Context, actor int64, in services.BankInput) (models.ChangeRequest, error)
	Update(ctx context.Context, actor, id int64, patch services.BankPatch) (models.ChangeRequest, error)
	Delete(ctx context.Context, actor, id int64) (models.ChangeRequest, error)
}

type BankHandler struct {
	svc BankAPI
}

func NewBankHandler(svc BankAPI) *BankHandler { return &BankHandler{svc: svc} }

func (h *BankHandler) List(w http.ResponseWriter, r *http.Request) {
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

func (h *BankHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BankHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	var in services.BankInput
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

func (h *BankHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch services.BankPatch
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

func (h *BankHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
