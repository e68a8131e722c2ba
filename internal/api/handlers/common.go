package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/approval-backend/internal/api/httpx"
	"github.com/baharkarakas/approval-backend/internal/api/validate"
	"github.com/baharkarakas/approval-backend/internal/middleware"
	repo "github.com/baharkarakas/approval-backend/internal/repository"
)

// BulkConfig bounds bulk endpoints.
type BulkConfig struct {
	MaxItems    int
	Concurrency int
}

type ListRequest struct {
	Page    int           `json:"page" validate:"omitempty,min=1"`
	Limit   int           `json:"limit" validate:"omitempty,min=1,max=100"`
	Filters []repo.Filter `json:"filters" validate:"omitempty,dive"`
}

// DeleteBulkRequest accepts either {"ids":[...]} or a bare array of ids.
type DeleteBulkRequest struct {
	IDs []int64 `json:"ids" validate:"required,dive,gt=0"`
}

func (d *DeleteBulkRequest) UnmarshalJSON(b []byte) error {
	if trimmed := bytes.TrimSpace(b); len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &d.IDs)
	}
	type plain DeleteBulkRequest
	return json.Unmarshal(b, (*plain)(d))
}

// decode reads the body into v and validates it. On failure the 400 is
// already written.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httpx.DecodeJSON(w, r, v); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_body", err.Error(), nil)
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeValidation(w, err)
		return false
	}
	return true
}

func decodeSlice[T any](w http.ResponseWriter, r *http.Request, cfg BulkConfig) ([]T, bool) {
	var items []T
	if err := httpx.DecodeJSON(w, r, &items); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_body", err.Error(), nil)
		return nil, false
	}
	if err := validate.Bulk(len(items), cfg.MaxItems); err != nil {
		writeValidation(w, err)
		return nil, false
	}
	if err := validate.Slice(items); err != nil {
		writeValidation(w, err)
		return nil, false
	}
	return items, true
}

func writeValidation(w http.ResponseWriter, err error) {
	var errs validate.Errs
	if errors.As(err, &errs) {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", "validation failed", errs)
		return
	}
	httpx.WriteError(w, http.StatusBadRequest, "validation_error", err.Error(), nil)
}

func listRequest(w http.ResponseWriter, r *http.Request) (ListRequest, bool) {
	var req ListRequest
	if !decode(w, r, &req) {
		return req, false
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 10
	}
	return req, true
}

func actor(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.ActorID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "unauthenticated", nil)
	}
	return id, ok
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer", nil)
		return 0, false
	}
	return id, true
}

func submitted(w http.ResponseWriter, what string, data any) {
	httpx.WriteJSON(w, http.StatusAccepted, httpx.Message{
		Message: what + " request submitted successfully",
		Data:    data,
	})
}
