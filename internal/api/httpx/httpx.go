package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/baharkarakas/approval-backend/internal/apperr"
	"github.com/baharkarakas/approval-backend/internal/bulk"
)

const maxBodyBytes = 1 << 20

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

type Message struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// WriteAppError maps err through the apperr taxonomy. Unclassified errors
// are reported as a bare internal error.
func WriteAppError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && apperr.Code(err) == "internal_error" {
		msg = "internal error"
	}
	WriteError(w, status, apperr.Code(err), msg, nil)
}

// WriteBulk writes a bulk summary: 200 when every item succeeded, 207 on
// partial success and 400 when nothing went through.
func WriteBulk(w http.ResponseWriter, res bulk.Result) {
	status := http.StatusOK
	switch res.Outcome() {
	case bulk.OutcomePartial:
		status = http.StatusMultiStatus
	case bulk.OutcomeFailed:
		status = http.StatusBadRequest
	}
	if res.Errors == nil {
		res.Errors = []bulk.ItemError{}
	}
	WriteJSON(w, status, res)
}

// DecodeJSON reads one JSON document into v. An empty body leaves v
// untouched.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
