package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// NoChangesError means a non-delete submission produced an empty diff.
type NoChangesError struct {
	EntityKind string
	EntityID   int64
}

func (e *NoChangesError) Error() string {
	return "no changes detected, nothing to update"
}

// NotFoundError covers missing entities and change requests that no longer
// accept a decision.
type NotFoundError struct {
	Resource string
	ID       string
	Reason   string
}

func (e *NotFoundError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s %s", e.Resource, e.ID, e.Reason)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// UnsupportedOperationError is a gap in the apply-policy registry.
type UnsupportedOperationError struct {
	EntityKind string
	ActionType string
}

func (e *UnsupportedOperationError) Error() string {
	if e.ActionType == "" {
		return fmt.Sprintf("unhandled entity type: %s", e.EntityKind)
	}
	return fmt.Sprintf("unsupported action %q for entity type %s", e.ActionType, e.EntityKind)
}

// MissingRollbackDataError is returned when a rejection has no changes.old
// snapshot to restore.
type MissingRollbackDataError struct {
	EntityKind string
	EntityID   int64
}

func (e *MissingRollbackDataError) Error() string {
	return fmt.Sprintf("missing rollback data (changes.old) for %s %d", e.EntityKind, e.EntityID)
}

type InvalidFilterError struct {
	Field    string
	Operator string
	Msg      string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter %s %s: %s", e.Field, e.Operator, e.Msg)
}

// StorageError is a store failure already mapped to a stable message and
// HTTP code.
type StorageError struct {
	Code     string
	Message  string
	HTTPCode int
	Err      error
}

func (e *StorageError) Error() string { return e.Message }
func (e *StorageError) Unwrap() error { return e.Err }

// HTTPStatus picks the response status for err.
func HTTPStatus(err error) int {
	var (
		noChanges   *NoChangesError
		notFound    *NotFoundError
		unsupported *UnsupportedOperationError
		rollback    *MissingRollbackDataError
		filter      *InvalidFilterError
		storage     *StorageError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &noChanges), errors.As(err, &rollback), errors.As(err, &filter):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &unsupported):
		return http.StatusBadRequest
	case errors.As(err, &storage):
		return storage.HTTPCode
	}
	return http.StatusInternalServerError
}

// Code is the machine-readable error code written to API responses.
func Code(err error) string {
	var (
		noChanges   *NoChangesError
		notFound    *NotFoundError
		unsupported *UnsupportedOperationError
		rollback    *MissingRollbackDataError
		filter      *InvalidFilterError
		storage     *StorageError
	)
	switch {
	case errors.As(err, &noChanges):
		return "no_changes"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &unsupported):
		return "unsupported_operation"
	case errors.As(err, &rollback):
		return "missing_rollback_data"
	case errors.As(err, &filter):
		return "invalid_filter"
	case errors.As(err, &storage):
		return "storage_" + storage.Code
	}
	return "internal_error"
}

// IsOperatorAlert reports errors that point at a configuration or
// programming gap rather than bad input.
func IsOperatorAlert(err error) bool {
	var unsupported *UnsupportedOperationError
	return errors.As(err, &unsupported)
}
