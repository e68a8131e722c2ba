package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantMsg  string
		wantCode int
	}{
		{
			name:     "unique violation carries constraint",
			err:      &pgconn.PgError{Code: "23505", ConstraintName: "banks_bank_code_key"},
			wantMsg:  "Duplicate entry banks_bank_code_key",
			wantCode: http.StatusConflict,
		},
		{
			name:     "not null violation carries column",
			err:      &pgconn.PgError{Code: "23502", ColumnName: "name"},
			wantMsg:  "Missing required field: name",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unique violation without constraint",
			err:      &pgconn.PgError{Code: "23505"},
			wantMsg:  "Duplicate entry unknown",
			wantCode: http.StatusConflict,
		},
		{
			name:     "connection failure",
			err:      fmt.Errorf("insert: %w", &pgconn.PgError{Code: "08006"}),
			wantMsg:  "Database connection error",
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name:     "unmapped code falls back",
			err:      &pgconn.PgError{Code: "XX000"},
			wantMsg:  "Unhandled database error",
			wantCode: http.StatusInternalServerError,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Translate(tc.err)
			var se *StorageError
			require.ErrorAs(t, got, &se)
			assert.Equal(t, tc.wantMsg, se.Message)
			assert.Equal(t, tc.wantCode, HTTPStatus(got))
		})
	}
}

func TestTranslate_NoRowsAndPassthrough(t *testing.T) {
	var nf *NotFoundError
	require.ErrorAs(t, Translate(pgx.ErrNoRows), &nf)

	plain := errors.New("boom")
	assert.Same(t, plain, Translate(plain))
	assert.NoError(t, Translate(nil))

	own := &MissingRollbackDataError{EntityKind: "banks", EntityID: 1}
	assert.Same(t, own, Translate(own))
}

func TestHTTPStatusAndCode(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{&NoChangesError{}, http.StatusBadRequest, "no_changes"},
		{&NotFoundError{Resource: "approval", ID: "x"}, http.StatusNotFound, "not_found"},
		{&UnsupportedOperationError{EntityKind: "cars"}, http.StatusBadRequest, "unsupported_operation"},
		{&MissingRollbackDataError{}, http.StatusBadRequest, "missing_rollback_data"},
		{&InvalidFilterError{}, http.StatusBadRequest, "invalid_filter"},
		{fmt.Errorf("wrapped: %w", &NotFoundError{}), http.StatusNotFound, "not_found"},
		{errors.New("other"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.status, HTTPStatus(tc.err), tc.err.Error())
		assert.Equal(t, tc.code, Code(tc.err), tc.err.Error())
	}
	assert.True(t, IsOperatorAlert(&UnsupportedOperationError{EntityKind: "cars"}))
	assert.False(t, IsOperatorAlert(&NotFoundError{}))
}
