package apperr

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type dbResponse struct {
	message  string
	httpCode int
}

var pgResponses = map[string]dbResponse{
	"23505": {"Duplicate entry", http.StatusConflict},
	"23502": {"Missing required field", http.StatusBadRequest},
	"23503": {"Related resource not found (foreign key violation)", http.StatusNotFound},
	"23514": {"Data validation failed (check constraint violation)", http.StatusUnprocessableEntity},
	"22001": {"Data too long for column", http.StatusBadRequest},
	"42703": {"Invalid column name (does not exist)", http.StatusBadRequest},
	"42601": {"Syntax error in SQL statement", http.StatusBadRequest},
	"42P01": {"Table does not exist", http.StatusNotFound},
	"42P02": {"Column does not exist", http.StatusNotFound},
	"08006": {"Database connection error", http.StatusServiceUnavailable},
	"08003": {"Connection does not exist", http.StatusServiceUnavailable},
	"08001": {"SQL client unable to establish connection", http.StatusServiceUnavailable},
	"08004": {"SQL client rejected connection", http.StatusServiceUnavailable},
	"08007": {"Transaction rollback error", http.StatusInternalServerError},
	"08009": {"Transaction commit error", http.StatusInternalServerError},
	"08000": {"General database error", http.StatusInternalServerError},
}

var pgDefault = dbResponse{"Unhandled database error", http.StatusInternalServerError}

// Translate maps store errors onto the taxonomy. Errors that already belong
// to it, and errors that are not store errors, are returned unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &NotFoundError{Resource: "record", ID: "-", Reason: "not found"}
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	resp, ok := pgResponses[pgErr.Code]
	if !ok {
		resp = pgDefault
	}
	msg := resp.message
	switch pgErr.Code {
	case "23505":
		msg += " " + orUnknown(pgErr.ConstraintName)
	case "23502":
		msg += ": " + orUnknown(pgErr.ColumnName)
	}
	return &StorageError{Code: pgErr.Code, Message: msg, HTTPCode: resp.httpCode, Err: err}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
