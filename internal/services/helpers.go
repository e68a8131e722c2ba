package services

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/baharkarakas/approval-backend/internal/apperr"
)

// logFailure translates err and logs it under process. Client errors go
// out at debug, everything else at error.
func logFailure(ctx context.Context, log *slog.Logger, process string, err error) error {
	if err == nil {
		return nil
	}
	err = apperr.Translate(err)
	level := slog.LevelDebug
	if apperr.HTTPStatus(err) >= 500 || apperr.IsOperatorAlert(err) {
		level = slog.LevelError
	}
	log.Log(ctx, level, "request failed", "process", process, "err", err)
	return err
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
