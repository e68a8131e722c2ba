package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrPanicked wraps a panic raised inside a WithTx callback.
var ErrPanicked = errors.New("transaction callback panicked")

// WithTx runs fn inside one transaction: commit on nil, rollback otherwise.
// A panic in fn rolls back and comes back as an ErrPanicked error. timeout
// bounds the whole unit when positive. The connection goes back to the pool
// once the transaction ends either way.
func WithTx(ctx context.Context, b Beginner, timeout time.Duration, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := b.Begin(ctx)
	if err != nil {
		return err
	}
	if err := call(ctx, tx, fn); err != nil {
		// rollback must run even when ctx already expired
		if rErr := tx.Rollback(context.WithoutCancel(ctx)); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			return errors.Join(err, rErr)
		}
		return err
	}
	return tx.Commit(ctx)
}

func call(ctx context.Context, tx pgx.Tx, fn func(ctx context.Context, tx pgx.Tx) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrPanicked, p)
		}
	}()
	return fn(ctx, tx)
}
