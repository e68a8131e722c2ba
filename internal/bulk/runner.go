// Package bulk runs a batch of independent items, each in its own
// transaction, under a concurrency cap.
package bulk

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/baharkarakas/approval-backend/internal/apperr"
	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/metrics"
)

const DefaultLimit = 5

type ItemError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

type Summary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

type Result struct {
	Summary Summary     `json:"summary"`
	Errors  []ItemError `json:"errors"`
}

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailed  Outcome = "failed"
)

func (r Result) Outcome() Outcome {
	switch {
	case r.Summary.Failed == 0:
		return OutcomeSuccess
	case r.Summary.Success == 0:
		return OutcomeFailed
	}
	return OutcomePartial
}

// Op processes item index on tx. Returning an error rolls back that item
// only.
type Op func(ctx context.Context, index int, tx pgx.Tx) error

type Runner struct {
	db        db.Beginner
	txTimeout time.Duration
	log       *slog.Logger
}

func NewRunner(b db.Beginner, txTimeout time.Duration, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{db: b, txTimeout: txTimeout, log: log}
}

// Run processes n items with at most limit transactions open at once
// (DefaultLimit when limit <= 0). A failing item never stops the others;
// its error is translated and reported by index.
func (r *Runner) Run(ctx context.Context, n, limit int, op Op) Result {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []ItemError
	)
	g.SetLimit(limit)

	for i := 0; i < n; i++ {
		g.Go(func() error {
			err := db.WithTx(ctx, r.db, r.txTimeout, func(ctx context.Context, tx pgx.Tx) error {
				return op(ctx, i, tx)
			})
			if err == nil {
				metrics.BulkItemsTotal.WithLabelValues("success").Inc()
				return nil
			}

			err = apperr.Translate(err)
			metrics.BulkItemsTotal.WithLabelValues("failed").Inc()
			r.log.Warn("bulk item failed", "process", "BULK_ITEM", "index", i, "err", err)
			mu.Lock()
			errs = append(errs, ItemError{Index: i, Message: err.Error()})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(errs, func(a, b int) bool { return errs[a].Index < errs[b].Index })
	if errs == nil {
		errs = []ItemError{}
	}
	return Result{
		Summary: Summary{Total: n, Success: n - len(errs), Failed: len(errs)},
		Errors:  errs,
	}
}

// RunItems is Run over a slice.
func RunItems[T any](ctx context.Context, r *Runner, items []T, limit int, op func(ctx context.Context, item T, index int, tx pgx.Tx) error) Result {
	return r.Run(ctx, len(items), limit, func(ctx context.Context, index int, tx pgx.Tx) error {
		return op(ctx, items[index], index, tx)
	})
}
