package bulk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/approval-backend/internal/db/dbtest"
)

func newTestRunner(b *dbtest.Beginner) *Runner {
	return NewRunner(b, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRun_PartialFailure(t *testing.T) {
	b := &dbtest.Beginner{}
	r := newTestRunner(b)

	res := r.Run(context.Background(), 10, 3, func(_ context.Context, i int, _ pgx.Tx) error {
		if i%3 == 0 {
			return fmt.Errorf("item %d rejected", i)
		}
		return nil
	})

	assert.Equal(t, Summary{Total: 10, Success: 6, Failed: 4}, res.Summary)
	assert.Equal(t, []ItemError{
		{Index: 0, Message: "item 0 rejected"},
		{Index: 3, Message: "item 3 rejected"},
		{Index: 6, Message: "item 6 rejected"},
		{Index: 9, Message: "item 9 rejected"},
	}, res.Errors)
	assert.Equal(t, OutcomePartial, res.Outcome())

	var committed, rolledBack int
	for _, tx := range b.Txs() {
		if tx.Committed() {
			committed++
		}
		if tx.RolledBack() {
			rolledBack++
		}
	}
	assert.Equal(t, 6, committed)
	assert.Equal(t, 4, rolledBack)
	assert.Zero(t, b.Open())
}

func TestRun_RespectsLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"explicit limit", 3, 3},
		{"default limit", 0, DefaultLimit},
		{"negative limit", -1, DefaultLimit},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := &dbtest.Beginner{}
			res := newTestRunner(b).Run(context.Background(), 20, tc.limit, func(context.Context, int, pgx.Tx) error {
				time.Sleep(5 * time.Millisecond)
				return nil
			})
			assert.Equal(t, 20, res.Summary.Success)
			assert.LessOrEqual(t, b.MaxOpen(), tc.want)
			assert.Positive(t, b.MaxOpen())
			assert.Len(t, b.Txs(), 20)
		})
	}
}

func TestRun_TranslatesStoreErrors(t *testing.T) {
	b := &dbtest.Beginner{}
	res := newTestRunner(b).Run(context.Background(), 2, 2, func(_ context.Context, i int, _ pgx.Tx) error {
		if i == 1 {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
		}
		return nil
	})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, ItemError{Index: 1, Message: "Duplicate entry users_username_key"}, res.Errors[0])
}

func TestRun_PanicIsContained(t *testing.T) {
	b := &dbtest.Beginner{}
	res := newTestRunner(b).Run(context.Background(), 3, 1, func(_ context.Context, i int, _ pgx.Tx) error {
		if i == 1 {
			panic("boom")
		}
		return nil
	})
	assert.Equal(t, Summary{Total: 3, Success: 2, Failed: 1}, res.Summary)
	assert.Contains(t, res.Errors[0].Message, "boom")
	assert.Zero(t, b.Open())
}

func TestRun_BeginFailureFailsEveryItem(t *testing.T) {
	b := &dbtest.Beginner{BeginErr: dbtest.ErrBegin}
	res := newTestRunner(b).Run(context.Background(), 4, 2, func(context.Context, int, pgx.Tx) error { return nil })
	assert.Equal(t, Summary{Total: 4, Success: 0, Failed: 4}, res.Summary)
	assert.Equal(t, OutcomeFailed, res.Outcome())
}

func TestRunItems(t *testing.T) {
	b := &dbtest.Beginner{}
	items := []string{"a", "b", "c"}
	var (
		mu   sync.Mutex
		seen = map[int]string{}
	)
	res := RunItems(context.Background(), newTestRunner(b), items, 2, func(_ context.Context, item string, i int, _ pgx.Tx) error {
		mu.Lock()
		seen[i] = item
		mu.Unlock()
		if item == "b" {
			return errors.New("bad item")
		}
		return nil
	})
	assert.Equal(t, map[int]string{0: "a", 1: "b", 2: "c"}, seen)
	assert.Equal(t, []ItemError{{Index: 1, Message: "bad item"}}, res.Errors)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		summary Summary
		want    Outcome
	}{
		{Summary{Total: 0}, OutcomeSuccess},
		{Summary{Total: 2, Success: 2}, OutcomeSuccess},
		{Summary{Total: 2, Success: 1, Failed: 1}, OutcomePartial},
		{Summary{Total: 2, Failed: 2}, OutcomeFailed},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Result{Summary: tc.summary}.Outcome())
	}
}
