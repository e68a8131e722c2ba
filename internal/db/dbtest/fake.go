// Package dbtest provides transaction fakes for tests of code that only
// begins, commits and rolls back transactions and hands them to repositories.
package dbtest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
)

// Tx records how it ended. Statement methods are not implemented: the
// embedded nil pgx.Tx panics if a test reaches them.
type Tx struct {
	pgx.Tx
	ID int64

	mu         sync.Mutex
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	if t.commitErr != nil {
		t.rolledBack = true
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

func (t *Tx) Committed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.committed
}

func (t *Tx) RolledBack() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rolledBack
}

// Beginner hands out Tx values and tracks how many are open at once.
type Beginner struct {
	BeginErr  error
	CommitErr error

	mu      sync.Mutex
	txs     []*Tx
	nextID  atomic.Int64
	open    atomic.Int64
	maxOpen atomic.Int64
}

var ErrBegin = errors.New("dbtest: begin failed")

func (b *Beginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if b.BeginErr != nil {
		return nil, b.BeginErr
	}
	tx := &Tx{ID: b.nextID.Add(1), commitErr: b.CommitErr}
	b.mu.Lock()
	b.txs = append(b.txs, tx)
	b.mu.Unlock()

	n := b.open.Add(1)
	for {
		cur := b.maxOpen.Load()
		if n <= cur || b.maxOpen.CompareAndSwap(cur, n) {
			break
		}
	}
	return &trackedTx{Tx: tx, b: b}, nil
}

// Txs returns every transaction begun so far, in begin order.
func (b *Beginner) Txs() []*Tx {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Tx, len(b.txs))
	copy(out, b.txs)
	return out
}

// MaxOpen is the highest number of simultaneously open transactions seen.
func (b *Beginner) MaxOpen() int { return int(b.maxOpen.Load()) }

// Open is the number of transactions not yet committed or rolled back.
func (b *Beginner) Open() int { return int(b.open.Load()) }

type trackedTx struct {
	*Tx
	b    *Beginner
	once sync.Once
}

func (t *trackedTx) Commit(ctx context.Context) error {
	err := t.Tx.Commit(ctx)
	if !errors.Is(err, pgx.ErrTxClosed) {
		t.done()
	}
	return err
}

func (t *trackedTx) Rollback(ctx context.Context) error {
	err := t.Tx.Rollback(ctx)
	if err == nil {
		t.done()
	}
	return err
}

func (t *trackedTx) done() { t.once.Do(func() { t.b.open.Add(-1) }) }

// Unwrap returns the recording Tx behind a transaction handed out by Beginner.
func Unwrap(tx pgx.Tx) *Tx {
	switch v := tx.(type) {
	case *trackedTx:
		return v.Tx
	case *Tx:
		return v
	}
	return nil
}
