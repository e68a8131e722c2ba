package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/approval-backend/internal/db/dbtest"
)

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	b := &dbtest.Beginner{}
	err := WithTx(context.Background(), b, time.Second, func(ctx context.Context, tx pgx.Tx) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	})
	require.NoError(t, err)

	txs := b.Txs()
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Committed())
	assert.False(t, txs[0].RolledBack())
	assert.Zero(t, b.Open())
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	b := &dbtest.Beginner{}
	boom := errors.New("boom")
	err := WithTx(context.Background(), b, 0, func(ctx context.Context, tx pgx.Tx) error {
		return boom
	})
	require.ErrorIs(t, err, boom)

	txs := b.Txs()
	require.Len(t, txs, 1)
	assert.True(t, txs[0].RolledBack())
	assert.False(t, txs[0].Committed())
	assert.Zero(t, b.Open())
}

func TestWithTx_BeginFailure(t *testing.T) {
	b := &dbtest.Beginner{BeginErr: dbtest.ErrBegin}
	called := false
	err := WithTx(context.Background(), b, 0, func(ctx context.Context, tx pgx.Tx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, dbtest.ErrBegin)
	assert.False(t, called)
}

func TestWithTx_CommitFailure(t *testing.T) {
	commitErr := errors.New("serialization failure")
	b := &dbtest.Beginner{CommitErr: commitErr}
	err := WithTx(context.Background(), b, 0, func(ctx context.Context, tx pgx.Tx) error { return nil })
	require.ErrorIs(t, err, commitErr)
	assert.False(t, b.Txs()[0].Committed())
}

func TestWithTx_PanicRollsBack(t *testing.T) {
	b := &dbtest.Beginner{}
	err := WithTx(context.Background(), b, time.Second, func(ctx context.Context, tx pgx.Tx) error {
		panic("policy exploded")
	})
	require.ErrorIs(t, err, ErrPanicked)
	assert.Contains(t, err.Error(), "policy exploded")

	txs := b.Txs()
	require.Len(t, txs, 1)
	assert.True(t, txs[0].RolledBack())
	assert.False(t, txs[0].Committed())
	assert.Zero(t, b.Open())
}
