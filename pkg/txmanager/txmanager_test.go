package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaBookingService/pkg/dbmetrics"
)

type fakeTx struct {
	dbmetrics.DBExecutor
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Commit() error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback() error {
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	txs  []*fakeTx
	opts []*sql.TxOptions
	// commitErrs ошибки коммита по порядку транзакций
	commitErrs []error
}

func (b *fakeBeginner) BeginTx(_ context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	tx := &fakeTx{}
	if len(b.commitErrs) > len(b.txs) {
		tx.commitErr = b.commitErrs[len(b.txs)]
	}
	b.txs = append(b.txs, tx)
	b.opts = append(b.opts, opts)
	return tx, nil
}

func TestManager_Do_Commit(t *testing.T) {
	db := &fakeBeginner{}
	m := New(db)

	err := m.Do(context.Background(), func(ctx context.Context) error {
		assert.True(t, dbmetrics.IsInTransaction(ctx))
		return nil
	})

	require.NoError(t, err)
	require.Len(t, db.txs, 1)
	assert.True(t, db.txs[0].committed)
	assert.False(t, db.txs[0].rolledBack)
	assert.Equal(t, sql.LevelReadCommitted, db.opts[0].Isolation)
}

func TestManager_Do_RollbackOnError(t *testing.T) {
	db := &fakeBeginner{}
	m := New(db)
	boom := errors.New("boom")

	err := m.Do(context.Background(), func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	require.Len(t, db.txs, 1)
	assert.False(t, db.txs[0].committed)
	assert.True(t, db.txs[0].rolledBack)
}

func TestManager_NestedReusesTransaction(t *testing.T) {
	db := &fakeBeginner{}
	m := New(db)

	err := m.Do(context.Background(), func(ctx context.Context) error {
		return m.DoSerializable(ctx, func(ctx context.Context) error {
			return nil
		})
	})

	require.NoError(t, err)
	assert.Len(t, db.txs, 1)
}

func TestManager_DoSerializable_RetriesSerializationFailure(t *testing.T) {
	serialization := &pq.Error{Code: "40001"}
	db := &fakeBeginner{commitErrs: []error{serialization, nil}}
	m := New(db)

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, sql.LevelSerializable, db.opts[0].Isolation)
}

func TestManager_DoSerializable_GivesUp(t *testing.T) {
	db := &fakeBeginner{}
	m := New(db)

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return fmt.Errorf("wrapped: %w", &pq.Error{Code: "40001"})
	})

	assert.True(t, IsSerializationFailure(err))
	assert.Equal(t, defaultMaxRetries+1, calls)
}

func TestIsSerializationFailure(t *testing.T) {
	assert.True(t, IsSerializationFailure(&pq.Error{Code: "40001"}))
	assert.False(t, IsSerializationFailure(&pq.Error{Code: "23505"}))
	assert.False(t, IsSerializationFailure(errors.New("other")))
}
