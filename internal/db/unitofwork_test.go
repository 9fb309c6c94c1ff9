package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/mediasheet/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUoW(t *testing.T) *db.SQLiteUnitOfWork {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewSQLiteUnitOfWork(database)
}

// shortcodeLabel reads a shortcode label through a throwaway transaction.
func shortcodeLabel(uow *db.SQLiteUnitOfWork, id string) (string, bool) {
	var label string
	var found bool
	_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		row := tx.QueryRowContext(ctx, `SELECT display_name_fr FROM shortcodes WHERE id = ?`, id)
		if err := row.Scan(&label); err != nil {
			return nil
		}
		found = true
		return nil
	})
	return label, found
}

func insertShortcode(ctx context.Context, tx db.DBTX, id, label string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO shortcodes (id, display_name_fr) VALUES (?, ?)`, id, label)
	return err
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	uow := newUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insertShortcode(ctx, tx, "SC001", "Télévision")
	})
	require.NoError(t, err)

	label, found := shortcodeLabel(uow, "SC001")
	assert.True(t, found)
	assert.Equal(t, "Télévision", label)
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	uow := newUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertShortcode(ctx, tx, "SC002", "Radio"); err != nil {
			return err
		}
		return errors.New("import aborted")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import aborted")

	_, found := shortcodeLabel(uow, "SC002")
	assert.False(t, found, "row should not exist after rollback")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow := newUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertShortcode(ctx, tx, "SC003", "Affichage")
			panic("boom")
		})
	})

	_, found := shortcodeLabel(uow, "SC003")
	assert.False(t, found, "row should not exist after panic rollback")
}

func TestWithinTx_CanceledContext(t *testing.T) {
	uow := newUoW(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := uow.WithinTx(ctx, func(context.Context, db.DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
