package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taskdeck/internal/errors"
)

func setupTestStore(t *testing.T) *KVStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestKVStore_GetMissingKey(t *testing.T) {
	store := setupTestStore(t)

	value, err := store.GetItem(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestKVStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.SetItem(ctx, "task-storage", `{"projects":[]}`))
	value, err := store.GetItem(ctx, "task-storage")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, `{"projects":[]}`, *value)

	require.NoError(t, store.SetItem(ctx, "task-storage", `{}`))
	value, err = store.GetItem(ctx, "task-storage")
	require.NoError(t, err)
	assert.Equal(t, `{}`, *value)

	require.NoError(t, store.RemoveItem(ctx, "task-storage"))
	require.NoError(t, store.RemoveItem(ctx, "task-storage"), "removing twice is a no-op")
	value, err = store.GetItem(ctx, "task-storage")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestKVStore_EmptyValueIsNotAbsent(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.SetItem(ctx, "k", ""))
	value, err := store.GetItem(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "", *value)
}

func TestKVStore_ListItems(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	fixed := time.Date(2026, 1, 11, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	require.NoError(t, store.SetItem(ctx, "migrated-b", "true"))
	require.NoError(t, store.SetItem(ctx, "migrated-a", "true"))
	require.NoError(t, store.SetItem(ctx, "migrated_x", "true"))
	require.NoError(t, store.SetItem(ctx, "task-storage", "{}"))

	items, err := store.ListItems(ctx, "migrated-")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "migrated-a", items[0].Key)
	assert.Equal(t, "migrated-b", items[1].Key)
	require.NotNil(t, items[0].UpdatedAt)
	assert.True(t, fixed.Equal(*items[0].UpdatedAt))
}

func TestKVStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")

	first, err := New(path)
	require.NoError(t, err)
	require.NoError(t, first.SetItem(ctx, "k", "v"))
	require.NoError(t, first.Close())

	second, err := New(path)
	require.NoError(t, err)
	defer second.Close()
	value, err := second.GetItem(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "v", *value)
}

func TestKVStore_DatabaseFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewFromDB(db, Options{})
	ctx := context.Background()
	boom := errors.New("disk I/O error")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT key, value, updated_at FROM kv_store WHERE key = ?")).
		WithArgs("k").
		WillReturnError(boom)
	_, err = store.GetItem(ctx, "k")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeDatabase))

	mock.ExpectExec("INSERT INTO kv_store").
		WithArgs("k", "v", sqlmock.AnyArg()).
		WillReturnError(boom)
	err = store.SetItem(ctx, "k", "v")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kv_store WHERE key = ?")).
		WithArgs("k").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, store.RemoveItem(ctx, "k"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVStore_GetItemScansRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"key", "value", "updated_at"}).AddRow("k", "v", nil)
	mock.ExpectQuery("SELECT key, value, updated_at FROM kv_store").WithArgs("k").WillReturnRows(rows)

	value, err := NewFromDB(db, Options{}).GetItem(context.Background(), "k")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "v", *value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVStore_WriteTimeout(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO kv_store").WillDelayFor(200 * time.Millisecond).WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewFromDB(db, Options{WriteTimeout: 10 * time.Millisecond})
	err = store.SetItem(context.Background(), "k", "v")
	assert.Error(t, err)
}
