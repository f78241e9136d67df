package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"taskdeck/internal/errors"
	"taskdeck/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Repository is the persistent key-value contract: string keys to string values.
type Repository interface {
	GetItem(ctx context.Context, key string) (*string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	ListItems(ctx context.Context, prefix string) ([]*Item, error)
	Close() error
}

// Options bounds the duration of individual statements. Zero disables a bound.
type Options struct {
	QueryTimeout time.Duration
	WriteTimeout time.Duration
}

// KVStore implements Repository on a sqlite kv_store table
type KVStore struct {
	db   *sql.DB
	opts Options
	now  func() time.Time
}

// New opens the sqlite database at dbPath and runs pending migrations
func New(dbPath string) (*KVStore, error) {
	return NewWithOptions(context.Background(), dbPath, Options{})
}

// NewWithOptions is New with statement timeouts
func NewWithOptions(ctx context.Context, dbPath string, opts Options) (*KVStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := migrations.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return NewFromDB(db, opts), nil
}

// NewFromDB wraps an already migrated connection
func NewFromDB(db *sql.DB, opts Options) *KVStore {
	return &KVStore{db: db, opts: opts, now: time.Now}
}

// DB exposes the underlying connection for maintenance commands
func (s *KVStore) DB() *sql.DB {
	return s.db
}

// Close closes the database connection
func (s *KVStore) Close() error {
	return s.db.Close()
}

// GetItem returns the value stored under key, or nil when the key is absent
func (s *KVStore) GetItem(ctx context.Context, key string) (*string, error) {
	ctx, cancel := withTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	query := `SELECT key, value, updated_at FROM kv_store WHERE key = ?`
	item, err := QuerySingle(ctx, s.db, query, ScanItem, "item", key, key)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item.Value, nil
}

// SetItem stores value under key, replacing any previous value
func (s *KVStore) SetItem(ctx context.Context, key, value string) error {
	ctx, cancel := withTimeout(ctx, s.opts.WriteTimeout)
	defer cancel()

	query := `
	INSERT INTO kv_store (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	return Execute(ctx, s.db, "set item", query, key, value, FormatTimeForDB(s.now()))
}

// RemoveItem deletes key. Removing an absent key is not an error
func (s *KVStore) RemoveItem(ctx context.Context, key string) error {
	ctx, cancel := withTimeout(ctx, s.opts.WriteTimeout)
	defer cancel()

	return Execute(ctx, s.db, "remove item", `DELETE FROM kv_store WHERE key = ?`, key)
}

// ListItems returns the items whose key starts with prefix, ordered by key
func (s *KVStore) ListItems(ctx context.Context, prefix string) ([]*Item, error) {
	ctx, cancel := withTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	query := `SELECT key, value, updated_at FROM kv_store WHERE key LIKE ? ESCAPE '\' ORDER BY key`
	return QueryMultiple(ctx, s.db, query, ScanItems, "items", escapeLike(prefix)+"%")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
