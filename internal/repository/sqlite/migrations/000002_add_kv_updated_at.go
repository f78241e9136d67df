package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

func init() {
	Register(2, "add_kv_updated_at", addKVUpdatedAt)
}

// addKVUpdatedAt adds kv_store.updated_at and stamps existing rows with the
// migration time.
func addKVUpdatedAt(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "ALTER TABLE kv_store ADD COLUMN updated_at TEXT"); err != nil {
		return fmt.Errorf("failed to add updated_at column: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, "UPDATE kv_store SET updated_at = ? WHERE updated_at IS NULL", now); err != nil {
		return fmt.Errorf("failed to backfill updated_at: %w", err)
	}
	return nil
}
