package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"taskdeck/internal/logging"
)

//go:embed *.up.sql
var sqlFiles embed.FS

// Step is one schema change. It runs inside the migration's transaction.
type Step func(ctx context.Context, tx *sql.Tx) error

// Migration is a numbered schema step loaded from an embedded .up.sql file
// or registered from Go.
type Migration struct {
	Version int
	Name    string
	Up      Step
}

var registered = map[int]Migration{}

// Register adds a Go migration. It panics when version is already taken.
func Register(version int, name string, up Step) {
	if _, taken := registered[version]; taken {
		panic(fmt.Sprintf("migration %d registered twice", version))
	}
	registered[version] = Migration{Version: version, Name: name, Up: up}
}

// RunMigrations applies every pending migration in version order. It
// refuses to run while an earlier migration is marked dirty.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	if err := createMigrationsTable(ctx, db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	dirty, err := getDirtyMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to check migration state: %w", err)
	}
	if len(dirty) > 0 {
		return fmt.Errorf("database is in a dirty state, failed migration(s): %v", dirty)
	}

	all, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	applied, err := AppliedVersions(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, m := range all {
		if done[m.Version] {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		logging.Debugf("applied schema migration %d (%s)\n", m.Version, m.Name)
	}
	return nil
}

// ClearDirty drops the dirty marker of version so the next run retries it.
func ClearDirty(ctx context.Context, db *sql.DB, version int) error {
	_, err := db.ExecContext(ctx, "DELETE FROM migrations WHERE version = ? AND dirty = TRUE", version)
	return err
}

// AppliedVersions lists the cleanly applied versions in order.
func AppliedVersions(ctx context.Context, db *sql.DB) ([]int, error) {
	return queryVersions(ctx, db, "dirty = FALSE OR dirty IS NULL")
}

func getDirtyMigrations(ctx context.Context, db *sql.DB) ([]int, error) {
	return queryVersions(ctx, db, "dirty = TRUE")
}

func queryVersions(ctx context.Context, db *sql.DB, where string) ([]int, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM migrations WHERE "+where+" ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func createMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		dirty BOOLEAN DEFAULT FALSE
	)`)
	return err
}

func loadMigrations() ([]Migration, error) {
	files, err := sqlFiles.ReadDir(".")
	if err != nil {
		return nil, err
	}

	all := make([]Migration, 0, len(files)+len(registered))
	for _, f := range files {
		version, name := parseFilename(f.Name())
		if version == 0 {
			continue
		}
		if _, clash := registered[version]; clash {
			return nil, fmt.Errorf("migration %d defined in both SQL and Go", version)
		}
		body, err := sqlFiles.ReadFile(f.Name())
		if err != nil {
			return nil, err
		}
		all = append(all, Migration{Version: version, Name: name, Up: execSQL(string(body))})
	}
	for _, m := range registered {
		all = append(all, m)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Version < all[j].Version })
	return all, nil
}

func execSQL(query string) Step {
	return func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query)
		return err
	}
}

// applyMigration marks the version dirty, runs the step in a transaction and
// clears the marker in the same commit.
func applyMigration(ctx context.Context, db *sql.DB, m Migration) error {
	if _, err := db.ExecContext(ctx, "INSERT INTO migrations (version, dirty) VALUES (?, TRUE)", m.Version); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.Up(ctx, tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE migrations SET dirty = FALSE WHERE version = ?", m.Version); err != nil {
		return err
	}
	return tx.Commit()
}

// parseFilename splits "000001_create_kv_store.up.sql" into 1 and
// "create_kv_store". Unrecognised names yield version 0.
func parseFilename(filename string) (int, string) {
	base := strings.TrimSuffix(path.Base(filename), ".up.sql")
	var version int
	if _, err := fmt.Sscanf(base, "%d_", &version); err != nil {
		return 0, ""
	}
	_, name, _ := strings.Cut(base, "_")
	return version, name
}
