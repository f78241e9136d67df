// Package migration runs one-time, flag-gated transformations of persisted
// state at startup.
package migration

import (
	"context"

	"taskdeck/internal/errors"
	"taskdeck/internal/logging"
)

// FlagValue marks a completed migration.
const FlagValue = "true"

// FlagPrefix starts every migration flag key.
const FlagPrefix = "migrated-"

// Flag keys of the built-in migrations.
const (
	FlagStorageBackend = "migrated-storage-backend-v1"
	FlagArchivedTasks  = "migrated-archived-tasks-v1"
)

// FlagStore persists migration flags.
type FlagStore interface {
	GetItem(ctx context.Context, key string) (*string, error)
	SetItem(ctx context.Context, key, value string) error
}

// Migration is one flag-gated step. Run must only return nil once its work
// is complete; the runner sets the flag afterwards.
type Migration struct {
	Flag string
	Run  func(ctx context.Context) error
}

// Result is the outcome of one migration.
type Result struct {
	Flag    string
	Skipped bool
	Err     error
}

// Runner applies migrations in order.
type Runner struct {
	flags      FlagStore
	migrations []Migration
}

// NewRunner creates a runner over flags.
func NewRunner(flags FlagStore, migrations ...Migration) *Runner {
	return &Runner{flags: flags, migrations: migrations}
}

// Run applies every migration whose flag is unset. A failing migration is
// logged and leaves its flag unset; the remaining migrations still run.
func (r *Runner) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(r.migrations))
	for _, m := range r.migrations {
		res := Result{Flag: m.Flag}

		done, err := IsDone(ctx, r.flags, m.Flag)
		switch {
		case err != nil:
			res.Err = errors.NewMigrationError(m.Flag, err)
		case done:
			res.Skipped = true
		default:
			res.Err = r.apply(ctx, m)
		}

		if res.Err != nil {
			logging.Errorf("migration %s failed: %v", m.Flag, res.Err)
		} else if !res.Skipped {
			logging.Debugf("migration %s applied", m.Flag)
		}
		results = append(results, res)
	}
	return results
}

func (r *Runner) apply(ctx context.Context, m Migration) error {
	if err := m.Run(ctx); err != nil {
		return errors.NewMigrationError(m.Flag, err)
	}
	if err := r.flags.SetItem(ctx, m.Flag, FlagValue); err != nil {
		return errors.NewMigrationError(m.Flag, err)
	}
	return nil
}

// IsDone reports whether flag holds a truthy value.
func IsDone(ctx context.Context, flags FlagStore, flag string) (bool, error) {
	v, err := flags.GetItem(ctx, flag)
	if err != nil {
		return false, err
	}
	return v != nil && *v == FlagValue, nil
}
