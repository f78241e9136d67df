// Package remote defines the row-oriented backend the sync engine talks to and
// a gorm implementation of it.
package remote

import (
	"context"
	"encoding/json"
)

// Table names of the remote store.
const (
	TableProjects = "projects"
	TableTasks    = "tasks"
	TableProfiles = "profiles"
)

// Row is one remote record keyed by column name.
type Row map[string]interface{}

// Filter restricts a select to rows whose columns equal the given values.
type Filter map[string]interface{}

// Store is the remote backend contract. Rows are addressed by table name and
// identified by their "id" column.
type Store interface {
	Select(ctx context.Context, table string, filter Filter) ([]Row, error)
	Upsert(ctx context.Context, table string, rows []Row) error
	Delete(ctx context.Context, table string, ids []string) error
	// Invoke runs a named server-side function. The sync engine never uses it.
	Invoke(ctx context.Context, function string, payload interface{}) (json.RawMessage, error)
	SignOut(ctx context.Context) error
}
