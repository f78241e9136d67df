package sqlite

import "time"

// Item is one row of the kv_store table.
type Item struct {
	Key       string
	Value     string
	UpdatedAt *time.Time // nil for rows written before updated_at existed
}
