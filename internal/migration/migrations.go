package migration

import (
	"context"

	"taskdeck/internal/domain"
)

// LegacyStore is the synchronous pre-migration storage.
type LegacyStore interface {
	Get(key string) (string, bool)
}

// KV is the destination key-value adapter.
type KV interface {
	SetItem(ctx context.Context, key, value string) error
}

// StorageBackendMigration copies the raw value under key from legacy storage
// into kv. The legacy value is left in place. Nothing is written when the
// legacy key holds no data.
func StorageBackendMigration(legacy LegacyStore, kv KV, key string) Migration {
	return Migration{
		Flag: FlagStorageBackend,
		Run: func(ctx context.Context) error {
			value, ok := legacy.Get(key)
			if !ok || value == "" {
				return nil
			}
			return kv.SetItem(ctx, key, value)
		},
	}
}

// ArchiveStore is the part of the local store the archived-task migration
// works through.
type ArchiveStore interface {
	Snapshot() domain.State
	RelocateArchived(ids []string) int
}

// ArchivedTaskMigration moves active tasks flagged as archived into the
// archived collection and tombstones them so the next sync removes them from
// the remote active table. flush, when set, makes the relocated state durable
// before the flag is written.
func ArchivedTaskMigration(store ArchiveStore, flush func(ctx context.Context) error) Migration {
	return Migration{
		Flag: FlagArchivedTasks,
		Run: func(ctx context.Context) error {
			var ids []string
			for _, t := range store.Snapshot().Tasks {
				if t.IsArchived {
					ids = append(ids, t.ID)
				}
			}
			if len(ids) == 0 {
				return nil
			}
			store.RelocateArchived(ids)
			if flush != nil {
				return flush(ctx)
			}
			return nil
		},
	}
}
