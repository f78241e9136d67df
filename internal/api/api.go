// Package api wires the application together: it opens local storage, runs
// the startup migrations, restores the store and exposes the business
// operations used by the CLI and the HTTP server.
package api

import (
	"context"
	stderrors "errors"
	"time"

	"taskdeck/internal/auth"
	"taskdeck/internal/config"
	"taskdeck/internal/logging"
	"taskdeck/internal/migration"
	"taskdeck/internal/remote"
	"taskdeck/internal/repository/sqlite"
	"taskdeck/internal/store"
	"taskdeck/internal/syncengine"
)

// App owns every long-lived component. Close releases them.
type App struct {
	Config     *config.Config
	Store      *store.Store
	Engine     *syncengine.Engine // nil without a remote store
	Migrations []migration.Result

	kv        *sqlite.KVStore
	persister *store.KVPersister
	closeFns  []func() error
	api       BusinessAPI
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	remote remote.Store
	now    func() time.Time
	newID  func() string
}

// WithRemoteStore uses rs instead of connecting to the configured remote.
func WithRemoteStore(rs remote.Store) Option {
	return func(o *openOptions) { o.remote = rs }
}

// WithClock sets the time source of the store, the sync engine and the API.
func WithClock(now func() time.Time) Option {
	return func(o *openOptions) { o.now = now }
}

// WithIDGenerator sets the id source of the store.
func WithIDGenerator(newID func() string) Option {
	return func(o *openOptions) { o.newID = newID }
}

// Open builds the application. The storage migration runs before the
// persisted state is read and the archived-task migration runs on the
// restored store, so both complete before the store is handed out.
// Migration failures are logged and do not stop startup.
func Open(ctx context.Context, cfg *config.Config, env config.Environment, opts ...Option) (_ *App, err error) {
	o := openOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	kv, err := config.CreateKVStore(ctx, cfg, env)
	if err != nil {
		return nil, err
	}
	app.kv = kv
	app.closeFns = append(app.closeFns, kv.Close)

	legacyStore, err := config.OpenLegacyStore(cfg)
	if err != nil {
		return nil, err
	}
	key := cfg.Storage.Key
	app.Migrations = migration.NewRunner(kv, migration.StorageBackendMigration(legacyStore, kv, key)).Run(ctx)

	state, found, err := store.Load(ctx, kv, key)
	if err != nil {
		logging.Errorf("persisted state unreadable, starting empty: %v", err)
		found = false
	}

	rs := o.remote
	if rs == nil && cfg.Remote.Enabled() {
		gs, err := openRemote(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.closeFns = append(app.closeFns, gs.Close)
		rs = gs
	}

	app.persister = store.NewKVPersister(kv, key, cfg.Database.WriteTimeout)
	storeOpts := []store.Option{store.WithPersister(app.persister), store.WithClock(o.now)}
	if rs != nil {
		storeOpts = append(storeOpts, store.WithRemote(rs))
	}
	if o.newID != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(o.newID))
	}
	app.Store = store.New(storeOpts...)
	if found {
		app.Store.Hydrate(state)
	}

	archived := migration.NewRunner(kv, migration.ArchivedTaskMigration(app.Store, app.persister.Flush)).Run(ctx)
	app.Migrations = append(app.Migrations, archived...)

	app.Store.SetSession(state.Session)

	if rs != nil {
		app.Engine = syncengine.New(app.Store, rs, syncengine.WithClock(o.now))
	}
	app.api = newBusinessAPI(app.Store, app.Engine, auth.NewDecoder(cfg.Remote.JWTSecret), cfg, o.now)
	return app, nil
}

func openRemote(ctx context.Context, cfg *config.Config) (*remote.GormStore, error) {
	gs, err := remote.Open(remote.Options{
		Driver:  cfg.Remote.Driver,
		DSN:     cfg.Remote.DSN,
		Timeout: cfg.Remote.Timeout,
		Verbose: cfg.Application.Verbose,
	})
	if err != nil {
		return nil, err
	}
	// A sqlite remote is a local stand-in; hosted backends own their schema.
	if cfg.Remote.Driver == "sqlite" {
		if err := gs.EnsureSchema(ctx); err != nil {
			_ = gs.Close()
			return nil, err
		}
	}
	return gs, nil
}

// API returns the business operations.
func (a *App) API() BusinessAPI {
	return a.api
}

// MigrationStatus reports the state of every migration flag. Built-in
// migrations that never ran are listed as pending.
func (a *App) MigrationStatus(ctx context.Context) (map[string]bool, error) {
	status := map[string]bool{
		migration.FlagStorageBackend: false,
		migration.FlagArchivedTasks:  false,
	}
	items, err := a.kv.ListItems(ctx, migration.FlagPrefix)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		status[item.Key] = item.Value == migration.FlagValue
	}
	return status, nil
}

// Close waits for background work, writes the last snapshot and closes the
// databases.
func (a *App) Close() error {
	var errs []error
	if a.Store != nil {
		a.Store.Wait()
	}
	if a.persister != nil {
		errs = append(errs, a.persister.Close())
	}
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		errs = append(errs, a.closeFns[i]())
	}
	a.closeFns = nil
	return stderrors.Join(errs...)
}
