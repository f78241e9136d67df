package cli

import (
	"github.com/spf13/cobra"

	"taskdeck/internal/config"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd *cobra.Command
	app *App
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(app *App) *RootCommand {
	root := &RootCommand{app: app}

	root.cmd = &cobra.Command{
		Use:   "taskdeck",
		Short: "An offline-first task and project manager",
		Long: `taskdeck keeps projects, tasks and tracked time in a local database and
synchronizes them with a remote store when you are signed in.

EXAMPLES:
  taskdeck project add "Website"              # Create a project
  taskdeck task add <project-id> Fix the nav  # Add a task to it
  taskdeck task list --project <project-id>   # List its tasks
  taskdeck time <task-id> 1h30m               # Record time manually
  taskdeck focus start <task-id>              # Track time while you work
  taskdeck chart --mode last_7_days           # Hours per day
  taskdeck login --token <access-token>       # Sign in for sync
  taskdeck sync                               # Run one sync cycle
  taskdeck serve                              # Start the local JSON API

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > .env > config file > defaults

    TD_CONFIG               Config file (default: <db-dir>/config.yaml)
    TD_DB_DIR               Database directory (default: ~/.taskdeck)
    TD_DB_FILENAME          Database filename (default: taskdeck.db)
    TD_LEGACY_PATH          Flat storage file migrated on first start
    TD_REMOTE_DRIVER        postgres, mysql or sqlite (default: postgres)
    TD_REMOTE_DSN           Remote store DSN; empty disables sync
    TD_JWT_SECRET           Verifies access tokens on login
    TD_SYNC_INTERVAL        Background sync interval (default: 5m)
    TD_SERVER_ADDR          JSON API address (default: 127.0.0.1:8787)
    TD_APP_TIMEOUT          Per-command timeout (default: 60s)
    TD_DEBUG                Print debug output`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.prepare(cmd.Context(), root.overridesFromFlags())
		},
	}

	root.addGlobalFlags()
	root.cmd.AddCommand(app.registry.CobraCommands()...)

	return root
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "Config file (overrides TD_CONFIG)")

	// Database configuration
	flags.String("db-dir", "", "Database directory (overrides TD_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides TD_DB_FILENAME)")

	// Remote configuration
	flags.String("remote-driver", "", "Remote store driver (overrides TD_REMOTE_DRIVER)")
	flags.String("remote-dsn", "", "Remote store DSN (overrides TD_REMOTE_DSN)")
	flags.Duration("sync-interval", 0, "Background sync interval (overrides TD_SYNC_INTERVAL)")

	flags.String("addr", "", "JSON API address (overrides TD_SERVER_ADDR)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Per-command timeout (overrides TD_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable verbose output (overrides TD_APP_VERBOSE)")
}

// overridesFromFlags collects the flags that were set explicitly.
func (r *RootCommand) overridesFromFlags() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()
	overrides := &config.ConfigOverrides{}

	if flags.Changed("config") {
		v, _ := flags.GetString("config")
		overrides.ConfigFile = &v
	}
	if flags.Changed("db-dir") {
		v, _ := flags.GetString("db-dir")
		overrides.DBDir = &v
	}
	if flags.Changed("db-filename") {
		v, _ := flags.GetString("db-filename")
		overrides.DBFilename = &v
	}
	if flags.Changed("remote-driver") {
		v, _ := flags.GetString("remote-driver")
		overrides.RemoteDriver = &v
	}
	if flags.Changed("remote-dsn") {
		v, _ := flags.GetString("remote-dsn")
		overrides.RemoteDSN = &v
	}
	if flags.Changed("sync-interval") {
		v, _ := flags.GetDuration("sync-interval")
		overrides.SyncInterval = &v
	}
	if flags.Changed("addr") {
		v, _ := flags.GetString("addr")
		overrides.ServerAddr = &v
	}
	if flags.Changed("app-timeout") {
		v, _ := flags.GetDuration("app-timeout")
		overrides.Timeout = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		overrides.Verbose = &v
	}
	return overrides
}
