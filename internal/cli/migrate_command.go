package cli

import (
	"context"
	"sort"

	"github.com/spf13/cobra"
)

// MigrateCommand reports the startup migrations
type MigrateCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewMigrateCommand creates a new migrate command handler
func NewMigrateCommand(app *App) *MigrateCommand {
	return &MigrateCommand{app: app, errorHandler: NewErrorHandler()}
}

// Cobra builds the migrate command
func (c *MigrateCommand) Cobra() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Show the state of the local data migrations",
		Long: `Migrations run automatically whenever taskdeck starts. This command
shows what the current start did and which migrations are complete.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, c.Execute)
		},
	}
}

// Execute prints the migration results and flags
func (c *MigrateCommand) Execute(ctx context.Context) error {
	container, err := c.app.requireContainer("migrate")
	if err != nil {
		return err
	}

	for _, res := range container.Migrations {
		switch {
		case res.Err != nil:
			c.app.printf("%s: failed: %v\n", res.Flag, res.Err)
		case res.Skipped:
			c.app.printf("%s: already done\n", res.Flag)
		default:
			c.app.printf("%s: migrated\n", res.Flag)
		}
	}

	status, err := container.MigrationStatus(ctx)
	if err != nil {
		return c.errorHandler.Handle("read migration status", err)
	}
	flags := make([]string, 0, len(status))
	for flag := range status {
		flags = append(flags, flag)
	}
	sort.Strings(flags)

	pending := 0
	for _, flag := range flags {
		state := "done"
		if !status[flag] {
			state = "pending"
			pending++
		}
		c.app.printf("  %-32s %s\n", flag, state)
	}
	if pending > 0 {
		c.app.printf("%d migration(s) pending; they are retried on the next start\n", pending)
	} else {
		c.app.printf("All migrations complete\n")
	}
	return nil
}
