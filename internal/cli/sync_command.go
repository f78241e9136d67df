package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskdeck/internal/syncengine"
)

// SyncCommand runs the sync engine
type SyncCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewSyncCommand creates a new sync command handler
func NewSyncCommand(app *App) *SyncCommand {
	return &SyncCommand{app: app, errorHandler: NewErrorHandler()}
}

// Cobra builds the sync command
func (c *SyncCommand) Cobra() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Exchange changes with the remote store",
		Long: `Run one sync cycle: pending deletions, then local changes, then remote
projects and tasks. With --watch the cycle repeats every sync interval
until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return c.Watch(ctx)
			}
			return c.app.run(cmd, c.Execute)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep syncing every sync interval")
	return cmd
}

// Execute runs one sync cycle and prints its report
func (c *SyncCommand) Execute(ctx context.Context) error {
	report, err := c.app.businessAPI.Sync(ctx)
	if err != nil {
		return c.errorHandler.Handle("sync", err)
	}
	c.printReport(report)
	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("sync finished with %d failed step(s)", len(failed))
	}
	return nil
}

// Watch runs the periodic sync loop until ctx is cancelled
func (c *SyncCommand) Watch(ctx context.Context) error {
	container, err := c.app.requireContainer("sync --watch")
	if err != nil {
		return err
	}
	if container.Engine == nil {
		return c.errorHandler.Handle("sync", fmt.Errorf("no remote store configured"))
	}
	c.app.printf("Syncing every %s, press Ctrl+C to stop\n", container.Config.Sync.Interval)
	container.Engine.Run(ctx, container.Config.Sync.Interval)
	return nil
}

func (c *SyncCommand) printReport(report *syncengine.Report) {
	for _, res := range report.Results {
		c.app.printf("%s\n", res)
	}
	c.app.printf("Finished in %s\n", report.Duration.Round(time.Millisecond))
}
