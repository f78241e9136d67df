package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"taskdeck/internal/server"
)

// ServeCommand runs the local JSON API
type ServeCommand struct {
	app *App
}

// NewServeCommand creates a new serve command handler
func NewServeCommand(app *App) *ServeCommand {
	return &ServeCommand{app: app}
}

// Cobra builds the serve command
func (c *ServeCommand) Cobra() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and sync in the background",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.Execute(ctx)
		},
	}
}

// Execute serves until ctx is cancelled. The sync loop runs alongside
// when a remote store is configured.
func (c *ServeCommand) Execute(ctx context.Context) error {
	cfg := c.app.config
	if container := c.app.container; container != nil && container.Engine != nil {
		go container.Engine.Run(ctx, cfg.Sync.Interval)
	}

	c.app.printf("Serving on http://%s\n", cfg.Server.Addr)
	return server.New(c.app.businessAPI, cfg.Server).Run(ctx)
}
