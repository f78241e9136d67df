package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// Opener builds the application container once configuration is known.
type Opener func(ctx context.Context, cfg *config.Config) (*api.App, error)

// App represents the main CLI application
type App struct {
	loader      *config.Loader
	open        Opener
	config      *config.Config
	container   *api.App
	businessAPI api.BusinessAPI
	out         io.Writer
	registry    *CommandRegistry
}

// NewApp creates an application that loads configuration and opens local
// storage when the first command runs.
func NewApp(loader *config.Loader, open Opener) *App {
	app := &App{loader: loader, open: open, out: os.Stdout}
	app.registry = NewCommandRegistry(app)
	return app
}

// NewAppWithAPI creates an application around an existing BusinessAPI.
// Commands that need the application container are unavailable.
func NewAppWithAPI(businessAPI api.BusinessAPI, cfg *config.Config, out io.Writer) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	app := &App{businessAPI: businessAPI, config: cfg, out: out}
	app.registry = NewCommandRegistry(app)
	return app
}

// Run executes the CLI application with the given arguments
func (a *App) Run(ctx context.Context, args []string) error {
	root := NewRootCommand(a)
	root.cmd.SetArgs(args)
	root.cmd.SetOut(a.out)
	return root.cmd.ExecuteContext(ctx)
}

// prepare loads configuration and opens the container unless a BusinessAPI
// was injected.
func (a *App) prepare(ctx context.Context, overrides *config.ConfigOverrides) error {
	if a.businessAPI != nil {
		return nil
	}
	if a.loader == nil || a.open == nil {
		return fmt.Errorf("application not initialized")
	}

	cfg, err := a.loader.LoadWithOverrides(overrides)
	if err != nil {
		return err
	}
	container, err := a.open(ctx, cfg)
	if err != nil {
		return err
	}
	a.config = cfg
	a.container = container
	a.businessAPI = container.API()
	return nil
}

// Close releases the container, if one was opened.
func (a *App) Close() error {
	if a.container == nil {
		return nil
	}
	err := a.container.Close()
	a.container = nil
	return err
}

// withTimeout bounds a single command by the configured application timeout.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := 60 * time.Second
	if a.config != nil && a.config.Application.Timeout > 0 {
		timeout = a.config.Application.Timeout
	}
	return context.WithTimeout(ctx, timeout)
}

// run calls fn with a context bounded by the application timeout.
func (a *App) run(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	ctx, cancel := a.withTimeout(cmd.Context())
	defer cancel()
	return fn(ctx)
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) requireContainer(command string) (*api.App, error) {
	if a.container == nil {
		return nil, fmt.Errorf("%s needs local storage; run it from the taskdeck binary", command)
	}
	return a.container, nil
}
