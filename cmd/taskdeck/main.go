package main

import (
	"context"
	"fmt"
	"os"

	"taskdeck/internal/api"
	"taskdeck/internal/cli"
	"taskdeck/internal/config"
)

func main() {
	env := config.GetEnvironment()
	open := func(ctx context.Context, cfg *config.Config) (*api.App, error) {
		return api.Open(ctx, cfg, env)
	}

	app := cli.NewApp(config.NewLoader(), open)
	err := app.Run(context.Background(), os.Args[1:])
	if closeErr := app.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
