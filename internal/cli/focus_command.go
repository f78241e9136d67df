package cli

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"taskdeck/internal/timeutil"
)

// FocusCommand handles focus sessions
type FocusCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewFocusCommand creates a new focus command handler
func NewFocusCommand(app *App) *FocusCommand {
	return &FocusCommand{app: app, errorHandler: NewErrorHandler()}
}

// Cobra builds the focus command. Without a subcommand it shows the
// running session.
func (c *FocusCommand) Cobra() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Track time on one task while you work on it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, c.Current)
		},
	}

	start := &cobra.Command{
		Use:   "start <task-id>",
		Short: "Focus on a task, ending any running session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, func(ctx context.Context) error { return c.Start(ctx, args[0]) })
		},
	}
	stop := &cobra.Command{
		Use:   "stop",
		Short: "End the session and credit the elapsed time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, c.Stop)
		},
	}

	cmd.AddCommand(start, stop)
	return cmd
}

// Start begins a focus session
func (c *FocusCommand) Start(ctx context.Context, taskID string) error {
	previous, _ := c.app.businessAPI.CurrentFocus(ctx)
	focus, err := c.app.businessAPI.StartFocus(ctx, taskID)
	if err != nil {
		return c.errorHandler.Handle("start focus", err)
	}
	if previous != nil {
		c.app.printf("Stopped focusing on %s\n", previous.Task.Title)
	}
	c.app.printf("Focusing on %s\n", focus.Task.Title)
	return nil
}

// Stop ends the focus session
func (c *FocusCommand) Stop(ctx context.Context) error {
	credited, err := c.app.businessAPI.StopFocus(ctx)
	if err != nil {
		return c.errorHandler.Handle("stop focus", err)
	}
	c.app.printf("Focus ended, credited %s\n", timeutil.FormatDuration(credited))
	return nil
}

// Current prints the running focus session
func (c *FocusCommand) Current(ctx context.Context) error {
	focus, err := c.app.businessAPI.CurrentFocus(ctx)
	if err != nil {
		return c.errorHandler.Handle("show focus", err)
	}
	if focus == nil {
		c.app.printf("No focus session running\n")
		return nil
	}
	c.app.printf("Focusing on %s since %s (%s)\n",
		focus.Task.Title, humanize.RelTime(focus.StartedAt, timeNow(), "ago", "from now"), formatElapsed(focus.ElapsedMs))
	return nil
}
