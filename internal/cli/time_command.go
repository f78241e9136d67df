package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"taskdeck/internal/errors"
	"taskdeck/internal/timeutil"
)

// TimeCommand handles manual time entry
type TimeCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewTimeCommand creates a new time command handler
func NewTimeCommand(app *App) *TimeCommand {
	return &TimeCommand{app: app, errorHandler: NewErrorHandler()}
}

// Cobra builds the time command
func (c *TimeCommand) Cobra() *cobra.Command {
	return &cobra.Command{
		Use:   "time <task-id> <duration>",
		Short: "Add tracked time to a task",
		Long: `Add time to a task for today. The duration uses Go syntax.

Examples:
  taskdeck time <task-id> 45m
  taskdeck time <task-id> 1h30m`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, func(ctx context.Context) error { return c.Execute(ctx, args) })
		},
	}
}

// Execute parses the duration argument and records it
func (c *TimeCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.NewInvalidInputError("command", "time", "usage: taskdeck time <task-id> <duration>")
	}
	d, err := time.ParseDuration(args[1])
	if err != nil {
		return errors.NewInvalidInputError("duration", args[1], "expected a duration such as 1h30m")
	}

	h, m, s := splitDuration(d)
	t, err := c.app.businessAPI.AddTime(ctx, args[0], h, m, s)
	if err != nil {
		return c.errorHandler.Handle("add time", err)
	}
	c.app.printf("Added %s to %s (total %s)\n",
		timeutil.FormatDuration(timeutil.NormalizeTime(h, m, s)), t.Title, timeutil.FormatDuration(t.TotalTimeSpent))
	return nil
}

// splitDuration truncates d to whole seconds.
func splitDuration(d time.Duration) (hours, minutes, seconds int64) {
	total := int64(d / time.Second)
	return total / 3600, total % 3600 / 60, total % 60
}

func formatElapsed(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprint(time.Duration(ms) * time.Millisecond)
}
