package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"taskdeck/internal/services"
	"taskdeck/internal/timeutil"
)

// StatsCommand prints the progress of a project
type StatsCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewStatsCommand creates a new stats command handler
func NewStatsCommand(app *App) *StatsCommand {
	return &StatsCommand{app: app, errorHandler: NewErrorHandler()}
}

// Cobra builds the stats command
func (c *StatsCommand) Cobra() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <project-id>",
		Short: "Show task counts and progress of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, func(ctx context.Context) error { return c.Execute(ctx, args[0]) })
		},
	}
}

// Execute prints the statistics of one project
func (c *StatsCommand) Execute(ctx context.Context, projectID string) error {
	stats, err := c.app.businessAPI.ProjectStats(ctx, projectID)
	if err != nil {
		return c.errorHandler.Handle("compute statistics", err)
	}

	c.app.printf("Tasks:       %d\n", stats.Total)
	c.app.printf("To do:       %d\n", stats.Todo)
	c.app.printf("In progress: %d\n", stats.InProgress)
	c.app.printf("Done:        %d\n", stats.Done)
	c.app.printf("Progress:    %s %d%%\n", progressBar(stats.Progress, 20), stats.Progress)
	return nil
}

func progressBar(percent, width int) string {
	filled := percent * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

// ChartCommand prints hours per day
type ChartCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewChartCommand creates a new chart command handler
func NewChartCommand(app *App) *ChartCommand {
	return &ChartCommand{app: app, errorHandler: NewErrorHandler()}
}

// ChartOptions selects the chart window
type ChartOptions struct {
	ProjectID  string
	Mode       string
	WeekOffset int
}

// Cobra builds the chart command
func (c *ChartCommand) Cobra() *cobra.Command {
	var opts ChartOptions
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Show tracked hours per day",
		Long: `Show tracked hours per day for one project or for everything.

Modes:
  week          Monday to Sunday; --week 1 is last week
  last_7_days   The seven days ending today`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, func(ctx context.Context) error { return c.Execute(ctx, opts) })
		},
	}
	cmd.Flags().StringVar(&opts.ProjectID, "project", "", "Only time of this project")
	cmd.Flags().StringVar(&opts.Mode, "mode", string(services.ChartWeek), "week or last_7_days")
	cmd.Flags().IntVar(&opts.WeekOffset, "week", 0, "Weeks back from the current week")
	return cmd
}

// Execute prints one bar per day
func (c *ChartCommand) Execute(ctx context.Context, opts ChartOptions) error {
	points, err := c.app.businessAPI.Chart(ctx, opts.ProjectID, opts.Mode, opts.WeekOffset)
	if err != nil {
		return c.errorHandler.Handle("build chart", err)
	}

	if opts.Mode == "" || opts.Mode == string(services.ChartWeek) {
		c.app.printf("%s\n", timeutil.WeekRangeLabel(timeNow(), opts.WeekOffset))
	}
	for _, p := range points {
		// one block per quarter hour
		c.app.printf("%s %s %5.2fh %s\n", p.Label, p.Day, p.Hours, strings.Repeat("█", int(p.Hours*4)))
	}
	c.app.printf("Total: %.2fh\n", services.TotalHours(points))
	return nil
}
