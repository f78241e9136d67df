package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskdeck/internal/api"
	"taskdeck/internal/domain"
	"taskdeck/internal/errors"
	"taskdeck/internal/timeutil"
)

// OutputCommand exports tasks
type OutputCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewOutputCommand creates a new output command handler
func NewOutputCommand(app *App) *OutputCommand {
	return &OutputCommand{app: app, errorHandler: NewErrorHandler()}
}

// Cobra builds the output command
func (c *OutputCommand) Cobra() *cobra.Command {
	var archived bool
	cmd := &cobra.Command{
		Use:   "output format=csv|json",
		Short: "Export tasks",
		Long: `Export every task in the given format to standard output.

Examples:
  taskdeck output format=csv > tasks.csv
  taskdeck output format=json --archived`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, func(ctx context.Context) error { return c.Execute(ctx, args, archived) })
		},
	}
	cmd.Flags().BoolVar(&archived, "archived", false, "Export archived tasks instead")
	return cmd
}

// Execute runs the output command
func (c *OutputCommand) Execute(ctx context.Context, args []string, archived bool) error {
	if len(args) == 0 {
		return errors.NewInvalidInputError("command", "output", "usage: taskdeck output format=csv")
	}

	format := args[0]
	if !strings.HasPrefix(format, "format=") {
		return errors.NewInvalidInputError("format", format, "invalid format option")
	}

	tasks, err := c.app.businessAPI.ListTasks(ctx, api.TaskFilter{Archived: archived})
	if err != nil {
		return c.errorHandler.Handle("export tasks", err)
	}

	switch format = strings.TrimPrefix(format, "format="); format {
	case "csv":
		return c.outputCSV(tasks)
	case "json":
		enc := json.NewEncoder(c.app.out)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	default:
		return errors.NewInvalidInputError("format", format, "unsupported format")
	}
}

// outputCSV writes one row per task
func (c *OutputCommand) outputCSV(tasks []domain.Task) error {
	writer := csv.NewWriter(c.app.out)

	header := []string{"ID", "Project", "Title", "Status", "Priority", "Tag", "Due", "Created", "Completed", "Hours"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, t := range tasks {
		var tag, due, completed string
		if t.Tag != nil {
			tag = *t.Tag
		}
		if t.DueDate != nil {
			due = timeutil.DayKey(*t.DueDate)
		}
		if t.CompletedAt != nil {
			completed = t.CompletedAt.Format(time.RFC3339)
		}
		row := []string{
			t.ID,
			t.ProjectID,
			t.Title,
			string(t.Status),
			string(t.Priority),
			tag,
			due,
			t.CreatedAt.Format(time.RFC3339),
			completed,
			strconv.FormatFloat(float64(t.TotalTimeSpent)/float64(time.Hour/time.Millisecond), 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
