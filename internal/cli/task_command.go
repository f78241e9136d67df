package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"taskdeck/internal/api"
	"taskdeck/internal/domain"
	"taskdeck/internal/timeutil"
)

// TaskCommand handles the task command
type TaskCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewTaskCommand creates a new task command handler
func NewTaskCommand(app *App) *TaskCommand {
	return &TaskCommand{app: app, errorHandler: NewErrorHandler()}
}

// ListOptions selects and orders the tasks printed by List
type ListOptions struct {
	Filter    api.TaskFilter
	SortField string
	Ascending bool
}

// Cobra builds the task command and its subcommands
func (c *TaskCommand) Cobra() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	var priority string
	add := &cobra.Command{
		Use:   "add <project-id> <title...>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args[1:], " ")
			return c.app.run(cmd, func(ctx context.Context) error { return c.Add(ctx, args[0], title, priority) })
		},
	}
	add.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high (default medium)")

	var opts ListOptions
	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Filter.Status = domain.TaskStatus(status)
			return c.app.run(cmd, func(ctx context.Context) error { return c.List(ctx, opts) })
		},
	}
	list.Flags().StringVar(&opts.Filter.ProjectID, "project", "", "Only tasks of this project")
	list.Flags().StringVar(&status, "status", "", "Only tasks with this status (todo, in-progress, done)")
	list.Flags().StringVar(&opts.Filter.Tag, "tag", "", "Only tasks with this tag")
	list.Flags().StringVar(&opts.Filter.Text, "search", "", "Only tasks whose title or subtasks contain this text")
	list.Flags().BoolVar(&opts.Filter.Archived, "archived", false, "List archived tasks")
	list.Flags().StringVar(&opts.SortField, "sort", "", "Save a new order: createdAt, dueDate, priority or title")
	list.Flags().BoolVar(&opts.Ascending, "asc", false, "Ascending order when --sort is given")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task with its subtasks and tracked time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, func(ctx context.Context) error { return c.Show(ctx, args[0]) })
		},
	}

	cmd.AddCommand(add, list, show, c.editCommand(), c.doneCommand(), c.subtaskCommand())
	cmd.AddCommand(c.simple("delete", "Delete a task", c.Delete))
	cmd.AddCommand(c.simple("archive", "Move a task to the archive", c.Archive))
	cmd.AddCommand(c.simple("restore", "Bring a task back from the archive", c.Restore))
	return cmd
}

func (c *TaskCommand) simple(name, short string, fn func(ctx context.Context, id string) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, func(ctx context.Context) error { return fn(ctx, args[0]) })
		},
	}
}

func (c *TaskCommand) editCommand() *cobra.Command {
	var title, project, status, priority, tag, due string
	var clearTag, clearDue bool

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			update := api.TaskUpdate{ClearTag: clearTag, ClearDueDate: clearDue}
			if flags.Changed("title") {
				update.Title = &title
			}
			if flags.Changed("project") {
				update.ProjectID = &project
			}
			if flags.Changed("status") {
				update.Status = &status
			}
			if flags.Changed("priority") {
				update.Priority = &priority
			}
			if flags.Changed("tag") {
				update.Tag = &tag
			}
			if flags.Changed("due") {
				update.DueDate = &due
			}
			return c.app.run(cmd, func(ctx context.Context) error { return c.Edit(ctx, args[0], update) })
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&project, "project", "", "Move to another project")
	cmd.Flags().StringVar(&status, "status", "", "todo, in-progress or done")
	cmd.Flags().StringVar(&priority, "priority", "", "low, medium or high")
	cmd.Flags().StringVar(&tag, "tag", "", "Tag")
	cmd.Flags().BoolVar(&clearTag, "clear-tag", false, "Remove the tag")
	cmd.Flags().StringVar(&due, "due", "", "Due date as YYYY-MM-DD")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")
	return cmd
}

func (c *TaskCommand) doneCommand() *cobra.Command {
	return c.simple("done", "Mark a task as done", func(ctx context.Context, id string) error {
		status := string(domain.StatusDone)
		return c.Edit(ctx, id, api.TaskUpdate{Status: &status})
	})
}

func (c *TaskCommand) subtaskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subtask",
		Aliases: []string{"sub"},
		Short:   "Manage the checklist of a task",
	}

	add := &cobra.Command{
		Use:   "add <task-id> <title...>",
		Short: "Append a subtask",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args[1:], " ")
			return c.app.run(cmd, func(ctx context.Context) error { return c.AddSubtask(ctx, args[0], title) })
		},
	}
	toggle := &cobra.Command{
		Use:   "toggle <task-id> <subtask-id>",
		Short: "Flip the completion of a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, func(ctx context.Context) error { return c.ToggleSubtask(ctx, args[0], args[1]) })
		},
	}
	del := &cobra.Command{
		Use:   "delete <task-id> <subtask-id>",
		Short: "Remove a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, func(ctx context.Context) error { return c.DeleteSubtask(ctx, args[0], args[1]) })
		},
	}

	cmd.AddCommand(add, toggle, del)
	return cmd
}

// Add creates a task
func (c *TaskCommand) Add(ctx context.Context, projectID, title, priority string) error {
	t, err := c.app.businessAPI.CreateTask(ctx, projectID, title, priority)
	if err != nil {
		return c.errorHandler.Handle("create task", err)
	}
	c.app.printf("Created task %s (%s)\n", t.Title, t.ID)
	return nil
}

// List prints the tasks matching opts. A sort field is saved as the new
// preference before listing.
func (c *TaskCommand) List(ctx context.Context, opts ListOptions) error {
	if opts.SortField != "" {
		if err := c.app.businessAPI.SetSort(ctx, opts.SortField, opts.Ascending); err != nil {
			return c.errorHandler.Handle("sort tasks", err)
		}
	}

	tasks, err := c.app.businessAPI.ListTasks(ctx, opts.Filter)
	if err != nil {
		return c.errorHandler.Handle("list tasks", err)
	}
	if len(tasks) == 0 {
		c.app.printf("No tasks found\n")
		return nil
	}

	w := tabwriter.NewWriter(c.app.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE\tTIME\tUPDATED")
	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = timeutil.DayKey(*t.DueDate)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Title, t.Status, t.Priority, due,
			timeutil.FormatDuration(t.TotalTimeSpent),
			humanize.RelTime(t.UpdatedAt, timeNow(), "ago", "from now"))
	}
	return w.Flush()
}

// Show prints one task in detail
func (c *TaskCommand) Show(ctx context.Context, id string) error {
	t, err := c.app.businessAPI.GetTask(ctx, id)
	if err != nil {
		return c.errorHandler.Handle("show task", err)
	}

	c.app.printf("%s\n", t.Title)
	c.app.printf("  id:        %s\n", t.ID)
	c.app.printf("  project:   %s\n", t.ProjectID)
	c.app.printf("  status:    %s\n", t.Status)
	c.app.printf("  priority:  %s\n", t.Priority)
	if t.Tag != nil {
		c.app.printf("  tag:       %s\n", *t.Tag)
	}
	if t.DueDate != nil {
		c.app.printf("  due:       %s\n", timeutil.DayKey(*t.DueDate))
	}
	if t.CompletedAt != nil {
		c.app.printf("  completed: %s\n", humanize.Time(*t.CompletedAt))
	}
	if t.IsArchived {
		c.app.printf("  archived\n")
	}
	c.app.printf("  tracked:   %s\n", timeutil.FormatDuration(t.TotalTimeSpent))
	for _, s := range t.Subtasks {
		mark := " "
		if s.Completed {
			mark = "x"
		}
		c.app.printf("  [%s] %s (%s)\n", mark, s.Title, s.ID)
	}
	return nil
}

// Edit applies update to a task
func (c *TaskCommand) Edit(ctx context.Context, id string, update api.TaskUpdate) error {
	t, err := c.app.businessAPI.UpdateTask(ctx, id, update)
	if err != nil {
		return c.errorHandler.Handle("update task", err)
	}
	c.app.printf("Updated task %s [%s]\n", t.Title, t.Status)
	return nil
}

// Delete removes a task
func (c *TaskCommand) Delete(ctx context.Context, id string) error {
	if err := c.app.businessAPI.DeleteTask(ctx, id); err != nil {
		return c.errorHandler.Handle("delete task", err)
	}
	c.app.printf("Deleted task %s\n", id)
	return nil
}

// Archive moves a task to the archive
func (c *TaskCommand) Archive(ctx context.Context, id string) error {
	if err := c.app.businessAPI.ArchiveTask(ctx, id); err != nil {
		return c.errorHandler.Handle("archive task", err)
	}
	c.app.printf("Archived task %s\n", id)
	return nil
}

// Restore brings a task back from the archive
func (c *TaskCommand) Restore(ctx context.Context, id string) error {
	if err := c.app.businessAPI.RestoreTask(ctx, id); err != nil {
		return c.errorHandler.Handle("restore task", err)
	}
	c.app.printf("Restored task %s\n", id)
	return nil
}

func (c *TaskCommand) AddSubtask(ctx context.Context, taskID, title string) error {
	s, err := c.app.businessAPI.AddSubtask(ctx, taskID, title)
	if err != nil {
		return c.errorHandler.Handle("add subtask", err)
	}
	c.app.printf("Added subtask %s (%s)\n", s.Title, s.ID)
	return nil
}

func (c *TaskCommand) ToggleSubtask(ctx context.Context, taskID, subtaskID string) error {
	if err := c.app.businessAPI.ToggleSubtask(ctx, taskID, subtaskID); err != nil {
		return c.errorHandler.Handle("toggle subtask", err)
	}
	c.app.printf("Toggled subtask %s\n", subtaskID)
	return nil
}

func (c *TaskCommand) DeleteSubtask(ctx context.Context, taskID, subtaskID string) error {
	if err := c.app.businessAPI.DeleteSubtask(ctx, taskID, subtaskID); err != nil {
		return c.errorHandler.Handle("delete subtask", err)
	}
	c.app.printf("Deleted subtask %s\n", subtaskID)
	return nil
}
