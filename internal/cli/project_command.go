package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// ProjectCommand handles the project command
type ProjectCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewProjectCommand creates a new project command handler
func NewProjectCommand(app *App) *ProjectCommand {
	return &ProjectCommand{app: app, errorHandler: NewErrorHandler()}
}

// Cobra builds the project command and its subcommands
func (c *ProjectCommand) Cobra() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	var color string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, func(ctx context.Context) error { return c.Add(ctx, args[0], color) })
		},
	}
	add.Flags().StringVar(&color, "color", "", "Hex color such as #6366f1")

	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, c.List)
		},
	}

	rename := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, func(ctx context.Context) error { return c.Update(ctx, args[0], &args[1], nil) })
		},
	}

	recolor := &cobra.Command{
		Use:   "color <id> <color>",
		Short: "Change the color of a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, func(ctx context.Context) error { return c.Update(ctx, args[0], nil, &args[1]) })
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project; its tasks are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, func(ctx context.Context) error { return c.Delete(ctx, args[0]) })
		},
	}

	cmd.AddCommand(add, list, rename, recolor, del)
	return cmd
}

// Add creates a project
func (c *ProjectCommand) Add(ctx context.Context, name, color string) error {
	p, err := c.app.businessAPI.CreateProject(ctx, name, color)
	if err != nil {
		return c.errorHandler.Handle("create project", err)
	}
	c.app.printf("Created project %s (%s)\n", p.Name, p.ID)
	return nil
}

// List prints every project
func (c *ProjectCommand) List(ctx context.Context) error {
	projects, err := c.app.businessAPI.ListProjects(ctx)
	if err != nil {
		return c.errorHandler.Handle("list projects", err)
	}
	if len(projects) == 0 {
		c.app.printf("No projects found\n")
		return nil
	}

	w := tabwriter.NewWriter(c.app.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOLOR\tUPDATED")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Color, humanize.RelTime(p.UpdatedAt, timeNow(), "ago", "from now"))
	}
	return w.Flush()
}

// Update renames or recolors a project
func (c *ProjectCommand) Update(ctx context.Context, id string, name, color *string) error {
	p, err := c.app.businessAPI.UpdateProject(ctx, id, name, color)
	if err != nil {
		return c.errorHandler.Handle("update project", err)
	}
	c.app.printf("Updated project %s (%s, %s)\n", p.Name, p.ID, p.Color)
	return nil
}

// Delete removes a project
func (c *ProjectCommand) Delete(ctx context.Context, id string) error {
	if err := c.app.businessAPI.DeleteProject(ctx, id); err != nil {
		return c.errorHandler.Handle("delete project", err)
	}
	c.app.printf("Deleted project %s\n", id)
	return nil
}
