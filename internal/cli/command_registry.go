package cli

import (
	"github.com/spf13/cobra"
)

// Command is a top-level CLI command
type Command interface {
	Cobra() *cobra.Command
}

// CommandRegistry manages all available commands
type CommandRegistry struct {
	commands map[string]Command
	order    []string
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry(app *App) *CommandRegistry {
	registry := &CommandRegistry{
		commands: make(map[string]Command),
	}

	registry.Register("project", NewProjectCommand(app))
	registry.Register("task", NewTaskCommand(app))
	registry.Register("time", NewTimeCommand(app))
	registry.Register("focus", NewFocusCommand(app))
	registry.Register("stats", NewStatsCommand(app))
	registry.Register("chart", NewChartCommand(app))
	registry.Register("login", NewLoginCommand(app))
	registry.Register("logout", NewLogoutCommand(app))
	registry.Register("status", NewStatusCommand(app))
	registry.Register("sync", NewSyncCommand(app))
	registry.Register("migrate", NewMigrateCommand(app))
	registry.Register("output", NewOutputCommand(app))
	registry.Register("serve", NewServeCommand(app))

	return registry
}

// Register adds a command to the registry. Registering a name twice
// replaces the earlier command.
func (r *CommandRegistry) Register(name string, command Command) {
	if _, exists := r.commands[name]; !exists {
		r.order = append(r.order, name)
	}
	r.commands[name] = command
}

// Lookup returns the command registered under name.
func (r *CommandRegistry) Lookup(name string) (Command, bool) {
	command, ok := r.commands[name]
	return command, ok
}

// Names returns the registered names in registration order.
func (r *CommandRegistry) Names() []string {
	return append([]string(nil), r.order...)
}

// CobraCommands builds the cobra command of every registered command.
func (r *CommandRegistry) CobraCommands() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(r.order))
	for _, name := range r.order {
		cmds = append(cmds, r.commands[name].Cobra())
	}
	return cmds
}
