package cli

import (
	"context"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"taskdeck/internal/errors"
)

// LoginCommand stores a session from an access token
type LoginCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewLoginCommand creates a new login command handler
func NewLoginCommand(app *App) *LoginCommand {
	return &LoginCommand{app: app, errorHandler: NewErrorHandler()}
}

// Cobra builds the login command
func (c *LoginCommand) Cobra() *cobra.Command {
	var token, refresh string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an access token issued by the auth provider",
		Long: `Sign in with an access token. The token may also be given in
TD_ACCESS_TOKEN so it does not end up in the shell history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = os.Getenv("TD_ACCESS_TOKEN")
			}
			return c.app.run(cmd, func(ctx context.Context) error { return c.Execute(ctx, token, refresh) })
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Access token (JWT)")
	cmd.Flags().StringVar(&refresh, "refresh-token", "", "Refresh token")
	return cmd
}

// Execute signs in
func (c *LoginCommand) Execute(ctx context.Context, token, refresh string) error {
	if token == "" {
		return errors.NewInvalidInputError("token", "", "usage: taskdeck login --token <access-token>")
	}
	session, err := c.app.businessAPI.Login(ctx, token, refresh)
	if err != nil {
		return c.errorHandler.Handle("sign in", err)
	}

	who := session.User.ID
	if session.User.Email != "" {
		who = session.User.Email
	}
	c.app.printf("Signed in as %s\n", who)
	if !session.ExpiresAt.IsZero() {
		c.app.printf("Session expires %s\n", humanize.RelTime(session.ExpiresAt, timeNow(), "ago", "from now"))
	}
	return nil
}

// LogoutCommand clears the session
type LogoutCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewLogoutCommand creates a new logout command handler
func NewLogoutCommand(app *App) *LogoutCommand {
	return &LogoutCommand{app: app, errorHandler: NewErrorHandler()}
}

// Cobra builds the logout command
func (c *LogoutCommand) Cobra() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out; local data is kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, c.Execute)
		},
	}
}

// Execute signs out
func (c *LogoutCommand) Execute(ctx context.Context) error {
	if err := c.app.businessAPI.Logout(ctx); err != nil {
		return c.errorHandler.Handle("sign out", err)
	}
	c.app.printf("Signed out\n")
	return nil
}

// StatusCommand prints identity, sync and focus state
type StatusCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewStatusCommand creates a new status command handler
func NewStatusCommand(app *App) *StatusCommand {
	return &StatusCommand{app: app, errorHandler: NewErrorHandler()}
}

// Cobra builds the status command
func (c *StatusCommand) Cobra() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show account, sync and focus state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.run(cmd, c.Execute)
		},
	}
}

// Execute prints the status
func (c *StatusCommand) Execute(ctx context.Context) error {
	status, err := c.app.businessAPI.Status(ctx)
	if err != nil {
		return c.errorHandler.Handle("read status", err)
	}

	if status.User == nil {
		c.app.printf("Account:  signed out\n")
	} else {
		plan := "free"
		if status.Pro {
			plan = "pro"
		}
		c.app.printf("Account:  %s (%s)\n", status.User.ID, plan)
		if status.SessionExpires != nil {
			c.app.printf("Expires:  %s\n", humanize.RelTime(*status.SessionExpires, timeNow(), "ago", "from now"))
		}
	}

	remote := "not configured"
	if status.RemoteEnabled {
		remote = "configured"
	}
	c.app.printf("Remote:   %s\n", remote)
	if status.LastPushedAt != nil {
		c.app.printf("Pushed:   %s\n", humanize.Time(*status.LastPushedAt))
	}
	c.app.printf("Pending:  %d project deletion(s), %d task deletion(s)\n",
		len(status.PendingDeletes.Projects), len(status.PendingDeletes.Tasks))
	if status.Focus != nil {
		c.app.printf("Focus:    %s (%s)\n", status.Focus.Task.Title, formatElapsed(status.Focus.ElapsedMs))
	}
	return nil
}
