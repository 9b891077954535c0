package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/docforge/docforge/internal/api"
	"github.com/docforge/docforge/internal/tui"
)

// LoginCommand handles the login command
type LoginCommand struct {
	deps Deps

	username string
	email    string
	password string
}

// NewLoginCommand creates a new login command
func NewLoginCommand(deps Deps) *cobra.Command {
	cmd := &LoginCommand{deps: deps}

	cobraCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the docforge server",
		Long:  `Log in with username and password. Logging in by email reuses the username cached for that email.`,
		RunE:  cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.username, "username", "u", "", "account username")
	cobraCmd.Flags().StringVarP(&cmd.email, "email", "e", "", "account email (resolved to the cached username)")
	cobraCmd.Flags().StringVarP(&cmd.password, "password", "p", "", "account password (prompted when omitted)")

	return cobraCmd
}

// Run executes the login command
func (c *LoginCommand) Run(cmd *cobra.Command, args []string) error {
	username := c.username
	if username == "" && c.email != "" {
		username = c.deps.Store.UsernameFor(c.email)
		if username == "" {
			prompt := huh.NewInput().
				Title(fmt.Sprintf("Username for %s", c.email)).
				Value(&username)
			if err := huh.NewForm(huh.NewGroup(prompt)).WithTheme(tui.NewHuhTheme()).Run(); err != nil {
				return fmt.Errorf("failed to read username: %w", err)
			}
		}
	}

	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("a username is required (--username or --email)")
	}

	password := c.password
	if password == "" {
		prompt := huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password)
		if err := huh.NewForm(huh.NewGroup(prompt)).WithTheme(tui.NewHuhTheme()).Run(); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	if _, err := c.deps.Client.Login(cmd.Context(), username, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if c.email != "" {
		if err := c.deps.Store.RememberUsername(c.email, username); err != nil {
			c.deps.Log.Warn("failed to cache username", "error", err)
		}
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", username)
	return nil
}

// LogoutCommand handles the logout command
type LogoutCommand struct {
	deps Deps
}

// NewLogoutCommand creates a new logout command
func NewLogoutCommand(deps Deps) *cobra.Command {
	cmd := &LogoutCommand{deps: deps}

	return &cobra.Command{
		Use:   "logout",
		Short: "Destroy the local session",
		RunE:  cmd.Run,
	}
}

// Run executes the logout command
func (c *LogoutCommand) Run(cmd *cobra.Command, args []string) error {
	if err := c.deps.Client.Logout(); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

// RegisterCommand handles the register command
type RegisterCommand struct {
	deps Deps

	email    string
	username string
	password string
}

// NewRegisterCommand creates a new register command
func NewRegisterCommand(deps Deps) *cobra.Command {
	cmd := &RegisterCommand{deps: deps}

	cobraCmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Long:  `Create a new account on the server. Registering does not log you in.`,
		RunE:  cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.email, "email", "e", "", "account email")
	cobraCmd.Flags().StringVarP(&cmd.username, "username", "u", "", "account username")
	cobraCmd.Flags().StringVarP(&cmd.password, "password", "p", "", "account password (prompted when omitted)")

	return cobraCmd
}

// Run executes the register command
func (c *RegisterCommand) Run(cmd *cobra.Command, args []string) error {
	password := c.password
	if password == "" {
		prompt := huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password)
		if err := huh.NewForm(huh.NewGroup(prompt)).WithTheme(tui.NewHuhTheme()).Run(); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	err := c.deps.Client.Register(cmd.Context(), api.RegisterInput{
		Email:    c.email,
		Username: c.username,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	if err := c.deps.Store.RememberUsername(c.email, c.username); err != nil {
		c.deps.Log.Warn("failed to cache username", "error", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered %s. Run 'docforge login' to sign in.\n", c.username)
	return nil
}
