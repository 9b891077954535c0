package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/docforge/docforge/internal/github"
	"github.com/docforge/docforge/internal/tui"
)

// NewGitHubCommand creates the github command group
func NewGitHubCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "github",
		Short: "Connect your GitHub account",
	}

	cmd.AddCommand(NewGitHubConnectCommand(deps))

	return cmd
}

// GitHubConnectCommand handles the github connect command
type GitHubConnectCommand struct {
	deps Deps

	code  string
	state string
}

// NewGitHubConnectCommand creates a new github connect command
func NewGitHubConnectCommand(deps Deps) *cobra.Command {
	cmd := &GitHubConnectCommand{deps: deps}

	cobraCmd := &cobra.Command{
		Use:   "connect",
		Short: "Authorize docforge to read your repositories",
		Long: `Run the GitHub OAuth flow. Open the printed URL in a browser,
authorize the app, then paste the code and state from the callback.`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.code, "code", "", "OAuth callback code (prompted when omitted)")
	cobraCmd.Flags().StringVar(&cmd.state, "state", "", "OAuth callback state (prompted when omitted)")

	return cobraCmd
}

// Run executes the github connect command
func (c *GitHubConnectCommand) Run(cmd *cobra.Command, args []string) error {
	if c.deps.Config.GitHubClientID == "" {
		return fmt.Errorf("github_client_id is not configured")
	}

	flow, err := github.NewOAuthFlow(c.deps.Config.GitHubClientID, c.deps.Config.GitHubRedirectURL)
	if err != nil {
		return fmt.Errorf("failed to prepare OAuth flow: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "Open this URL in your browser and authorize docforge:")
	_, _ = fmt.Fprintln(out, "  "+flow.AuthorizeURL())

	code, state := c.code, c.state
	if code == "" || state == "" {
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Callback code").Value(&code),
			huh.NewInput().Title("Callback state").Value(&state),
		)).WithTheme(tui.NewHuhTheme())
		if err := form.Run(); err != nil {
			return fmt.Errorf("failed to read callback values: %w", err)
		}
	}

	if err := flow.VerifyState(state); err != nil {
		return err
	}

	token, err := c.deps.Client.ExchangeGitHubCode(cmd.Context(), code)
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}

	if err := c.deps.Store.SetGitHubToken(token); err != nil {
		return fmt.Errorf("failed to store GitHub token: %w", err)
	}

	_, _ = fmt.Fprintln(out, "GitHub account connected")
	return nil
}
