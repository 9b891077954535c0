package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docforge/docforge/internal/models"
	"github.com/docforge/docforge/internal/tui"
)

// NewExclusionsCommand creates the exclusions command group
func NewExclusionsCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exclusions",
		Short: "Inspect and edit project exclusions",
	}

	cmd.AddCommand(NewExclusionsShowCommand(deps))
	cmd.AddCommand(NewExclusionsEditCommand(deps))

	return cmd
}

// ExclusionsShowCommand handles the exclusions show command
type ExclusionsShowCommand struct {
	deps Deps
}

// NewExclusionsShowCommand creates a new exclusions show command
func NewExclusionsShowCommand(deps Deps) *cobra.Command {
	cmd := &ExclusionsShowCommand{deps: deps}

	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show the saved exclusions of a project",
		Args:  cobra.ExactArgs(1),
		RunE:  cmd.Run,
	}
}

// Run executes the exclusions show command
func (c *ExclusionsShowCommand) Run(cmd *cobra.Command, args []string) error {
	cfg, err := c.deps.Client.GetExclusions(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load exclusions: %w", err)
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), renderExclusions(cfg))
	return nil
}

// ExclusionsEditCommand handles the exclusions edit command
type ExclusionsEditCommand struct {
	deps Deps
}

// NewExclusionsEditCommand creates a new exclusions edit command
func NewExclusionsEditCommand(deps Deps) *cobra.Command {
	cmd := &ExclusionsEditCommand{deps: deps}

	return &cobra.Command{
		Use:   "edit <project-id>",
		Short: "Edit project exclusions interactively",
		Long:  `Open the exclusion editor. Changes only take effect when saved explicitly.`,
		Args:  cobra.ExactArgs(1),
		RunE:  cmd.Run,
	}
}

// Run executes the exclusions edit command
func (c *ExclusionsEditCommand) Run(cmd *cobra.Command, args []string) error {
	machine := newMachine(c.deps)
	project, err := adoptProject(cmd.Context(), c.deps, machine, args[0])
	if err != nil {
		return err
	}

	current := project.Exclusions
	if current == nil {
		current = models.NewExclusionConfig()
	}

	edited, save, err := tui.NewExclusionFlow().Run(current)
	if err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	if edited == nil {
		return nil
	}
	if !save {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Discarded")
		return nil
	}

	if _, err := machine.SetExclusions(cmd.Context(), edited); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Exclusions saved")
	return nil
}

func renderExclusions(cfg *models.ExclusionConfig) string {
	var b strings.Builder

	enabled := make([]string, 0)
	for _, toggle := range models.CommonToggles() {
		if cfg.Common(toggle) {
			enabled = append(enabled, string(toggle))
		}
	}

	writeList := func(title string, items []string) {
		b.WriteString(title + ":")
		if len(items) == 0 {
			b.WriteString(" (none)\n")
			return
		}
		b.WriteString("\n")
		for _, item := range items {
			b.WriteString("  - " + item + "\n")
		}
	}

	writeList("Common", enabled)
	writeList("Functions", cfg.Functions())
	writeList("Files", cfg.Files())
	writeList("Directories", cfg.Directories())

	return b.String()
}
