package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docforge/docforge/internal/models"
)

// CreateCommand handles the create command
type CreateCommand struct {
	deps Deps

	sourceType string
}

// NewCreateCommand creates a new create command
func NewCreateCommand(deps Deps) *cobra.Command {
	cmd := &CreateCommand{deps: deps}

	cobraCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new documentation project",
		Long:  `Create a new project on the server. Follow up with 'docforge upload' to ingest its source.`,
		Args:  cobra.ExactArgs(1),
		RunE:  cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.sourceType, "source", "s", "folder", "source kind: file, folder or repo")

	return cobraCmd
}

// Run executes the create command
func (c *CreateCommand) Run(cmd *cobra.Command, args []string) error {
	sourceType, err := models.ParseSourceType(c.sourceType)
	if err != nil {
		return err
	}

	machine := newMachine(c.deps)
	project, err := machine.CreateProject(cmd.Context(), args[0], sourceType)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s, source %s)\n", project.Name, project.ID, project.SourceType)
	return nil
}
