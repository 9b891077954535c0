package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewProjectsCommand creates the projects command group
func NewProjectsCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage documentation projects",
	}

	cmd.AddCommand(NewProjectsListCommand(deps))
	cmd.AddCommand(NewProjectsShowCommand(deps))
	cmd.AddCommand(NewProjectsDeleteCommand(deps))

	return cmd
}

// ProjectsListCommand handles the projects list command
type ProjectsListCommand struct {
	deps Deps
}

// NewProjectsListCommand creates a new projects list command
func NewProjectsListCommand(deps Deps) *cobra.Command {
	cmd := &ProjectsListCommand{deps: deps}

	return &cobra.Command{
		Use:   "list",
		Short: "List your projects",
		RunE:  cmd.Run,
	}
}

// Run executes the projects list command
func (c *ProjectsListCommand) Run(cmd *cobra.Command, args []string) error {
	projects, err := c.deps.Client.ListProjects(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(projects) == 0 {
		_, _ = fmt.Fprintln(out, "No projects yet. Run 'docforge create' to start one.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tSOURCE\tSTATUS\tFILES")
	for _, project := range projects {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%d\n",
			project.ID,
			project.Name,
			project.SourceType,
			statusIcon(project.Status),
			project.Status,
			len(project.Files))
	}
	return w.Flush()
}

// ProjectsShowCommand handles the projects show command
type ProjectsShowCommand struct {
	deps Deps
}

// NewProjectsShowCommand creates a new projects show command
func NewProjectsShowCommand(deps Deps) *cobra.Command {
	cmd := &ProjectsShowCommand{deps: deps}

	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show one project in detail",
		Args:  cobra.ExactArgs(1),
		RunE:  cmd.Run,
	}
}

// Run executes the projects show command
func (c *ProjectsShowCommand) Run(cmd *cobra.Command, args []string) error {
	project, err := c.deps.Client.GetProject(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s (%s)\n", project.Name, project.ID)
	_, _ = fmt.Fprintf(out, "Source:  %s\n", project.SourceType)
	_, _ = fmt.Fprintf(out, "Status:  %s %s\n", statusIcon(project.Status), project.Status)
	_, _ = fmt.Fprintf(out, "Created: %s\n", project.DateCreated.Format("2006-01-02 15:04"))
	if project.FailureReason != "" {
		_, _ = fmt.Fprintf(out, "Failure: %s\n", project.FailureReason)
	}

	if len(project.Files) > 0 {
		_, _ = fmt.Fprintf(out, "Files (%d):\n", len(project.Files))
		for _, file := range project.Files {
			_, _ = fmt.Fprintf(out, "  %s (%s, %d%%)\n", file.Name, file.DocumentationStatus, file.DocumentationPercent)
		}
	}

	return nil
}

// ProjectsDeleteCommand handles the projects delete command
type ProjectsDeleteCommand struct {
	deps Deps
}

// NewProjectsDeleteCommand creates a new projects delete command
func NewProjectsDeleteCommand(deps Deps) *cobra.Command {
	cmd := &ProjectsDeleteCommand{deps: deps}

	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE:  cmd.Run,
	}
}

// Run executes the projects delete command
func (c *ProjectsDeleteCommand) Run(cmd *cobra.Command, args []string) error {
	if err := c.deps.Client.DeleteProject(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", args[0])
	return nil
}
