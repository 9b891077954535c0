package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docforge/docforge/internal/render"
)

// ExportCommand handles the export command
type ExportCommand struct {
	deps Deps

	format string
	outDir string
}

// NewExportCommand creates a new export command
func NewExportCommand(deps Deps) *cobra.Command {
	cmd := &ExportCommand{deps: deps}

	cobraCmd := &cobra.Command{
		Use:   "export <project-id>",
		Short: "Download generated documentation",
		Long:  `Download the generated documentation and write one file per document. Titles from the document frontmatter name the output files.`,
		Args:  cobra.ExactArgs(1),
		RunE:  cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.format, "format", "f", "", "output format (defaults to the configured default)")
	cobraCmd.Flags().StringVarP(&cmd.outDir, "out", "o", "", "output directory (defaults to the configured export dir)")

	return cobraCmd
}

// Run executes the export command
func (c *ExportCommand) Run(cmd *cobra.Command, args []string) error {
	format := c.format
	if format == "" {
		format = c.deps.Config.DefaultFormat
	}
	outDir := c.outDir
	if outDir == "" {
		outDir = c.deps.Config.ExportDir
	}

	docs, err := c.deps.Client.Export(cmd.Context(), args[0], format)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("project has no generated documentation to export")
	}

	exported, err := render.NewExporter(c.deps.FS).Write(docs, outDir)
	if err != nil {
		return fmt.Errorf("failed to write documentation: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Exported %d document(s) to %s\n", len(exported), outDir)
	for _, doc := range exported {
		_, _ = fmt.Fprintf(out, "  %s\n", doc.Path)
	}

	return nil
}
