package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docforge/docforge/internal/tui"
	"github.com/docforge/docforge/internal/upload"
)

// UploadCommand handles the upload command
type UploadCommand struct {
	deps Deps

	file   string
	folder string
	repo   string
	branch string
}

// NewUploadCommand creates a new upload command
func NewUploadCommand(deps Deps) *cobra.Command {
	cmd := &UploadCommand{deps: deps}

	cobraCmd := &cobra.Command{
		Use:   "upload <project-id>",
		Short: "Upload source to a project",
		Long: `Upload a single file, a folder, or reference a remote repository.

Folders are zipped locally and honor the root .gitignore; files with
unsupported extensions are skipped. Repository sources are cloned by
the server.`,
		Args: cobra.ExactArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.file, "file", "", "path of a single source file")
	cobraCmd.Flags().StringVar(&cmd.folder, "folder", "", "path of a source folder")
	cobraCmd.Flags().StringVar(&cmd.repo, "repo", "", "URL or owner/name of a GitHub repository")
	cobraCmd.Flags().StringVar(&cmd.branch, "branch", "", "repository branch (prompted when omitted)")

	return cobraCmd
}

// Run executes the upload command
func (c *UploadCommand) Run(cmd *cobra.Command, args []string) error {
	source, err := c.resolveSource(cmd)
	if err != nil {
		return err
	}

	machine := newMachine(c.deps)
	if _, err := adoptProject(cmd.Context(), c.deps, machine, args[0]); err != nil {
		return err
	}

	options := []upload.Option{upload.WithLogger(c.deps.Log)}
	if len(c.deps.Config.AllowedExtensions) > 0 {
		options = append(options, upload.WithAllowedExtensions(c.deps.Config.AllowedExtensions...))
	}
	coordinator := upload.NewCoordinator(c.deps.Client, c.deps.FS, options...)

	ingestion, err := coordinator.Start(cmd.Context(), args[0], source)
	if err != nil {
		return fmt.Errorf("failed to start upload: %w", err)
	}

	result, err := tui.RunIngestionProgress("Uploading", ingestion)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	if _, err := machine.RecordUpload(result.Files); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Uploaded %d of %d files\n", len(result.Files), result.Total)
	for _, rejected := range result.Rejected {
		_, _ = fmt.Fprintf(out, "  skipped %s: %s\n", rejected.Name, rejected.Reason)
	}
	if result.SuggestedName != "" {
		_, _ = fmt.Fprintf(out, "Suggested project name: %s\n", result.SuggestedName)
	}

	return nil
}

func (c *UploadCommand) resolveSource(cmd *cobra.Command) (upload.Source, error) {
	switch {
	case c.file != "":
		return upload.FileSource{Path: c.file}, nil

	case c.folder != "":
		return upload.FolderSource{Root: c.folder}, nil

	case c.repo != "":
		branch := c.branch
		if branch == "" {
			info, err := upload.ResolveRepository(cmd.Context(), c.deps.GitHub, c.repo)
			if err != nil {
				return nil, err
			}

			branch, err = tui.SelectBranch(info)
			if err != nil {
				return nil, fmt.Errorf("failed to select branch: %w", err)
			}
			if branch == "" {
				return nil, fmt.Errorf("no branch selected")
			}
		}

		return upload.RepoSource{
			URL:         c.repo,
			Branch:      branch,
			AccessToken: c.deps.Store.GitHubToken(),
		}, nil

	default:
		return nil, fmt.Errorf("one of --file, --folder or --repo is required")
	}
}
