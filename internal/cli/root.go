// Package cli wires the docforge commands. Every command receives its
// collaborators through its constructor so tests can swap them out.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/docforge/docforge/internal/api"
	"github.com/docforge/docforge/internal/auth"
	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/filesystem"
	"github.com/docforge/docforge/internal/github"
)

// Deps bundles the collaborators shared by every command.
type Deps struct {
	FS     filesystem.FileSystem
	Client *api.Client
	Store  *auth.Store
	GitHub github.GitHubClient
	Config *config.Global
	Log    *slog.Logger
}

// NewRootCommand creates the root command
func NewRootCommand(deps Deps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docforge",
		Short: "Generate documentation for your source code",
		Long: `A CLI client for the docforge documentation pipeline.

Upload a file, folder or repository, configure exclusions, and drive
documentation generation on the server.`,
		SilenceUsage: true,
	}

	// Add subcommands
	rootCmd.AddCommand(NewLoginCommand(deps))
	rootCmd.AddCommand(NewLogoutCommand(deps))
	rootCmd.AddCommand(NewRegisterCommand(deps))
	rootCmd.AddCommand(NewCreateCommand(deps))
	rootCmd.AddCommand(NewUploadCommand(deps))
	rootCmd.AddCommand(NewExclusionsCommand(deps))
	rootCmd.AddCommand(NewGenerateCommand(deps))
	rootCmd.AddCommand(NewExportCommand(deps))
	rootCmd.AddCommand(NewProjectsCommand(deps))
	rootCmd.AddCommand(NewGitHubCommand(deps))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, closeLog := config.SetupLogger(cfg.LogFile, config.ParseLevel(cfg.LogLevel))
	defer func() { _ = closeLog() }()

	fs := filesystem.NewOSFileSystem()

	configDir, err := config.Dir()
	if err != nil {
		return err
	}
	store, err := auth.NewStore(fs, configDir)
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	client := api.New(cfg.ServerURL, store, api.WithLogger(log))

	var ghClient github.GitHubClient
	if token := store.GitHubToken(); token != "" {
		ghClient = github.NewClient(token)
	} else {
		ghClient = github.NewClientWithoutAuth()
	}

	rootCmd := NewRootCommand(Deps{
		FS:     fs,
		Client: client,
		Store:  store,
		GitHub: ghClient,
		Config: cfg,
		Log:    log,
	})

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}
