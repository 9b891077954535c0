package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/docforge/docforge/internal/generation"
	"github.com/docforge/docforge/internal/lifecycle"
	"github.com/docforge/docforge/internal/models"
	"github.com/docforge/docforge/internal/render"
	"github.com/docforge/docforge/internal/tui"
)

// GenerateCommand handles the generate command
type GenerateCommand struct {
	deps Deps

	format     string
	noProgress bool
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(deps Deps) *cobra.Command {
	cmd := &GenerateCommand{deps: deps}

	cobraCmd := &cobra.Command{
		Use:   "generate <project-id>",
		Short: "Generate documentation for a project",
		Long: `Start a generation job and follow its progress until it settles.

Quitting the progress display leaves the job running on the server;
check on it later with 'docforge projects show'.`,
		Args: cobra.ExactArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.format, "format", "f", "", "output format (defaults to the configured default)")
	cobraCmd.Flags().BoolVar(&cmd.noProgress, "no-progress", false, "wait without the interactive progress display")

	return cobraCmd
}

// Run executes the generate command
func (c *GenerateCommand) Run(cmd *cobra.Command, args []string) error {
	format := c.format
	if format == "" {
		format = c.deps.Config.DefaultFormat
	}

	machine := newMachine(c.deps)
	if _, err := adoptProject(cmd.Context(), c.deps, machine, args[0]); err != nil {
		return err
	}

	started := time.Now()
	if _, err := machine.StartGeneration(cmd.Context(), format); err != nil {
		return err
	}

	interval := time.Duration(c.deps.Config.PollIntervalSec) * time.Second
	poller := generation.NewPoller(c.deps.Client,
		generation.WithInterval(interval),
		generation.WithLogger(c.deps.Log))

	job := poller.Run(cmd.Context(), args[0])

	var jobErr error
	if c.noProgress {
		for range job.Events() {
		}
		_, jobErr = job.Wait()
	} else {
		jobErr = tui.RunJobProgress("Generating documentation", job)
	}

	switch {
	case jobErr == nil:
		if _, err := machine.OnJobSettled(models.JobSuccess, ""); err != nil {
			return err
		}

	case errors.Is(jobErr, context.Canceled):
		// the user backgrounded the job; the server keeps working
		machine.ReleaseJob()
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Generation continues on the server.")
		return nil

	default:
		reason := jobErr.Error()
		var failed *generation.GenerationFailedError
		if errors.As(jobErr, &failed) {
			reason = failed.Reason
		}
		if _, err := machine.OnJobSettled(models.JobFailure, reason); err != nil {
			c.deps.Log.Warn("failed to settle project after job failure", "error", err)
		}
	}

	return c.report(cmd, machine, format, started)
}

func (c *GenerateCommand) report(cmd *cobra.Command, machine *lifecycle.Machine, format string, started time.Time) error {
	report, err := render.Report(render.ReportData{
		Project:  machine.Project(),
		Format:   format,
		Duration: time.Since(started),
	})
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), report)
	return nil
}
