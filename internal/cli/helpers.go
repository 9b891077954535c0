package cli

import (
	"context"
	"fmt"

	"github.com/docforge/docforge/internal/lifecycle"
	"github.com/docforge/docforge/internal/models"
)

// newMachine builds a lifecycle machine that logs every transition.
func newMachine(deps Deps) *lifecycle.Machine {
	return lifecycle.NewMachine(deps.Client,
		lifecycle.WithLogger(deps.Log),
		lifecycle.WithNotifier(lifecycle.NotifierFunc(func(event lifecycle.Event) {
			deps.Log.Info("project transitioned",
				"project_id", event.ProjectID,
				"from", event.From.String(),
				"to", event.To.String())
		})),
	)
}

// adoptProject loads a project from the server into a fresh machine.
func adoptProject(ctx context.Context, deps Deps, machine *lifecycle.Machine, projectID string) (*models.Project, error) {
	project, err := deps.Client.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	machine.Adopt(project)
	return project, nil
}

func statusIcon(status models.Status) string {
	switch status {
	case models.StatusComplete:
		return "✓"
	case models.StatusFailed:
		return "✗"
	case models.StatusGenerating:
		return "…"
	default:
		return "•"
	}
}
