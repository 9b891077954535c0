package cli

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/models"
)

func generateHandler(t *testing.T, finalStatus models.JobStatus, reason string) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/projects/p-1":
			project := models.NewProject("p-1", "widgets", models.SourceFolder, time.Now())
			project.Status = models.StatusExclusionsSet
			project.ExclusionsSet = true
			project.Files = []*models.File{
				{ID: "f-1", Name: "main.py", DocumentationStatus: models.DocPending},
			}
			_ = json.NewEncoder(w).Encode(project)

		case "/api/projects/p-1/documentation/generate":
			require.Equal(t, http.MethodPost, r.Method)
			_ = json.NewEncoder(w).Encode(&models.GenerationJob{
				ID: "job-1", ProjectID: "p-1", Status: models.JobStatusRunning,
			})

		case "/api/projects/p-1/documentation/status":
			job := &models.GenerationJob{
				ID: "job-1", ProjectID: "p-1",
				Status:   finalStatus,
				Step:     models.StepDone,
				Progress: 100,
			}
			if reason != "" {
				job.Error = &reason
			}
			_ = json.NewEncoder(w).Encode(job)

		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}
}

func TestGenerate_Succeeds(t *testing.T) {
	deps := testDeps(t, generateHandler(t, models.JobStatusCompleted, ""))

	out, err := runCommand(t, deps, "generate", "p-1", "--no-progress")
	require.NoError(t, err)
	require.Contains(t, out, "widgets")
	require.Contains(t, out, "complete")
}

func TestGenerate_ReportsFailure(t *testing.T) {
	deps := testDeps(t, generateHandler(t, models.JobStatusFailed, "model backend unavailable"))

	out, err := runCommand(t, deps, "generate", "p-1", "--no-progress")
	require.NoError(t, err)
	require.Contains(t, out, "model backend unavailable")
}

func TestGenerate_FormatDefaultsFromConfig(t *testing.T) {
	var format string
	handler := generateHandler(t, models.JobStatusCompleted, "")
	deps := testDeps(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/projects/p-1/documentation/generate" {
			var input map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
			format = input["format"]
			_ = json.NewEncoder(w).Encode(&models.GenerationJob{ID: "job-1", Status: models.JobStatusRunning})
			return
		}
		handler(w, r)
	})

	_, err := runCommand(t, deps, "generate", "p-1", "--no-progress")
	require.NoError(t, err)
	require.Equal(t, "markdown", format)
}
