// Package lifecycle owns the client-side project state machine. All
// project mutation funnels through one Machine per project; UI surfaces
// read snapshots and react to transition events, they never write.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/docforge/docforge/internal/api"
	"github.com/docforge/docforge/internal/models"
	"github.com/docforge/docforge/internal/upload"
)

// API is the server surface the machine delegates its I/O to.
type API interface {
	CreateProject(ctx context.Context, name string, sourceType models.SourceType) (*models.Project, error)
	SaveExclusions(ctx context.Context, projectID string, cfg *models.ExclusionConfig) error
	StartGeneration(ctx context.Context, projectID, format string) (*models.GenerationJob, error)
}

// allowedTransitions is the closed transition relation. Anything not
// listed here is a programming error, not a recoverable condition.
var allowedTransitions = map[models.Status][]models.Status{
	models.StatusCreated:       {models.StatusFilesUploaded},
	models.StatusFilesUploaded: {models.StatusExclusionsSet, models.StatusFailed},
	models.StatusExclusionsSet: {models.StatusGenerating, models.StatusFailed},
	models.StatusGenerating:    {models.StatusComplete, models.StatusFailed},
	models.StatusComplete:      {models.StatusGenerating},
}

// Machine tracks one project through upload, exclusion configuration and
// generation. Transitions are pure data updates; network I/O is delegated
// to the API collaborator and interpreted afterwards, so a failed call
// leaves the project in its last good state.
type Machine struct {
	api      API
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time

	mu          sync.Mutex
	project     *models.Project
	activeJobID string
}

// Option configures the machine.
type Option func(*Machine)

// WithNotifier sets the transition event sink.
func WithNotifier(notifier Notifier) Option {
	return func(m *Machine) {
		m.notifier = notifier
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Machine) {
		m.log = log
	}
}

// withClock overrides event timestamps in tests.
func withClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// NewMachine creates a machine with no project attached yet.
func NewMachine(apiClient API, options ...Option) *Machine {
	m := &Machine{
		api:      apiClient,
		notifier: nopNotifier{},
		log:      slog.Default(),
		now:      time.Now,
	}

	for _, option := range options {
		option(m)
	}
	return m
}

// Adopt attaches an existing project (loaded from the server) to the
// machine, e.g. when resuming work on it.
func (m *Machine) Adopt(project *models.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.project = project.Clone()
}

// Project returns a snapshot of the tracked project, or nil before
// creation. Mutating the snapshot does not affect the machine.
func (m *Machine) Project() *models.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.project == nil {
		return nil
	}
	return m.project.Clone()
}

// CreateProject creates the project server-side and starts tracking it
// in the created state.
func (m *Machine) CreateProject(ctx context.Context, name string, sourceType models.SourceType) (*models.Project, error) {
	if name == "" {
		return nil, &api.ValidationError{Field: "name", Message: "must not be empty"}
	}
	if !sourceType.IsValid() {
		return nil, &api.ValidationError{Field: "sourceType", Message: fmt.Sprintf("unknown source type %q", sourceType)}
	}

	project, err := m.api.CreateProject(ctx, name, sourceType)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.project = project
	m.mu.Unlock()

	m.log.Info("project created", "project", project.ID, "name", name, "source", sourceType)
	return project.Clone(), nil
}

// RecordUpload records the outcome of a completed ingestion, moving
// created to files_uploaded. An ingestion that accepted nothing fails
// with EmptySourceError and changes nothing.
func (m *Machine) RecordUpload(files []*models.File) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireState("record upload", models.StatusCreated); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &upload.EmptySourceError{Source: m.project.Name}
	}

	m.project.Files = files
	m.transition(models.StatusFilesUploaded)
	return m.project.Clone(), nil
}

// SetExclusions persists the config and moves files_uploaded to
// exclusions_set. Calling it again in exclusions_set overwrites the
// config without a transition.
func (m *Machine) SetExclusions(ctx context.Context, cfg *models.ExclusionConfig) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireState("set exclusions", models.StatusFilesUploaded, models.StatusExclusionsSet); err != nil {
		return nil, err
	}

	if err := m.api.SaveExclusions(ctx, m.project.ID, cfg); err != nil {
		return nil, err
	}

	m.project.Exclusions = cfg.Clone()
	m.project.ExclusionsSet = true
	if m.project.Status == models.StatusFilesUploaded {
		m.transition(models.StatusExclusionsSet)
	}
	return m.project.Clone(), nil
}

// StartGeneration submits a generation job and moves to generating.
// Preconditions: exclusions_set, complete (regeneration), or generating
// with a released job lock (a prior poll was abandoned). A second start
// while a job is active is rejected with ConflictError and does not
// disturb the running job.
func (m *Machine) StartGeneration(ctx context.Context, format string) (*models.GenerationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.activeJobID != "" {
		return nil, &api.ConflictError{
			Op:     "start generation",
			Reason: fmt.Sprintf("job %s is already active", m.activeJobID),
		}
	}
	if err := m.requireState("start generation",
		models.StatusExclusionsSet, models.StatusComplete, models.StatusGenerating); err != nil {
		return nil, err
	}

	job, err := m.api.StartGeneration(ctx, m.project.ID, format)
	if err != nil {
		return nil, err
	}

	m.activeJobID = job.ID
	if m.project.Status != models.StatusGenerating {
		m.transition(models.StatusGenerating)
	}
	m.log.Info("generation started", "project", m.project.ID, "job", job.ID, "format", format)
	return job, nil
}

// OnJobSettled interprets the terminal outcome of the active job. Success
// moves to complete and marks every file documented; failure moves to
// failed and leaves file statuses exactly as they were, so documentation
// from earlier successful runs is never corrupted. The job lock is
// released either way.
func (m *Machine) OnJobSettled(result models.JobResult, reason string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.activeJobID = ""

	if err := m.requireState("settle job", models.StatusGenerating); err != nil {
		return nil, err
	}

	if result == models.JobSuccess {
		for _, file := range m.project.Files {
			file.DocumentationStatus = models.DocComplete
			file.DocumentationPercent = 100
		}
		m.project.FailureReason = ""
		m.transition(models.StatusComplete)
	} else {
		m.project.FailureReason = reason
		m.transition(models.StatusFailed)
	}
	return m.project.Clone(), nil
}

// ReleaseJob releases the active job lock without a transition. Used
// when the poller is abandoned: the server may still be working, but a
// future StartGeneration must not stay blocked forever.
func (m *Machine) ReleaseJob() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.activeJobID != "" {
		m.log.Debug("releasing active job", "project", m.project.ID, "job", m.activeJobID)
		m.activeJobID = ""
	}
}

// MarkFailed moves an in-progress project to failed with a reason. Used
// for unrecoverable errors outside the generation path.
func (m *Machine) MarkFailed(reason string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireState("mark failed",
		models.StatusFilesUploaded, models.StatusExclusionsSet, models.StatusGenerating); err != nil {
		return nil, err
	}

	m.activeJobID = ""
	m.project.FailureReason = reason
	m.transition(models.StatusFailed)
	return m.project.Clone(), nil
}

// requireState guards an operation. Callers hold the lock.
func (m *Machine) requireState(op string, allowed ...models.Status) error {
	if m.project == nil {
		return &api.ConflictError{Op: op, Reason: "no project attached"}
	}
	for _, status := range allowed {
		if m.project.Status == status {
			return nil
		}
	}
	return &api.ConflictError{
		Op:     op,
		Reason: fmt.Sprintf("project is %s", m.project.Status),
	}
}

// transition moves the project and emits exactly one event. Callers hold
// the lock and have already validated the move; an illegal transition
// here means the guard above is wrong, so it panics.
func (m *Machine) transition(to models.Status) {
	from := m.project.Status
	if !transitionAllowed(from, to) {
		panic(fmt.Sprintf("illegal transition %s -> %s", from, to))
	}

	m.project.Status = to
	m.notifier.Notify(Event{
		ProjectID: m.project.ID,
		From:      from,
		To:        to,
		Timestamp: m.now(),
	})
}

func transitionAllowed(from, to models.Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
