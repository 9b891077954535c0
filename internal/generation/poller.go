// Package generation tracks a running documentation-generation job by
// polling the server and exposing the job's progress as a lazy, finite
// sequence of events.
package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docforge/docforge/internal/models"
)

const (
	defaultInterval = 2 * time.Second

	// maxConsecutiveErrors bounds how many failed polls in a row are
	// tolerated before the job is declared lost.
	maxConsecutiveErrors = 3
)

// GenerationFailedError is terminal for a job; the project moves to
// failed and the user may retry with a new job.
type GenerationFailedError struct {
	ProjectID string
	Reason    string
}

func (e *GenerationFailedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("generation failed: %s", e.Reason)
	}
	return "generation failed"
}

// StatusFetcher is the server surface the poller needs.
type StatusFetcher interface {
	GetGenerationStatus(ctx context.Context, projectID string) (*models.GenerationJob, error)
}

// Poller turns the server's job status into ordered progress events.
type Poller struct {
	fetcher  StatusFetcher
	interval time.Duration
	log      *slog.Logger
}

// Option configures the poller.
type Option func(*Poller)

// WithInterval overrides the polling interval.
func WithInterval(interval time.Duration) Option {
	return func(p *Poller) {
		p.interval = interval
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Poller) {
		p.log = log
	}
}

// NewPoller creates a poller over the given status source.
func NewPoller(fetcher StatusFetcher, options ...Option) *Poller {
	p := &Poller{
		fetcher:  fetcher,
		interval: defaultInterval,
		log:      slog.Default(),
	}

	for _, option := range options {
		option(p)
	}
	return p
}

// Job is a handle on one polled generation job. Events is a lazy, finite,
// non-restartable sequence ending in exactly one terminal event; the
// channel closes afterwards. Stop abandons the sequence: the server keeps
// working, but no further events are emitted.
type Job struct {
	events chan models.ProgressEvent
	cancel context.CancelFunc
	done   chan struct{}

	result models.JobResult
	err    error
}

// Events returns the event sequence.
func (j *Job) Events() <-chan models.ProgressEvent {
	return j.events
}

// Stop abandons the sequence. In-flight server work is not cancelled.
func (j *Job) Stop() {
	j.cancel()
}

// Wait blocks until the sequence settles. A stopped job reports the
// context error; a failed job reports GenerationFailedError.
func (j *Job) Wait() (models.JobResult, error) {
	<-j.done
	return j.result, j.err
}

// Run starts polling the project's active job. The caller owns the
// returned handle and must either consume Events or call Stop.
func (p *Poller) Run(ctx context.Context, projectID string) *Job {
	ctx, cancel := context.WithCancel(ctx)
	job := &Job{
		events: make(chan models.ProgressEvent),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go p.poll(ctx, projectID, job)
	return job
}

func (p *Poller) poll(ctx context.Context, projectID string, job *Job) {
	defer func() {
		job.cancel()
		close(job.events)
		close(job.done)
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	lastPercent := -1
	lastStep := -1
	consecutiveErrors := 0

	for {
		status, err := p.fetcher.GetGenerationStatus(ctx, projectID)
		if err != nil {
			if ctx.Err() != nil {
				job.err = ctx.Err()
				return
			}

			consecutiveErrors++
			p.log.Warn("generation status poll failed",
				"project", projectID,
				"attempt", consecutiveErrors,
				"error", err)
			if consecutiveErrors >= maxConsecutiveErrors {
				job.err = &GenerationFailedError{ProjectID: projectID, Reason: err.Error()}
				job.result = models.JobFailure
				p.emit(ctx, job, models.ProgressEvent{
					Step:     models.StepForPercent(max(lastPercent, 0)),
					Percent:  max(lastPercent, 0),
					Terminal: true,
					Result:   models.JobFailure,
					Reason:   err.Error(),
				})
				return
			}
		} else {
			consecutiveErrors = 0

			event, terminal := p.eventFor(status, &lastPercent, &lastStep)
			if event != nil {
				if !p.emit(ctx, job, *event) {
					job.err = ctx.Err()
					return
				}
			}
			if terminal {
				job.result = event.Result
				if event.Result == models.JobFailure {
					job.err = &GenerationFailedError{ProjectID: projectID, Reason: event.Reason}
				}
				return
			}
		}

		select {
		case <-ctx.Done():
			job.err = ctx.Err()
			return
		case <-ticker.C:
		}
	}
}

// eventFor maps a status snapshot to the next event, enforcing monotonic
// progress: a snapshot that reads older than what was already emitted
// (reordered poll responses) produces nothing.
func (p *Poller) eventFor(status *models.GenerationJob, lastPercent, lastStep *int) (*models.ProgressEvent, bool) {
	switch status.Status {
	case models.JobStatusCompleted:
		return &models.ProgressEvent{
			Step:     models.StepDone,
			Percent:  100,
			Terminal: true,
			Result:   models.JobSuccess,
		}, true

	case models.JobStatusFailed:
		reason := "generation failed"
		if status.Error != nil {
			reason = *status.Error
		}
		return &models.ProgressEvent{
			Step:     status.Step,
			Percent:  max(*lastPercent, 0),
			Terminal: true,
			Result:   models.JobFailure,
			Reason:   reason,
		}, true

	default:
		percent := status.Progress
		step := status.Step
		if step == "" {
			step = models.StepForPercent(percent)
		}

		stepIndex := models.StepIndex(step)
		if percent < *lastPercent || stepIndex < *lastStep {
			return nil, false
		}
		if percent == *lastPercent && stepIndex == *lastStep {
			return nil, false
		}

		*lastPercent = percent
		*lastStep = stepIndex
		return &models.ProgressEvent{Step: step, Percent: percent}, false
	}
}

// emit delivers an event, giving up when the job is stopped.
func (p *Poller) emit(ctx context.Context, job *Job, event models.ProgressEvent) bool {
	select {
	case job.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}
