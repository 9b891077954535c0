package models

import "time"

// JobStep is one stage of a generation job. Steps are ordered and each
// owns a percent window; a job's progress never moves backwards.
type JobStep string

const (
	StepInitializing    JobStep = "initializing"
	StepProcessingFiles JobStep = "processing_files"
	StepGenerating      JobStep = "generating_content"
	StepFinalizing      JobStep = "finalizing"
	StepDone            JobStep = "done"
)

// jobSteps in order, with the inclusive lower bound of each percent window.
var jobSteps = []struct {
	step JobStep
	from int
}{
	{StepInitializing, 0},
	{StepProcessingFiles, 20},
	{StepGenerating, 40},
	{StepFinalizing, 80},
	{StepDone, 100},
}

// StepForPercent maps a progress percentage to its step.
func StepForPercent(percent int) JobStep {
	step := StepInitializing
	for _, s := range jobSteps {
		if percent >= s.from {
			step = s.step
		}
	}
	return step
}

// StepIndex returns the position of a step in the stage order, or -1 for
// an unknown step.
func StepIndex(step JobStep) int {
	for i, s := range jobSteps {
		if s.step == step {
			return i
		}
	}
	return -1
}

// JobResult is the terminal outcome of a generation job.
type JobResult string

const (
	JobSuccess JobResult = "success"
	JobFailure JobResult = "failure"
)

// JobStatus is the server-side lifecycle of a generation job.
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// GenerationJob is one execution of the documentation-generation process
// for a project. At most one job is active per project; starting another
// while one runs is rejected, not queued.
type GenerationJob struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"projectId"`
	Format    string     `json:"format"`
	Status    JobStatus  `json:"status"`
	Step      JobStep    `json:"step"`
	Progress  int        `json:"progress"`
	Error     *string    `json:"error,omitempty"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

// ProgressEvent is one element of the lazy, finite event sequence a
// poller produces for a running job. The final event has Terminal set and
// carries the result; a failure also carries the reason.
type ProgressEvent struct {
	Step     JobStep
	Percent  int
	Terminal bool
	Result   JobResult
	Reason   string
}
