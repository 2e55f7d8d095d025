package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// Step names of a processing run, in execution order
const (
	StepLoadingProject    = "loading-project"
	StepClassifyingReview = "classifying-reviews"
	StepScoringSentiment  = "scoring-sentiment"
	StepFillingGaps       = "generating-artificial-reviews"
	StepAggregatingScores = "aggregating-scores"
	StepSynthesizing      = "synthesizing-feedback"
)

// JobSteps returns the ordered step list for a new processing job
func JobSteps() []JobStep {
	names := []string{
		StepLoadingProject,
		StepClassifyingReview,
		StepScoringSentiment,
		StepFillingGaps,
		StepAggregatingScores,
		StepSynthesizing,
	}
	steps := make([]JobStep, len(names))
	for i, name := range names {
		steps[i] = JobStep{Name: name}
	}
	return steps
}

// JobStep is a named pipeline step with a completion marker
type JobStep struct {
	Name        string
	CompletedAt time.Time // zero until completed
}

// Completed reports whether the step has finished
func (s *JobStep) Completed() bool {
	return !s.CompletedAt.IsZero()
}

// ProcessingJob tracks one processing run for a project. At most one job per
// project may be in a non-terminal status at any time.
type ProcessingJob struct {
	ID          types.JobID
	ProjectID   types.ProjectID
	Status      types.ProcessingStatus
	Steps       []JobStep
	Errors      []string // accumulated non-fatal error messages
	StartedAt   time.Time
	CompletedAt time.Time
}

// NewProcessingJob creates a pending job with the standard step list
func NewProcessingJob(projectID types.ProjectID) *ProcessingJob {
	return &ProcessingJob{
		ID:        types.NewJobID(),
		ProjectID: projectID,
		Status:    types.ProcessingStatusPending,
		Steps:     JobSteps(),
		StartedAt: time.Now().UTC(),
	}
}

// InFlight reports whether the job is still running
func (j *ProcessingJob) InFlight() bool {
	return !j.Status.IsTerminal()
}

// TransitionTo moves the job to the next status, enforcing monotonic order
func (j *ProcessingJob) TransitionTo(next types.ProcessingStatus) error {
	if !j.Status.CanTransitionTo(next) {
		return goerr.New("invalid job status transition",
			goerr.V("jobID", j.ID),
			goerr.V("from", j.Status),
			goerr.V("to", next),
		)
	}
	j.Status = next
	if next.IsTerminal() {
		j.CompletedAt = time.Now().UTC()
	}
	return nil
}

// MarkStep records completion of the named step
func (j *ProcessingJob) MarkStep(name string) {
	for i := range j.Steps {
		if j.Steps[i].Name == name {
			j.Steps[i].CompletedAt = time.Now().UTC()
			return
		}
	}
}

// AppendError records a non-fatal error without aborting the run
func (j *ProcessingJob) AppendError(msg string) {
	j.Errors = append(j.Errors, msg)
}

// CompletedSteps counts the steps that have finished
func (j *ProcessingJob) CompletedSteps() int {
	var n int
	for i := range j.Steps {
		if j.Steps[i].Completed() {
			n++
		}
	}
	return n
}
