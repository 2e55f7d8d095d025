package interfaces

import (
	"context"

	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// JobRepository defines the interface for ProcessingJob data access
type JobRepository interface {
	// StartRun atomically creates a new pending job for the project unless one
	// is already in flight. When a job is in flight it returns that job with
	// started=false; this is the per-project mutual-exclusion marker that keeps
	// two runs from aggregating the same review set concurrently.
	StartRun(ctx context.Context, projectID types.ProjectID) (job *model.ProcessingJob, started bool, err error)

	// Get retrieves a job by ID
	Get(ctx context.Context, id types.JobID) (*model.ProcessingJob, error)

	// GetLatestByProject retrieves the most recently started job for a project
	GetLatestByProject(ctx context.Context, projectID types.ProjectID) (*model.ProcessingJob, error)

	// Update persists the job's steps, errors and status
	Update(ctx context.Context, job *model.ProcessingJob) error

	// ListInFlight retrieves all jobs in a non-terminal status
	ListInFlight(ctx context.Context) ([]*model.ProcessingJob, error)
}
