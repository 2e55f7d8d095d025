package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

type jobRepository struct {
	mu   sync.RWMutex
	jobs map[types.JobID]*model.ProcessingJob
}

func newJobRepository() *jobRepository {
	return &jobRepository{
		jobs: make(map[types.JobID]*model.ProcessingJob),
	}
}

func cloneJob(j *model.ProcessingJob) *model.ProcessingJob {
	cloned := *j
	cloned.Steps = make([]model.JobStep, len(j.Steps))
	copy(cloned.Steps, j.Steps)
	if j.Errors != nil {
		cloned.Errors = make([]string, len(j.Errors))
		copy(cloned.Errors, j.Errors)
	}
	return &cloned
}

func (r *jobRepository) StartRun(ctx context.Context, projectID types.ProjectID) (*model.ProcessingJob, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// One in-flight job per project. The check and the insert happen under the
	// same lock, so two concurrent callers cannot both start a run.
	for _, j := range r.jobs {
		if j.ProjectID == projectID && j.InFlight() {
			return cloneJob(j), false, nil
		}
	}

	job := model.NewProcessingJob(projectID)
	r.jobs[job.ID] = cloneJob(job)
	return job, true, nil
}

func (r *jobRepository) Get(ctx context.Context, id types.JobID) (*model.ProcessingJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, exists := r.jobs[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "job not found", goerr.V("id", id))
	}
	return cloneJob(j), nil
}

func (r *jobRepository) GetLatestByProject(ctx context.Context, projectID types.ProjectID) (*model.ProcessingJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *model.ProcessingJob
	for _, j := range r.jobs {
		if j.ProjectID != projectID {
			continue
		}
		if latest == nil || j.StartedAt.After(latest.StartedAt) {
			latest = j
		}
	}
	if latest == nil {
		return nil, goerr.Wrap(ErrNotFound, "no job for project", goerr.V("projectID", projectID))
	}
	return cloneJob(latest), nil
}

func (r *jobRepository) Update(ctx context.Context, job *model.ProcessingJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.ID]; !exists {
		return goerr.Wrap(ErrNotFound, "job not found", goerr.V("id", job.ID))
	}

	r.jobs[job.ID] = cloneJob(job)
	return nil
}

func (r *jobRepository) ListInFlight(ctx context.Context) ([]*model.ProcessingJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var jobs []*model.ProcessingJob
	for _, j := range r.jobs {
		if j.InFlight() {
			jobs = append(jobs, cloneJob(j))
		}
	}
	return jobs, nil
}
