package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

type projectRepository struct {
	mu       sync.RWMutex
	projects map[types.ProjectID]*model.Project
}

func newProjectRepository() *projectRepository {
	return &projectRepository{
		projects: make(map[types.ProjectID]*model.Project),
	}
}

func cloneProject(p *model.Project) *model.Project {
	cloned := *p
	if p.Metadata != nil {
		cloned.Metadata = make(map[string]any, len(p.Metadata))
		for k, v := range p.Metadata {
			cloned.Metadata[k] = v
		}
	}
	return &cloned
}

func (r *projectRepository) Create(ctx context.Context, p *model.Project) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := cloneProject(p)
	created.ID = types.NewProjectID()
	if created.Status == "" {
		created.Status = types.ProjectStatusActive
	}
	if created.ProcessingStatus == "" {
		created.ProcessingStatus = types.ProcessingStatusPending
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.projects[created.ID] = created
	return cloneProject(created), nil
}

func (r *projectRepository) Get(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.projects[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", id))
	}

	// Return a copy to prevent external modification
	return cloneProject(p), nil
}

func (r *projectRepository) List(ctx context.Context) ([]*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	projects := make([]*model.Project, 0, len(r.projects))
	for _, p := range r.projects {
		projects = append(projects, cloneProject(p))
	}
	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, p *model.Project) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.projects[p.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", p.ID))
	}

	updated := cloneProject(p)
	updated.ProcessingStatus = existing.ProcessingStatus
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.projects[updated.ID] = updated
	return cloneProject(updated), nil
}

func (r *projectRepository) Delete(ctx context.Context, id types.ProjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.projects[id]; !exists {
		return goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", id))
	}

	delete(r.projects, id)
	return nil
}

func (r *projectRepository) UpdateProcessingStatus(ctx context.Context, id types.ProjectID, status types.ProcessingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.projects[id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", id))
	}

	existing.ProcessingStatus = status
	existing.UpdatedAt = time.Now().UTC()
	return nil
}
