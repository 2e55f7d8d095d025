package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// CreateProject validates and persists a new project
func (uc *UseCases) CreateProject(ctx context.Context, p *model.Project) (*model.Project, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	created, err := uc.repo.Project().Create(ctx, p)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create project")
	}
	return created, nil
}

// GetProject retrieves a project by ID
func (uc *UseCases) GetProject(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	p, err := uc.repo.Project().Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrProjectNotFound, "no such project", goerr.V("projectID", id))
		}
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("projectID", id))
	}
	return p, nil
}

// ListProjects retrieves all projects
func (uc *UseCases) ListProjects(ctx context.Context) ([]*model.Project, error) {
	projects, err := uc.repo.Project().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list projects")
	}
	return projects, nil
}

// UpdateProject validates and updates an existing project. The processing
// status is owned by the pipeline and cannot be changed here.
func (uc *UseCases) UpdateProject(ctx context.Context, p *model.Project) (*model.Project, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	updated, err := uc.repo.Project().Update(ctx, p)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrProjectNotFound, "no such project", goerr.V("projectID", p.ID))
		}
		return nil, goerr.Wrap(err, "failed to update project", goerr.V("projectID", p.ID))
	}
	return updated, nil
}

// DeleteProject deletes a project by ID
func (uc *UseCases) DeleteProject(ctx context.Context, id types.ProjectID) error {
	if err := uc.repo.Project().Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrProjectNotFound, "no such project", goerr.V("projectID", id))
		}
		return goerr.Wrap(err, "failed to delete project", goerr.V("projectID", id))
	}
	return nil
}
