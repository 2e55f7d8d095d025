package interfaces

import (
	"context"

	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// ProjectRepository defines the interface for Project data access
type ProjectRepository interface {
	// Create creates a new project with an auto-generated ID
	Create(ctx context.Context, p *model.Project) (*model.Project, error)

	// Get retrieves a project by ID
	Get(ctx context.Context, id types.ProjectID) (*model.Project, error)

	// List retrieves all projects
	List(ctx context.Context) ([]*model.Project, error)

	// Update updates an existing project
	Update(ctx context.Context, p *model.Project) (*model.Project, error)

	// Delete deletes a project by ID
	Delete(ctx context.Context, id types.ProjectID) error

	// UpdateProcessingStatus updates only the project's processing status.
	// Owned exclusively by the processing pipeline.
	UpdateProcessingStatus(ctx context.Context, id types.ProjectID, status types.ProcessingStatus) error
}
