package interfaces

import (
	"context"

	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// ReviewRepository defines the interface for Review data access
type ReviewRepository interface {
	// Create creates a new review with an auto-generated ID
	Create(ctx context.Context, r *model.Review) (*model.Review, error)

	// Get retrieves a review by ID
	Get(ctx context.Context, id types.ReviewID) (*model.Review, error)

	// ListByProject retrieves all reviews of a project, ordered by submission time
	ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.Review, error)

	// SaveAnnotation writes the processing annotation of a review. The submitted
	// fields stay untouched; reprocessing overwrites the previous annotation.
	SaveAnnotation(ctx context.Context, id types.ReviewID, ann *model.ReviewAnnotation) error
}
