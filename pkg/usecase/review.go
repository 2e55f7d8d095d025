package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// SubmitReview validates and persists a human review for a project. The
// artificial flag is reserved for the generation pipeline and always false on
// submission.
func (uc *UseCases) SubmitReview(ctx context.Context, projectID types.ProjectID, r *model.Review) (*model.Review, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if _, err := uc.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	r.ProjectID = projectID
	r.IsArtificial = false
	r.Annotation = nil

	created, err := uc.repo.Review().Create(ctx, r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create review", goerr.V("projectID", projectID))
	}
	return created, nil
}

// GetReview retrieves a review by ID
func (uc *UseCases) GetReview(ctx context.Context, id types.ReviewID) (*model.Review, error) {
	r, err := uc.repo.Review().Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrReviewNotFound, "no such review", goerr.V("reviewID", id))
		}
		return nil, goerr.Wrap(err, "failed to get review", goerr.V("reviewID", id))
	}
	return r, nil
}

// ListReviews retrieves all reviews of a project in submission order
func (uc *UseCases) ListReviews(ctx context.Context, projectID types.ProjectID) ([]*model.Review, error) {
	if _, err := uc.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	reviews, err := uc.repo.Review().ListByProject(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list reviews", goerr.V("projectID", projectID))
	}
	return reviews, nil
}
