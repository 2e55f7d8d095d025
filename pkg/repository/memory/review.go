package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

type reviewRepository struct {
	mu      sync.RWMutex
	reviews map[types.ReviewID]*model.Review
}

func newReviewRepository() *reviewRepository {
	return &reviewRepository{
		reviews: make(map[types.ReviewID]*model.Review),
	}
}

func cloneReview(rv *model.Review) *model.Review {
	cloned := *rv
	if rv.Links != nil {
		cloned.Links = make(map[string]string, len(rv.Links))
		for k, v := range rv.Links {
			cloned.Links[k] = v
		}
	}
	if rv.Annotation != nil {
		cloned.Annotation = cloneAnnotation(rv.Annotation)
	}
	return &cloned
}

func cloneAnnotation(ann *model.ReviewAnnotation) *model.ReviewAnnotation {
	cloned := *ann
	if ann.SentimentScores != nil {
		cloned.SentimentScores = make(map[types.DimensionID]float64, len(ann.SentimentScores))
		for k, v := range ann.SentimentScores {
			cloned.SentimentScores[k] = v
		}
	}
	if ann.RejectReasons != nil {
		cloned.RejectReasons = make([]types.RejectReason, len(ann.RejectReasons))
		copy(cloned.RejectReasons, ann.RejectReasons)
	}
	return &cloned
}

func (r *reviewRepository) Create(ctx context.Context, rv *model.Review) (*model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := cloneReview(rv)
	created.ID = types.NewReviewID()
	if created.SubmittedAt.IsZero() {
		created.SubmittedAt = time.Now().UTC()
	}

	r.reviews[created.ID] = created
	return cloneReview(created), nil
}

func (r *reviewRepository) Get(ctx context.Context, id types.ReviewID) (*model.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rv, exists := r.reviews[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "review not found", goerr.V("id", id))
	}
	return cloneReview(rv), nil
}

func (r *reviewRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var reviews []*model.Review
	for _, rv := range r.reviews {
		if rv.ProjectID == projectID {
			reviews = append(reviews, cloneReview(rv))
		}
	}
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].SubmittedAt.Before(reviews[j].SubmittedAt)
	})
	return reviews, nil
}

func (r *reviewRepository) SaveAnnotation(ctx context.Context, id types.ReviewID, ann *model.ReviewAnnotation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rv, exists := r.reviews[id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "review not found", goerr.V("id", id))
	}

	rv.Annotation = cloneAnnotation(ann)
	return nil
}
