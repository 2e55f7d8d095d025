package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type annotationDocument struct {
	DomainID         string             `firestore:"domain_id"`
	ExpertiseLevelID string             `firestore:"expertise_level_id"`
	RelevanceScore   float64            `firestore:"relevance_score"`
	SentimentScores  map[string]float64 `firestore:"sentiment_scores,omitempty"`
	Status           string             `firestore:"status"`
	RejectReasons    []string           `firestore:"reject_reasons,omitempty"`
	ProcessedAt      time.Time          `firestore:"processed_at"`
}

type reviewDocument struct {
	ID              string              `firestore:"id"`
	ProjectID       string              `firestore:"project_id"`
	ReviewerName    string              `firestore:"reviewer_name"`
	Text            string              `firestore:"text"`
	ConfidenceScore int                 `firestore:"confidence_score"`
	Links           map[string]string   `firestore:"links,omitempty"`
	IsArtificial    bool                `firestore:"is_artificial"`
	SubmittedAt     time.Time           `firestore:"submitted_at"`
	Annotation      *annotationDocument `firestore:"annotation,omitempty"`
}

func toAnnotationDocument(ann *model.ReviewAnnotation) *annotationDocument {
	if ann == nil {
		return nil
	}
	doc := &annotationDocument{
		DomainID:         string(ann.DomainID),
		ExpertiseLevelID: string(ann.ExpertiseLevelID),
		RelevanceScore:   ann.RelevanceScore,
		Status:           string(ann.Status),
		ProcessedAt:      ann.ProcessedAt,
	}
	if ann.SentimentScores != nil {
		doc.SentimentScores = make(map[string]float64, len(ann.SentimentScores))
		for k, v := range ann.SentimentScores {
			doc.SentimentScores[string(k)] = v
		}
	}
	for _, reason := range ann.RejectReasons {
		doc.RejectReasons = append(doc.RejectReasons, string(reason))
	}
	return doc
}

func (d *annotationDocument) toModel() *model.ReviewAnnotation {
	ann := &model.ReviewAnnotation{
		DomainID:         types.DomainID(d.DomainID),
		ExpertiseLevelID: types.ExpertiseLevelID(d.ExpertiseLevelID),
		RelevanceScore:   d.RelevanceScore,
		Status:           types.ReviewStatus(d.Status),
		ProcessedAt:      d.ProcessedAt,
	}
	if d.SentimentScores != nil {
		ann.SentimentScores = make(map[types.DimensionID]float64, len(d.SentimentScores))
		for k, v := range d.SentimentScores {
			ann.SentimentScores[types.DimensionID(k)] = v
		}
	}
	for _, reason := range d.RejectReasons {
		ann.RejectReasons = append(ann.RejectReasons, types.RejectReason(reason))
	}
	return ann
}

func toReviewDocument(rv *model.Review) *reviewDocument {
	return &reviewDocument{
		ID:              string(rv.ID),
		ProjectID:       string(rv.ProjectID),
		ReviewerName:    rv.ReviewerName,
		Text:            rv.Text,
		ConfidenceScore: rv.ConfidenceScore,
		Links:           rv.Links,
		IsArtificial:    rv.IsArtificial,
		SubmittedAt:     rv.SubmittedAt,
		Annotation:      toAnnotationDocument(rv.Annotation),
	}
}

func (d *reviewDocument) toModel() *model.Review {
	rv := &model.Review{
		ID:              types.ReviewID(d.ID),
		ProjectID:       types.ProjectID(d.ProjectID),
		ReviewerName:    d.ReviewerName,
		Text:            d.Text,
		ConfidenceScore: d.ConfidenceScore,
		Links:           d.Links,
		IsArtificial:    d.IsArtificial,
		SubmittedAt:     d.SubmittedAt,
	}
	if d.Annotation != nil {
		rv.Annotation = d.Annotation.toModel()
	}
	return rv
}

type reviewRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newReviewRepository(client *firestore.Client) *reviewRepository {
	return &reviewRepository{client: client}
}

func (r *reviewRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_reviews"
	}
	return "reviews"
}

func (r *reviewRepository) Create(ctx context.Context, rv *model.Review) (*model.Review, error) {
	created := *rv
	created.ID = types.NewReviewID()
	if created.SubmittedAt.IsZero() {
		created.SubmittedAt = time.Now().UTC()
	}

	docRef := r.client.Collection(r.collection()).Doc(string(created.ID))
	if _, err := docRef.Set(ctx, toReviewDocument(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create review", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *reviewRepository) Get(ctx context.Context, id types.ReviewID) (*model.Review, error) {
	doc, err := r.client.Collection(r.collection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "review not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get review", goerr.V("id", id))
	}

	var rd reviewDocument
	if err := doc.DataTo(&rd); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal review", goerr.V("id", id))
	}
	return rd.toModel(), nil
}

func (r *reviewRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.Review, error) {
	// Sorted client side to avoid requiring a composite index
	iter := r.client.Collection(r.collection()).
		Where("project_id", "==", string(projectID)).
		Documents(ctx)
	defer iter.Stop()

	var reviews []*model.Review
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate reviews", goerr.V("projectID", projectID))
		}

		var rd reviewDocument
		if err := doc.DataTo(&rd); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal review")
		}
		reviews = append(reviews, rd.toModel())
	}

	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].SubmittedAt.Before(reviews[j].SubmittedAt)
	})
	return reviews, nil
}

func (r *reviewRepository) SaveAnnotation(ctx context.Context, id types.ReviewID, ann *model.ReviewAnnotation) error {
	docRef := r.client.Collection(r.collection()).Doc(string(id))

	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "annotation", Value: toAnnotationDocument(ann)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "review not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to save annotation", goerr.V("id", id))
	}
	return nil
}
