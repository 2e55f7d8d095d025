package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/panoptes-lab/panoptes/pkg/domain/interfaces"
	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

func runReviewRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns ID and submission time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Review().Create(ctx, &model.Review{
			ProjectID:       types.NewProjectID(),
			ReviewerName:    "Dr. Tanaka",
			Text:            "Strong clinical grounding but the deployment plan is vague",
			ConfidenceScore: 85,
			Links:           map[string]string{"profile": "https://example.com/tanaka"},
		})
		if err != nil {
			t.Fatalf("failed to create review: %v", err)
		}

		if created.ID == "" {
			t.Error("expected non-empty ID")
		}
		if created.SubmittedAt.IsZero() {
			t.Error("expected non-zero SubmittedAt")
		}
		if created.Annotation != nil {
			t.Error("fresh review must have no annotation")
		}
	})

	t.Run("ListByProject returns reviews in submission order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		projectID := types.NewProjectID()

		base := time.Now().UTC().Add(-time.Hour)
		for i, name := range []string{"first", "second", "third"} {
			_, err := repo.Review().Create(ctx, &model.Review{
				ProjectID:       projectID,
				ReviewerName:    name,
				Text:            "review text",
				ConfidenceScore: 50,
				SubmittedAt:     base.Add(time.Duration(i) * time.Minute),
			})
			if err != nil {
				t.Fatalf("failed to create review %s: %v", name, err)
			}
		}

		// Review of another project must not leak in
		if _, err := repo.Review().Create(ctx, &model.Review{
			ProjectID:       types.NewProjectID(),
			ReviewerName:    "other",
			Text:            "unrelated",
			ConfidenceScore: 10,
		}); err != nil {
			t.Fatalf("failed to create unrelated review: %v", err)
		}

		reviews, err := repo.Review().ListByProject(ctx, projectID)
		if err != nil {
			t.Fatalf("failed to list reviews: %v", err)
		}
		if len(reviews) != 3 {
			t.Fatalf("expected 3 reviews, got %d", len(reviews))
		}
		for i, name := range []string{"first", "second", "third"} {
			if reviews[i].ReviewerName != name {
				t.Errorf("expected reviews[%d]=%s, got %s", i, name, reviews[i].ReviewerName)
			}
		}
	})

	t.Run("SaveAnnotation persists verdict without touching submitted fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Review().Create(ctx, &model.Review{
			ProjectID:       types.NewProjectID(),
			ReviewerName:    "Reviewer",
			Text:            "The architecture looks scalable",
			ConfidenceScore: 72,
		})
		if err != nil {
			t.Fatalf("failed to create review: %v", err)
		}

		ann := &model.ReviewAnnotation{
			DomainID:         "technical",
			ExpertiseLevelID: "talented",
			RelevanceScore:   0.8,
			SentimentScores: map[types.DimensionID]float64{
				"scalability": 4,
				"innovation":  3,
			},
			Status:      types.ReviewStatusAccepted,
			ProcessedAt: time.Now().UTC(),
		}
		if err := repo.Review().SaveAnnotation(ctx, created.ID, ann); err != nil {
			t.Fatalf("failed to save annotation: %v", err)
		}

		retrieved, err := repo.Review().Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get review: %v", err)
		}
		if retrieved.Text != created.Text {
			t.Errorf("submitted text changed: %s", retrieved.Text)
		}
		if retrieved.Annotation == nil {
			t.Fatal("expected annotation")
		}
		if retrieved.Annotation.DomainID != "technical" {
			t.Errorf("expected domain=technical, got %s", retrieved.Annotation.DomainID)
		}
		if retrieved.Annotation.SentimentScores["scalability"] != 4 {
			t.Errorf("expected scalability=4, got %v", retrieved.Annotation.SentimentScores["scalability"])
		}
		if !retrieved.Accepted() {
			t.Error("expected review to be accepted")
		}
	})

	t.Run("SaveAnnotation overwrites previous verdict", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Review().Create(ctx, &model.Review{
			ProjectID:       types.NewProjectID(),
			ReviewerName:    "Reviewer",
			Text:            "Some text",
			ConfidenceScore: 15,
		})
		if err != nil {
			t.Fatalf("failed to create review: %v", err)
		}

		first := &model.ReviewAnnotation{
			DomainID:       "business",
			Status:         types.ReviewStatusRejected,
			RejectReasons:  []types.RejectReason{types.RejectReasonLowConfidence},
			RelevanceScore: 0.5,
			ProcessedAt:    time.Now().UTC(),
		}
		if err := repo.Review().SaveAnnotation(ctx, created.ID, first); err != nil {
			t.Fatalf("failed to save first annotation: %v", err)
		}

		second := &model.ReviewAnnotation{
			DomainID:       "business",
			Status:         types.ReviewStatusAccepted,
			RelevanceScore: 0.6,
			ProcessedAt:    time.Now().UTC(),
		}
		if err := repo.Review().SaveAnnotation(ctx, created.ID, second); err != nil {
			t.Fatalf("failed to save second annotation: %v", err)
		}

		retrieved, err := repo.Review().Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get review: %v", err)
		}
		if retrieved.Annotation.Status != types.ReviewStatusAccepted {
			t.Errorf("expected accepted after reprocessing, got %s", retrieved.Annotation.Status)
		}
		if len(retrieved.Annotation.RejectReasons) != 0 {
			t.Errorf("expected no reject reasons, got %v", retrieved.Annotation.RejectReasons)
		}
	})

	t.Run("SaveAnnotation returns error for non-existent review", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Review().SaveAnnotation(ctx, types.NewReviewID(), &model.ReviewAnnotation{})
		if !isNotFound(err) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("IsArtificial flag round-trips", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Review().Create(ctx, &model.Review{
			ProjectID:       types.NewProjectID(),
			ReviewerName:    "Synthetic Business Perspective",
			Text:            "Generated perspective",
			ConfidenceScore: 60,
			IsArtificial:    true,
		})
		if err != nil {
			t.Fatalf("failed to create review: %v", err)
		}

		retrieved, err := repo.Review().Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get review: %v", err)
		}
		if !retrieved.IsArtificial {
			t.Error("expected IsArtificial=true")
		}
	})
}

func TestMemoryReviewRepository(t *testing.T) {
	runReviewRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreReviewRepository(t *testing.T) {
	runReviewRepositoryTest(t, newFirestoreRepository)
}
