package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/panoptes-lab/panoptes/pkg/domain/interfaces"
	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	"github.com/panoptes-lab/panoptes/pkg/repository/firestore"
	"github.com/panoptes-lab/panoptes/pkg/repository/memory"
)

func isNotFound(err error) bool {
	return errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)
}

func runProjectRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns ID and defaults", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Project().Create(ctx, &model.Project{
			Name:        "MedTriage",
			Description: "AI assistant for emergency department triage",
			WorkDone:    "Built a prototype with a triage questionnaire and ML model",
		})
		if err != nil {
			t.Fatalf("failed to create project: %v", err)
		}

		if created.ID == "" {
			t.Error("expected non-empty ID")
		}
		if created.Status != types.ProjectStatusActive {
			t.Errorf("expected status=active, got %s", created.Status)
		}
		if created.ProcessingStatus != types.ProcessingStatusPending {
			t.Errorf("expected processing_status=pending, got %s", created.ProcessingStatus)
		}
		if created.CreatedAt.IsZero() {
			t.Error("expected non-zero CreatedAt")
		}
		if created.UpdatedAt.IsZero() {
			t.Error("expected non-zero UpdatedAt")
		}
	})

	t.Run("Get retrieves existing project", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Project().Create(ctx, &model.Project{
			Name:        "CareFlow",
			Description: "Patient flow dashboard",
			WorkDone:    "Wired hospital data feeds into a dashboard",
			Metadata:    map[string]any{"team_size": "4"},
		})
		if err != nil {
			t.Fatalf("failed to create project: %v", err)
		}

		retrieved, err := repo.Project().Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get project: %v", err)
		}
		if retrieved.ID != created.ID {
			t.Errorf("expected ID=%s, got %s", created.ID, retrieved.ID)
		}
		if retrieved.Name != created.Name {
			t.Errorf("expected name=%s, got %s", created.Name, retrieved.Name)
		}
		if retrieved.Metadata["team_size"] != "4" {
			t.Errorf("expected metadata team_size=4, got %v", retrieved.Metadata["team_size"])
		}
	})

	t.Run("Get returns error for non-existent project", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Project().Get(ctx, types.NewProjectID())
		if err == nil {
			t.Error("expected error for non-existent project")
		}
		if !isNotFound(err) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List returns all projects", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		projects, err := repo.Project().List(ctx)
		if err != nil {
			t.Fatalf("failed to list projects: %v", err)
		}
		if len(projects) != 0 {
			t.Errorf("expected 0 projects, got %d", len(projects))
		}

		for _, name := range []string{"Alpha", "Beta"} {
			if _, err := repo.Project().Create(ctx, &model.Project{
				Name:        name,
				Description: "description",
				WorkDone:    "work done",
			}); err != nil {
				t.Fatalf("failed to create project %s: %v", name, err)
			}
		}

		projects, err = repo.Project().List(ctx)
		if err != nil {
			t.Fatalf("failed to list projects: %v", err)
		}
		if len(projects) != 2 {
			t.Errorf("expected 2 projects, got %d", len(projects))
		}
	})

	t.Run("Update modifies fields but keeps processing status", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Project().Create(ctx, &model.Project{
			Name:        "Original",
			Description: "Original description",
			WorkDone:    "Original work",
		})
		if err != nil {
			t.Fatalf("failed to create project: %v", err)
		}

		if err := repo.Project().UpdateProcessingStatus(ctx, created.ID, types.ProcessingStatusCompleted); err != nil {
			t.Fatalf("failed to update processing status: %v", err)
		}

		time.Sleep(10 * time.Millisecond)
		updated, err := repo.Project().Update(ctx, &model.Project{
			ID:          created.ID,
			Name:        "Renamed",
			Description: "New description",
			WorkDone:    "New work",
			Status:      types.ProjectStatusArchived,
		})
		if err != nil {
			t.Fatalf("failed to update project: %v", err)
		}

		if updated.Name != "Renamed" {
			t.Errorf("expected name=Renamed, got %s", updated.Name)
		}
		if updated.ProcessingStatus != types.ProcessingStatusCompleted {
			t.Errorf("Update must not touch processing status, got %s", updated.ProcessingStatus)
		}
		if !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("CreatedAt should not change, got %v", updated.CreatedAt)
		}
		if !updated.UpdatedAt.After(created.UpdatedAt) {
			t.Errorf("UpdatedAt should advance, got %v", updated.UpdatedAt)
		}
	})

	t.Run("UpdateProcessingStatus persists", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Project().Create(ctx, &model.Project{
			Name:        "Status Test",
			Description: "description",
			WorkDone:    "work",
		})
		if err != nil {
			t.Fatalf("failed to create project: %v", err)
		}

		if err := repo.Project().UpdateProcessingStatus(ctx, created.ID, types.ProcessingStatusProcessing); err != nil {
			t.Fatalf("failed to update processing status: %v", err)
		}

		retrieved, err := repo.Project().Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get project: %v", err)
		}
		if retrieved.ProcessingStatus != types.ProcessingStatusProcessing {
			t.Errorf("expected processing_status=processing, got %s", retrieved.ProcessingStatus)
		}
	})

	t.Run("Delete removes existing project", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Project().Create(ctx, &model.Project{
			Name:        "To Be Deleted",
			Description: "description",
			WorkDone:    "work",
		})
		if err != nil {
			t.Fatalf("failed to create project: %v", err)
		}

		if err := repo.Project().Delete(ctx, created.ID); err != nil {
			t.Fatalf("failed to delete project: %v", err)
		}

		_, err = repo.Project().Get(ctx, created.ID)
		if !isNotFound(err) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("Delete returns error for non-existent project", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Project().Delete(ctx, types.NewProjectID())
		if !isNotFound(err) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestMemoryProjectRepository(t *testing.T) {
	runProjectRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreProjectRepository(t *testing.T) {
	runProjectRepositoryTest(t, newFirestoreRepository)
}
