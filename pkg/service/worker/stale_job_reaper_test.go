package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	"github.com/panoptes-lab/panoptes/pkg/repository/memory"
	"github.com/panoptes-lab/panoptes/pkg/service/worker"
)

func setupProject(t *testing.T, repo *memory.Memory) *model.Project {
	t.Helper()
	project, err := repo.Project().Create(context.Background(), &model.Project{
		Name:        "Test Project",
		Description: "desc",
		WorkDone:    "work",
	})
	gt.NoError(t, err)
	return project
}

func TestReaperFailsStaleJob(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	project := setupProject(t, repo)

	job, started, err := repo.Job().StartRun(ctx, project.ID)
	gt.NoError(t, err)
	gt.B(t, started).True()

	gt.NoError(t, job.TransitionTo(types.ProcessingStatusProcessing))
	job.StartedAt = time.Now().UTC().Add(-2 * time.Hour)
	gt.NoError(t, repo.Job().Update(ctx, job))

	reaper := worker.NewStaleJobReaper(repo, time.Minute, time.Hour)
	gt.NoError(t, reaper.ReapOnce(ctx))

	got, err := repo.Job().Get(ctx, job.ID)
	gt.NoError(t, err)
	gt.Value(t, got.Status).Equal(types.ProcessingStatusFailed)
	gt.B(t, len(got.Errors) > 0).True()

	p, err := repo.Project().Get(ctx, project.ID)
	gt.NoError(t, err)
	gt.Value(t, p.ProcessingStatus).Equal(types.ProcessingStatusFailed)
}

func TestReaperLeavesFreshJobAlone(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	project := setupProject(t, repo)

	job, started, err := repo.Job().StartRun(ctx, project.ID)
	gt.NoError(t, err)
	gt.B(t, started).True()

	reaper := worker.NewStaleJobReaper(repo, time.Minute, time.Hour)
	gt.NoError(t, reaper.ReapOnce(ctx))

	got, err := repo.Job().Get(ctx, job.ID)
	gt.NoError(t, err)
	gt.Value(t, got.Status).Equal(types.ProcessingStatusPending)
}

func TestReaperReleasesRunLock(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	project := setupProject(t, repo)

	job, started, err := repo.Job().StartRun(ctx, project.ID)
	gt.NoError(t, err)
	gt.B(t, started).True()

	job.StartedAt = time.Now().UTC().Add(-2 * time.Hour)
	gt.NoError(t, repo.Job().Update(ctx, job))

	reaper := worker.NewStaleJobReaper(repo, time.Minute, time.Hour)
	gt.NoError(t, reaper.ReapOnce(ctx))

	// A failed job no longer blocks a new run
	_, started, err = repo.Job().StartRun(ctx, project.ID)
	gt.NoError(t, err)
	gt.B(t, started).True()
}

func TestReaperStartStop(t *testing.T) {
	repo := memory.New()

	reaper := worker.NewStaleJobReaper(repo, 10*time.Millisecond, time.Hour)
	gt.NoError(t, reaper.Start(context.Background()))
	time.Sleep(30 * time.Millisecond)
	reaper.Stop()
}
