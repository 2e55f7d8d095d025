package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/interfaces"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	"github.com/panoptes-lab/panoptes/pkg/utils/logging"
)

// StaleJobReaper periodically fails processing jobs that have been in flight
// longer than the deadline, e.g. after a crash mid-run. Failing the job
// releases the per-project run lock so the project can be reprocessed.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type StaleJobReaper struct {
	repo     interfaces.Repository
	interval time.Duration
	deadline time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewStaleJobReaper creates a reaper that checks every interval for jobs in
// flight longer than deadline
func NewStaleJobReaper(repo interfaces.Repository, interval, deadline time.Duration) *StaleJobReaper {
	return &StaleJobReaper{
		repo:     repo,
		interval: interval,
		deadline: deadline,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background reap loop. Does not block server startup.
func (w *StaleJobReaper) Start(ctx context.Context) error {
	logging.Default().Info("stale job reaper starting",
		"interval", w.interval.String(),
		"deadline", w.deadline.String())

	go w.run(ctx)

	return nil
}

// Stop signals the reaper to stop and waits for completion
func (w *StaleJobReaper) Stop() {
	logging.Default().Info("stale job reaper stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("stale job reaper stopped")
}

func (w *StaleJobReaper) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.reap(ctx); err != nil {
				// Log error but continue worker
				logging.Default().Error("stale job reap failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("stale job reaper received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("stale job reaper context cancelled")
			return
		}
	}
}

// reap performs a single pass over in-flight jobs
func (w *StaleJobReaper) reap(ctx context.Context) error {
	jobs, err := w.repo.Job().ListInFlight(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list in-flight jobs")
	}

	cutoff := time.Now().UTC().Add(-w.deadline)
	var reaped int
	for _, job := range jobs {
		if job.StartedAt.After(cutoff) {
			continue
		}

		job.AppendError(fmt.Sprintf("run exceeded deadline of %s, marked failed by reaper", w.deadline))
		if err := job.TransitionTo(types.ProcessingStatusFailed); err != nil {
			logging.Default().Error("failed to transition stale job",
				"jobID", job.ID, "status", job.Status, "error", err.Error())
			continue
		}
		if err := w.repo.Job().Update(ctx, job); err != nil {
			return goerr.Wrap(err, "failed to update stale job", goerr.V("jobID", job.ID))
		}
		if err := w.repo.Project().UpdateProcessingStatus(ctx, job.ProjectID, types.ProcessingStatusFailed); err != nil {
			logging.Default().Error("failed to update project status for stale job",
				"jobID", job.ID, "projectID", job.ProjectID, "error", err.Error())
		}
		reaped++
	}

	if reaped > 0 {
		logging.Default().Info("reaped stale jobs", "count", reaped)
	}
	return nil
}
