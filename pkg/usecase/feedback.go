package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/model/ontology"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// GetStatus returns the most recent processing job of a project. Callers poll
// this after ProcessProject.
func (uc *UseCases) GetStatus(ctx context.Context, projectID types.ProjectID) (*model.ProcessingJob, error) {
	if _, err := uc.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	job, err := uc.repo.Job().GetLatestByProject(ctx, projectID)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrJobNotFound, "project has not been processed", goerr.V("projectID", projectID))
		}
		return nil, goerr.Wrap(err, "failed to get processing status", goerr.V("projectID", projectID))
	}
	return job, nil
}

// GetFeedback returns the project's current feedback report. It fails with
// ErrReportNotReady until a processing run has completed.
func (uc *UseCases) GetFeedback(ctx context.Context, projectID types.ProjectID) (*model.FeedbackReport, error) {
	if _, err := uc.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	report, err := uc.repo.Report().GetCurrent(ctx, projectID)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrReportNotReady, "no completed report for project", goerr.V("projectID", projectID))
		}
		return nil, goerr.Wrap(err, "failed to get feedback report", goerr.V("projectID", projectID))
	}
	return report, nil
}

// GetOntology returns the active ontology snapshot
func (uc *UseCases) GetOntology(ctx context.Context) (*ontology.Snapshot, error) {
	snapshot := uc.registry.Snapshot()
	if snapshot == nil {
		return nil, goerr.Wrap(ErrOntologyUnavailable, "no ontology snapshot loaded")
	}
	return snapshot, nil
}
