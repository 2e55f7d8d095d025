package interfaces

import (
	"context"

	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// ReportRepository defines the interface for FeedbackReport data access
type ReportRepository interface {
	// Save stores a report as the project's current report, superseding
	// (not merging with) any previous one.
	Save(ctx context.Context, report *model.FeedbackReport) error

	// GetCurrent retrieves the project's current report
	GetCurrent(ctx context.Context, projectID types.ProjectID) (*model.FeedbackReport, error)
}
