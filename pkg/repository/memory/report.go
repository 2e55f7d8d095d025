package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

type reportRepository struct {
	mu      sync.RWMutex
	reports map[types.ProjectID]*model.FeedbackReport
}

func newReportRepository() *reportRepository {
	return &reportRepository{
		reports: make(map[types.ProjectID]*model.FeedbackReport),
	}
}

func cloneReport(rep *model.FeedbackReport) *model.FeedbackReport {
	cloned := *rep
	if rep.DimensionScores != nil {
		cloned.DimensionScores = make(map[types.DimensionID]float64, len(rep.DimensionScores))
		for k, v := range rep.DimensionScores {
			cloned.DimensionScores[k] = v
		}
	}
	cloned.UncoveredDimensions = append([]types.DimensionID(nil), rep.UncoveredDimensions...)
	cloned.UncoveredDomains = append([]types.DomainID(nil), rep.UncoveredDomains...)
	cloned.Recommendations = append([]string(nil), rep.Recommendations...)
	if rep.Insights != nil {
		cloned.Insights = make([]model.DomainInsight, len(rep.Insights))
		for i, ins := range rep.Insights {
			copied := ins
			copied.KeyStrengths = append([]string(nil), ins.KeyStrengths...)
			copied.Concerns = append([]string(nil), ins.Concerns...)
			cloned.Insights[i] = copied
		}
	}
	return &cloned
}

// Save stores the report as the project's current one. Any previous report is
// replaced wholesale, never merged.
func (r *reportRepository) Save(ctx context.Context, rep *model.FeedbackReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reports[rep.ProjectID] = cloneReport(rep)
	return nil
}

func (r *reportRepository) GetCurrent(ctx context.Context, projectID types.ProjectID) (*model.FeedbackReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, exists := r.reports[projectID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "no report for project", goerr.V("projectID", projectID))
	}
	return cloneReport(rep), nil
}
