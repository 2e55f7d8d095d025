package memory

import (
	"github.com/panoptes-lab/panoptes/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	project *projectRepository
	review  *reviewRepository
	job     *jobRepository
	report  *reportRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		project: newProjectRepository(),
		review:  newReviewRepository(),
		job:     newJobRepository(),
		report:  newReportRepository(),
	}
}

func (m *Memory) Project() interfaces.ProjectRepository {
	return m.project
}

func (m *Memory) Review() interfaces.ReviewRepository {
	return m.review
}

func (m *Memory) Job() interfaces.JobRepository {
	return m.job
}

func (m *Memory) Report() interfaces.ReportRepository {
	return m.report
}

func (m *Memory) Close() error {
	return nil
}
