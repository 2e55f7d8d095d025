package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// Project represents a submitted hackathon project
type Project struct {
	ID               types.ProjectID
	Name             string
	Description      string
	WorkDone         string
	Status           types.ProjectStatus
	ProcessingStatus types.ProcessingStatus
	Metadata         map[string]any
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate checks if the Project is valid for submission
func (p *Project) Validate() error {
	if p.Name == "" {
		return goerr.New("project name is required")
	}
	if p.Description == "" {
		return goerr.New("project description is required")
	}
	if p.WorkDone == "" {
		return goerr.New("project work-done text is required")
	}
	if p.Status != "" && !p.Status.IsValid() {
		return goerr.New("invalid project status", goerr.V("status", p.Status))
	}
	return nil
}

// FullText returns the concatenated free text used for relevance matching
// and prompt construction.
func (p *Project) FullText() string {
	return strings.Join([]string{p.Name, p.Description, p.WorkDone}, "\n")
}
