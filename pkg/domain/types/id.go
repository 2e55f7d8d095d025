package types

import (
	"regexp"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var idPattern = regexp.MustCompile(`^[a-z0-9]+([_-][a-z0-9]+)*$`)

// DomainID identifies a knowledge domain in the ontology
type DomainID string

// Validate checks if the DomainID is valid
func (d DomainID) Validate() error {
	if d == "" {
		return goerr.New("domain ID cannot be empty")
	}
	if !idPattern.MatchString(string(d)) {
		return goerr.New("domain ID must be lowercase alphanumeric with hyphens or underscores", goerr.V("id", d))
	}
	return nil
}

// String returns the string representation of DomainID
func (d DomainID) String() string {
	return string(d)
}

// DimensionID identifies an evaluation dimension in the ontology
type DimensionID string

// Validate checks if the DimensionID is valid
func (d DimensionID) Validate() error {
	if d == "" {
		return goerr.New("dimension ID cannot be empty")
	}
	if !idPattern.MatchString(string(d)) {
		return goerr.New("dimension ID must be lowercase alphanumeric with hyphens or underscores", goerr.V("id", d))
	}
	return nil
}

// String returns the string representation of DimensionID
func (d DimensionID) String() string {
	return string(d)
}

// ExpertiseLevelID identifies an expertise level band in the ontology
type ExpertiseLevelID string

// Validate checks if the ExpertiseLevelID is valid
func (e ExpertiseLevelID) Validate() error {
	if e == "" {
		return goerr.New("expertise level ID cannot be empty")
	}
	if !idPattern.MatchString(string(e)) {
		return goerr.New("expertise level ID must be lowercase alphanumeric with hyphens or underscores", goerr.V("id", e))
	}
	return nil
}

// String returns the string representation of ExpertiseLevelID
func (e ExpertiseLevelID) String() string {
	return string(e)
}

// ProjectID identifies a submitted project
type ProjectID string

// NewProjectID generates a new time-ordered ProjectID
func NewProjectID() ProjectID {
	return ProjectID(uuid.Must(uuid.NewV7()).String())
}

// Validate checks if the ProjectID is valid
func (p ProjectID) Validate() error {
	if p == "" {
		return goerr.New("project ID cannot be empty")
	}
	return nil
}

// String returns the string representation of ProjectID
func (p ProjectID) String() string {
	return string(p)
}

// ReviewID identifies a submitted review
type ReviewID string

// NewReviewID generates a new time-ordered ReviewID
func NewReviewID() ReviewID {
	return ReviewID(uuid.Must(uuid.NewV7()).String())
}

// Validate checks if the ReviewID is valid
func (r ReviewID) Validate() error {
	if r == "" {
		return goerr.New("review ID cannot be empty")
	}
	return nil
}

// String returns the string representation of ReviewID
func (r ReviewID) String() string {
	return string(r)
}

// JobID identifies a processing job
type JobID string

// NewJobID generates a new time-ordered JobID
func NewJobID() JobID {
	return JobID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of JobID
func (j JobID) String() string {
	return string(j)
}

// ReportID identifies a feedback report
type ReportID string

// NewReportID generates a new time-ordered ReportID
func NewReportID() ReportID {
	return ReportID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of ReportID
func (r ReportID) String() string {
	return string(r)
}
