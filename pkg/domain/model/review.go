package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/model/ontology"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// Review represents a free-text peer review of a project. The submitted fields
// are immutable; Annotation is written exactly once per processing run and
// overwritten on reprocessing.
type Review struct {
	ID              types.ReviewID
	ProjectID       types.ProjectID
	ReviewerName    string
	Text            string
	ConfidenceScore int // self-reported, 0-100
	Links           map[string]string
	IsArtificial    bool
	SubmittedAt     time.Time

	Annotation *ReviewAnnotation
}

// ReviewAnnotation holds the processing pipeline's verdict on a review
type ReviewAnnotation struct {
	DomainID         types.DomainID
	ExpertiseLevelID types.ExpertiseLevelID
	RelevanceScore   float64 // 0.0-1.0
	SentimentScores  map[types.DimensionID]float64
	Status           types.ReviewStatus
	RejectReasons    []types.RejectReason
	ProcessedAt      time.Time
}

// Validate checks if the Review is valid for submission. Confidence scores
// outside 0-100 are a validation error raised here, before pipeline entry.
func (r *Review) Validate() error {
	if r.ReviewerName == "" {
		return goerr.New("reviewer name is required")
	}
	if r.Text == "" {
		return goerr.New("review text is required")
	}
	if r.ConfidenceScore < ontology.ConfidenceMin || r.ConfidenceScore > ontology.ConfidenceMax {
		return goerr.New("confidence score must be between 0 and 100",
			goerr.V("confidence", r.ConfidenceScore),
		)
	}
	return nil
}

// Accepted reports whether the review passed the acceptance filter
func (r *Review) Accepted() bool {
	return r.Annotation != nil && r.Annotation.Status == types.ReviewStatusAccepted
}
