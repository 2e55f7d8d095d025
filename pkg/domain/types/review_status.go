package types

import "fmt"

// ReviewStatus represents the acceptance status of a review
type ReviewStatus string

const (
	ReviewStatusSubmitted ReviewStatus = "submitted"
	ReviewStatusAccepted  ReviewStatus = "accepted"
	ReviewStatusRejected  ReviewStatus = "rejected"
)

// AllReviewStatuses returns all valid review statuses
func AllReviewStatuses() []ReviewStatus {
	return []ReviewStatus{
		ReviewStatusSubmitted,
		ReviewStatusAccepted,
		ReviewStatusRejected,
	}
}

// IsValid checks if the review status is valid
func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewStatusSubmitted,
		ReviewStatusAccepted,
		ReviewStatusRejected:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as ReviewStatusSubmitted.
func (s ReviewStatus) Normalize() ReviewStatus {
	if s == "" {
		return ReviewStatusSubmitted
	}
	return s
}

// String returns the string representation of the review status
func (s ReviewStatus) String() string {
	return string(s)
}

// ParseReviewStatus parses a string into a ReviewStatus
func ParseReviewStatus(s string) (ReviewStatus, error) {
	status := ReviewStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid review status: %s", s)
	}
	return status, nil
}

// RejectReason explains why a review was rejected by the acceptance filter
type RejectReason string

const (
	RejectReasonLowRelevance  RejectReason = "low-relevance"
	RejectReasonLowConfidence RejectReason = "low-confidence"
)

// IsValid checks if the reject reason is valid
func (r RejectReason) IsValid() bool {
	switch r {
	case RejectReasonLowRelevance, RejectReasonLowConfidence:
		return true
	default:
		return false
	}
}

// String returns the string representation of the reject reason
func (r RejectReason) String() string {
	return string(r)
}
