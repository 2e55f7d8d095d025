package types

import "fmt"

// ProcessingStatus represents the status of a processing run. Transitions are
// monotonic: pending → processing → completed|failed, never backward.
type ProcessingStatus string

const (
	ProcessingStatusPending    ProcessingStatus = "pending"
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

// AllProcessingStatuses returns all valid processing statuses
func AllProcessingStatuses() []ProcessingStatus {
	return []ProcessingStatus{
		ProcessingStatusPending,
		ProcessingStatusProcessing,
		ProcessingStatusCompleted,
		ProcessingStatusFailed,
	}
}

// IsValid checks if the processing status is valid
func (s ProcessingStatus) IsValid() bool {
	switch s {
	case ProcessingStatusPending,
		ProcessingStatusProcessing,
		ProcessingStatusCompleted,
		ProcessingStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status is a final state
func (s ProcessingStatus) IsTerminal() bool {
	return s == ProcessingStatusCompleted || s == ProcessingStatusFailed
}

// CanTransitionTo reports whether moving to next keeps the monotonic order
func (s ProcessingStatus) CanTransitionTo(next ProcessingStatus) bool {
	switch s {
	case ProcessingStatusPending:
		return next == ProcessingStatusProcessing || next == ProcessingStatusFailed
	case ProcessingStatusProcessing:
		return next == ProcessingStatusCompleted || next == ProcessingStatusFailed
	default:
		return false
	}
}

// String returns the string representation of the processing status
func (s ProcessingStatus) String() string {
	return string(s)
}

// ParseProcessingStatus parses a string into a ProcessingStatus
func ParseProcessingStatus(s string) (ProcessingStatus, error) {
	status := ProcessingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid processing status: %s", s)
	}
	return status, nil
}
