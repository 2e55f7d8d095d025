package filter

import (
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// Default acceptance floors. Tunable via Config, not load-bearing constants.
const (
	DefaultRelevanceFloor  = 0.3
	DefaultConfidenceFloor = 20
)

type Config struct {
	// RelevanceFloor rejects reviews whose relevance score falls below it
	RelevanceFloor float64

	// ConfidenceFloor rejects reviews whose self-reported confidence falls below it
	ConfidenceFloor int

	relevanceSet  bool
	confidenceSet bool
}

// WithRelevanceFloor returns a Config with an explicit relevance floor.
// Needed because 0.0 is a meaningful floor, distinct from "unset".
func (c Config) WithRelevanceFloor(floor float64) Config {
	c.RelevanceFloor = floor
	c.relevanceSet = true
	return c
}

// WithConfidenceFloor returns a Config with an explicit confidence floor
func (c Config) WithConfidenceFloor(floor int) Config {
	c.ConfidenceFloor = floor
	c.confidenceSet = true
	return c
}

func (c Config) relevanceFloor() float64 {
	if c.relevanceSet || c.RelevanceFloor > 0 {
		return c.RelevanceFloor
	}
	return DefaultRelevanceFloor
}

func (c Config) confidenceFloor() int {
	if c.confidenceSet || c.ConfidenceFloor > 0 {
		return c.ConfidenceFloor
	}
	return DefaultConfidenceFloor
}

// Decision is the acceptance verdict for one review
type Decision struct {
	Status  types.ReviewStatus
	Reasons []types.RejectReason // all applicable reasons, empty when accepted
}

// Accepted reports whether the review passed
func (d *Decision) Accepted() bool {
	return d.Status == types.ReviewStatusAccepted
}

// Filter applies the acceptance thresholds. Pure decision function; it never
// mutates the review.
type Filter struct {
	cfg Config
}

func New(cfg Config) *Filter {
	return &Filter{cfg: cfg}
}

// Decide accepts the review unless relevance or confidence falls below its
// floor. When both floors are violated, both reasons are reported.
func (f *Filter) Decide(relevance float64, confidence int) *Decision {
	var reasons []types.RejectReason
	if relevance < f.cfg.relevanceFloor() {
		reasons = append(reasons, types.RejectReasonLowRelevance)
	}
	if confidence < f.cfg.confidenceFloor() {
		reasons = append(reasons, types.RejectReasonLowConfidence)
	}

	if len(reasons) > 0 {
		return &Decision{Status: types.ReviewStatusRejected, Reasons: reasons}
	}
	return &Decision{Status: types.ReviewStatusAccepted}
}
