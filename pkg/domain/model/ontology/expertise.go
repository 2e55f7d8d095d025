package ontology

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// Confidence score bounds for reviewer self-assessment
const (
	ConfidenceMin = 0
	ConfidenceMax = 100
)

// ExpertiseLevel maps a confidence score band to a named expertise level.
// Bands partition the 0-100 range with no gaps or overlaps; both bounds inclusive.
type ExpertiseLevel struct {
	ID            types.ExpertiseLevelID
	Name          string
	Description   string
	MinConfidence int
	MaxConfidence int
}

// Validate checks if the ExpertiseLevel is valid
func (e *ExpertiseLevel) Validate() error {
	if err := e.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid expertise level ID")
	}
	if e.Name == "" {
		return goerr.New("expertise level name is required", goerr.V("id", e.ID))
	}
	if e.MinConfidence < ConfidenceMin || e.MaxConfidence > ConfidenceMax {
		return goerr.New("expertise level band out of range",
			goerr.V("id", e.ID),
			goerr.V("min", e.MinConfidence),
			goerr.V("max", e.MaxConfidence),
		)
	}
	if e.MinConfidence > e.MaxConfidence {
		return goerr.New("expertise level band is inverted",
			goerr.V("id", e.ID),
			goerr.V("min", e.MinConfidence),
			goerr.V("max", e.MaxConfidence),
		)
	}
	return nil
}

// Contains reports whether the confidence score falls in this band
func (e *ExpertiseLevel) Contains(confidence int) bool {
	return confidence >= e.MinConfidence && confidence <= e.MaxConfidence
}
