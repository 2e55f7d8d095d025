package ontology

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// Scale bounds for all evaluation dimensions
const (
	ScaleMin      = 1
	ScaleMax      = 5
	ScaleMidpoint = 3
)

// Dimension represents an evaluation dimension with a 1-5 integer scale
type Dimension struct {
	ID          types.DimensionID
	Name        string
	Description string
	Scale       map[int]string // point → textual meaning, must cover 1..5
}

// Validate checks if the Dimension is valid
func (d *Dimension) Validate() error {
	if err := d.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid dimension ID")
	}
	if d.Name == "" {
		return goerr.New("dimension name is required", goerr.V("id", d.ID))
	}
	if len(d.Scale) != ScaleMax-ScaleMin+1 {
		return goerr.New("dimension scale must define exactly 5 points", goerr.V("id", d.ID), goerr.V("points", len(d.Scale)))
	}
	for point := ScaleMin; point <= ScaleMax; point++ {
		if d.Scale[point] == "" {
			return goerr.New("dimension scale point missing meaning", goerr.V("id", d.ID), goerr.V("point", point))
		}
	}
	return nil
}

// ClampScore clamps an aggregated score into the scale bounds
func ClampScore(score float64) float64 {
	if score < float64(ScaleMin) {
		return float64(ScaleMin)
	}
	if score > float64(ScaleMax) {
		return float64(ScaleMax)
	}
	return score
}
