package aggregator

import (
	"math"
	"sort"

	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/model/ontology"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// DefaultSyntheticDiscount down-weights synthetic reviews relative to human
// ones in the aggregation. Must stay below 1.0.
const DefaultSyntheticDiscount = 0.5

type Config struct {
	// SyntheticDiscount is the weight multiplier for artificial reviews
	SyntheticDiscount float64
}

func (c Config) syntheticDiscount() float64 {
	if c.SyntheticDiscount > 0 && c.SyntheticDiscount < 1.0 {
		return c.SyntheticDiscount
	}
	return DefaultSyntheticDiscount
}

// Result holds the aggregated dimension scores of one run
type Result struct {
	// DimensionScores maps covered dimensions to their weighted mean, 1.0-5.0
	DimensionScores map[types.DimensionID]float64

	// UncoveredDimensions lists dimensions no accepted review scored. They are
	// reported, never defaulted.
	UncoveredDimensions []types.DimensionID

	// OverallScore is the unweighted mean of covered dimensions, one decimal,
	// clamped to the scale bounds. Zero when nothing is covered.
	OverallScore float64
}

// Aggregator computes per-dimension weighted means across accepted reviews
type Aggregator struct {
	cfg Config
}

func New(cfg Config) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Weight returns the aggregation weight of one accepted review:
// relevance × confidence/100, halved (by the configured discount) when the
// review is synthetic.
func (a *Aggregator) Weight(rv *model.Review) float64 {
	if rv.Annotation == nil {
		return 0
	}
	w := rv.Annotation.RelevanceScore * float64(rv.ConfidenceScore) / float64(ontology.ConfidenceMax)
	if rv.IsArtificial {
		w *= a.cfg.syntheticDiscount()
	}
	return w
}

// Aggregate computes the weighted mean per dimension over all accepted reviews
// that scored it. Reviews that did not score a dimension are omitted from that
// dimension's mean, not defaulted. An empty accepted set produces a result
// with every snapshot dimension uncovered.
func (a *Aggregator) Aggregate(snapshot *ontology.Snapshot, accepted []*model.Review) *Result {
	weightedSums := make(map[types.DimensionID]float64)
	weightTotals := make(map[types.DimensionID]float64)

	for _, rv := range accepted {
		if rv.Annotation == nil || rv.Annotation.Status != types.ReviewStatusAccepted {
			continue
		}
		w := a.Weight(rv)
		if w <= 0 {
			continue
		}
		for dimID, score := range rv.Annotation.SentimentScores {
			weightedSums[dimID] += w * score
			weightTotals[dimID] += w
		}
	}

	result := &Result{
		DimensionScores: make(map[types.DimensionID]float64, len(weightedSums)),
	}

	for _, dim := range snapshot.Dimensions() {
		total, covered := weightTotals[dim.ID]
		if !covered || total == 0 {
			result.UncoveredDimensions = append(result.UncoveredDimensions, dim.ID)
			continue
		}
		result.DimensionScores[dim.ID] = ontology.ClampScore(weightedSums[dim.ID] / total)
	}

	sort.Slice(result.UncoveredDimensions, func(i, j int) bool {
		return result.UncoveredDimensions[i] < result.UncoveredDimensions[j]
	})

	if len(result.DimensionScores) > 0 {
		var sum float64
		for _, score := range result.DimensionScores {
			sum += score
		}
		mean := sum / float64(len(result.DimensionScores))
		result.OverallScore = ontology.ClampScore(math.Round(mean*10) / 10)
	}

	return result
}
