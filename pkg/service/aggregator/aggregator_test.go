package aggregator_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/model/ontology"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	"github.com/panoptes-lab/panoptes/pkg/service/aggregator"
)

func testSnapshot(t *testing.T) *ontology.Snapshot {
	t.Helper()

	scale := map[int]string{1: "a", 2: "b", 3: "c", 4: "d", 5: "e"}
	dims := []*ontology.Dimension{
		{ID: "innovation", Name: "Innovation", Description: "d", Scale: scale},
		{ID: "impact", Name: "Impact", Description: "d", Scale: scale},
		{ID: "scalability", Name: "Scalability", Description: "d", Scale: scale},
	}
	domains := []*ontology.Domain{
		{
			ID: "technical", Name: "Technical", Description: "d",
			Keywords:           []string{"code"},
			RelevantDimensions: []types.DimensionID{"innovation", "impact", "scalability"},
		},
	}
	levels := []*ontology.ExpertiseLevel{
		{ID: "any", Name: "Any", MinConfidence: 0, MaxConfidence: 100},
	}

	snap, err := ontology.NewSnapshot(1, domains, dims, levels)
	gt.NoError(t, err)
	return snap
}

func acceptedReview(confidence int, relevance float64, artificial bool, scores map[types.DimensionID]float64) *model.Review {
	return &model.Review{
		ID:              types.NewReviewID(),
		ReviewerName:    "r",
		Text:            "t",
		ConfidenceScore: confidence,
		IsArtificial:    artificial,
		Annotation: &model.ReviewAnnotation{
			DomainID:        "technical",
			RelevanceScore:  relevance,
			SentimentScores: scores,
			Status:          types.ReviewStatusAccepted,
		},
	}
}

func TestAggregateWeightedMean(t *testing.T) {
	snap := testSnapshot(t)
	agg := aggregator.New(aggregator.Config{})

	reviews := []*model.Review{
		// weight 0.8 * 100/100 = 0.8
		acceptedReview(100, 0.8, false, map[types.DimensionID]float64{"innovation": 5}),
		// weight 0.4 * 50/100 = 0.2
		acceptedReview(50, 0.4, false, map[types.DimensionID]float64{"innovation": 1}),
	}

	result := agg.Aggregate(snap, reviews)
	// (0.8*5 + 0.2*1) / 1.0 = 4.2
	score := result.DimensionScores[types.DimensionID("innovation")]
	if score < 4.19 || score > 4.21 {
		t.Errorf("expected weighted mean near 4.2, got %v", score)
	}
}

func TestAggregateOmitsUnscoredDimensions(t *testing.T) {
	snap := testSnapshot(t)
	agg := aggregator.New(aggregator.Config{})

	reviews := []*model.Review{
		acceptedReview(80, 0.9, false, map[types.DimensionID]float64{"innovation": 4, "impact": 3}),
	}

	result := agg.Aggregate(snap, reviews)
	gt.A(t, result.UncoveredDimensions).Length(1)
	gt.Value(t, result.UncoveredDimensions[0]).Equal(types.DimensionID("scalability"))
	_, exists := result.DimensionScores[types.DimensionID("scalability")]
	gt.B(t, exists).False()
}

func TestAggregateScoresWithinBounds(t *testing.T) {
	snap := testSnapshot(t)
	agg := aggregator.New(aggregator.Config{})

	reviews := []*model.Review{
		acceptedReview(100, 1.0, false, map[types.DimensionID]float64{
			"innovation": 5, "impact": 1, "scalability": 3,
		}),
	}

	result := agg.Aggregate(snap, reviews)
	for dimID, score := range result.DimensionScores {
		if score < 1.0 || score > 5.0 {
			t.Errorf("dimension %s score %v out of [1.0, 5.0]", dimID, score)
		}
	}
	gt.B(t, result.OverallScore >= 1.0).True()
	gt.B(t, result.OverallScore <= 5.0).True()
}

func TestAggregateOverallIsRoundedMean(t *testing.T) {
	snap := testSnapshot(t)
	agg := aggregator.New(aggregator.Config{})

	reviews := []*model.Review{
		acceptedReview(100, 1.0, false, map[types.DimensionID]float64{
			"innovation": 5, "impact": 4, "scalability": 3,
		}),
	}

	result := agg.Aggregate(snap, reviews)
	gt.Value(t, result.OverallScore).Equal(4.0)
}

func TestAggregateEmptyInput(t *testing.T) {
	snap := testSnapshot(t)
	agg := aggregator.New(aggregator.Config{})

	result := agg.Aggregate(snap, nil)
	gt.Value(t, len(result.DimensionScores)).Equal(0)
	gt.A(t, result.UncoveredDimensions).Length(3)
	gt.Value(t, result.OverallScore).Equal(0.0)
}

func TestAggregateSyntheticDiscount(t *testing.T) {
	agg := aggregator.New(aggregator.Config{})

	human := acceptedReview(80, 0.8, false, map[types.DimensionID]float64{"innovation": 5})
	synthetic := acceptedReview(80, 0.8, true, map[types.DimensionID]float64{"innovation": 5})

	gt.Value(t, agg.Weight(synthetic)).Equal(agg.Weight(human)*aggregator.DefaultSyntheticDiscount)
}

func TestAggregateSyntheticOnlyNotAboveHumanEquivalent(t *testing.T) {
	snap := testSnapshot(t)
	agg := aggregator.New(aggregator.Config{})

	scores := map[types.DimensionID]float64{"innovation": 4}
	low := acceptedReview(90, 0.9, false, map[types.DimensionID]float64{"innovation": 2})

	syntheticResult := agg.Aggregate(snap, []*model.Review{
		acceptedReview(90, 0.9, true, scores),
		low,
	})
	humanResult := agg.Aggregate(snap, []*model.Review{
		acceptedReview(90, 0.9, false, scores),
		low,
	})

	// The discounted synthetic vote pulls the mean toward the other review
	// less strongly than the same text submitted as human.
	gt.B(t, syntheticResult.DimensionScores["innovation"] <= humanResult.DimensionScores["innovation"]).True()
}

func TestAggregateIgnoresRejectedAndUnannotated(t *testing.T) {
	snap := testSnapshot(t)
	agg := aggregator.New(aggregator.Config{})

	rejected := acceptedReview(90, 0.9, false, map[types.DimensionID]float64{"innovation": 1})
	rejected.Annotation.Status = types.ReviewStatusRejected

	reviews := []*model.Review{
		rejected,
		{ID: types.NewReviewID(), ConfidenceScore: 90}, // no annotation
		acceptedReview(100, 1.0, false, map[types.DimensionID]float64{"innovation": 5}),
	}

	result := agg.Aggregate(snap, reviews)
	gt.Value(t, result.DimensionScores[types.DimensionID("innovation")]).Equal(5.0)
}

func TestAggregateConfiguredDiscount(t *testing.T) {
	agg := aggregator.New(aggregator.Config{SyntheticDiscount: 0.25})

	synthetic := acceptedReview(100, 1.0, true, nil)
	gt.Value(t, agg.Weight(synthetic)).Equal(0.25)
}
