package sentiment_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/panoptes-lab/panoptes/pkg/domain/model/ontology"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	"github.com/panoptes-lab/panoptes/pkg/service/sentiment"
)

// ----- mock LLM client -----

type mockSession struct {
	gollem.Session
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (m *mockSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return m.generateContentFn(ctx, input...)
}

type mockLLMClient struct {
	gollem.LLMClient
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
}

func (m *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return m.newSessionFn(ctx, options...)
}

func respondWith(text string) *mockLLMClient {
	return &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return &gollem.Response{Texts: []string{text}}, nil
				},
			}, nil
		},
	}
}

func testSnapshot(t *testing.T) *ontology.Snapshot {
	t.Helper()

	dims := []*ontology.Dimension{
		{
			ID: "innovation", Name: "Innovation", Description: "Novelty",
			Scale: map[int]string{1: "none", 2: "minor", 3: "moderate", 4: "significant", 5: "groundbreaking"},
		},
		{
			ID: "impact", Name: "Impact", Description: "Potential effect",
			Scale: map[int]string{1: "minimal", 2: "limited", 3: "moderate", 4: "significant", 5: "transformative"},
		},
	}
	domains := []*ontology.Domain{
		{
			ID: "technical", Name: "Technical", Description: "d",
			Keywords:           []string{"code"},
			RelevantDimensions: []types.DimensionID{"innovation", "impact"},
		},
	}
	levels := []*ontology.ExpertiseLevel{
		{ID: "any", Name: "Any", MinConfidence: 0, MaxConfidence: 100},
	}

	snap, err := ontology.NewSnapshot(1, domains, dims, levels)
	gt.NoError(t, err)
	return snap
}

func TestScoreParsesAllDimensions(t *testing.T) {
	snap := testSnapshot(t)
	llm := respondWith(`{"scores":[{"dimension_id":"innovation","score":4},{"dimension_id":"impact","score":2}]}`)

	analyzer, err := sentiment.New(llm)
	gt.NoError(t, err)

	scores, err := analyzer.Score(context.Background(), snap, "technical", "Novel idea, limited reach.")
	gt.NoError(t, err)
	gt.Value(t, scores[types.DimensionID("innovation")]).Equal(4.0)
	gt.Value(t, scores[types.DimensionID("impact")]).Equal(2.0)
}

func TestScoreDefaultsMissingDimensionToMidpoint(t *testing.T) {
	snap := testSnapshot(t)
	llm := respondWith(`{"scores":[{"dimension_id":"innovation","score":5}]}`)

	analyzer, err := sentiment.New(llm)
	gt.NoError(t, err)

	scores, err := analyzer.Score(context.Background(), snap, "technical", "Groundbreaking work.")
	gt.NoError(t, err)
	gt.Value(t, scores[types.DimensionID("innovation")]).Equal(5.0)
	gt.Value(t, scores[types.DimensionID("impact")]).Equal(3.0)
}

func TestScoreClampsOutOfRangeValues(t *testing.T) {
	snap := testSnapshot(t)
	llm := respondWith(`{"scores":[{"dimension_id":"innovation","score":9},{"dimension_id":"impact","score":0}]}`)

	analyzer, err := sentiment.New(llm)
	gt.NoError(t, err)

	scores, err := analyzer.Score(context.Background(), snap, "technical", "text")
	gt.NoError(t, err)
	gt.Value(t, scores[types.DimensionID("innovation")]).Equal(5.0)
	gt.Value(t, scores[types.DimensionID("impact")]).Equal(1.0)
}

func TestScoreBrokenJSON(t *testing.T) {
	snap := testSnapshot(t)
	llm := respondWith(`not json`)

	analyzer, err := sentiment.New(llm)
	gt.NoError(t, err)

	_, err = analyzer.Score(context.Background(), snap, "technical", "text")
	gt.Error(t, err)
}

func TestScoreUnknownDomain(t *testing.T) {
	snap := testSnapshot(t)
	analyzer, err := sentiment.New(respondWith(`{"scores":[]}`))
	gt.NoError(t, err)

	_, err = analyzer.Score(context.Background(), snap, "no-such-domain", "text")
	gt.Error(t, err)
}

func TestNewRequiresClient(t *testing.T) {
	_, err := sentiment.New(nil)
	gt.Error(t, err)
}

func TestResponseSchemaMarksRequiredProperties(t *testing.T) {
	schema := sentiment.BuildResponseSchema()

	scores := schema.Properties["scores"]
	gt.Value(t, scores).NotNil()
	gt.B(t, scores.Required).True()
	gt.Value(t, scores.Type).Equal(gollem.TypeArray)

	entry := scores.Items
	gt.Value(t, entry).NotNil()
	gt.B(t, entry.Properties["dimension_id"].Required).True()
	gt.B(t, entry.Properties["score"].Required).True()
}
