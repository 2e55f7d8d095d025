package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/panoptes-lab/panoptes/pkg/domain/model/ontology"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	"github.com/panoptes-lab/panoptes/pkg/utils/logging"
)

// Analyzer scores a human review's stance on each of its domain's relevant
// dimensions using the generative-text capability with a JSON response schema.
type Analyzer struct {
	llmClient gollem.LLMClient
}

func New(llmClient gollem.LLMClient) (*Analyzer, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &Analyzer{llmClient: llmClient}, nil
}

type llmResponse struct {
	Scores []dimensionScore `json:"scores"`
}

type dimensionScore struct {
	DimensionID string `json:"dimension_id"`
	Score       int    `json:"score"`
}

// Score extracts one 1-5 score per relevant dimension from the review text.
// A dimension the model leaves out defaults to the scale midpoint, logged as a
// partial-parse warning rather than failing the review.
func (a *Analyzer) Score(ctx context.Context, snapshot *ontology.Snapshot, domainID types.DomainID, reviewText string) (map[types.DimensionID]float64, error) {
	dims, err := snapshot.RelevantDimensions(domainID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve relevant dimensions", goerr.V("domainID", domainID))
	}
	if len(dims) == 0 {
		return map[types.DimensionID]float64{}, nil
	}

	session, err := a.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(buildResponseSchema()),
		gollem.WithSessionSystemPrompt(buildSystemPrompt()),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildUserPrompt(dims, reviewText)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate sentiment scores")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("empty LLM response")
	}

	var parsed llmResponse
	if err := json.Unmarshal([]byte(resp.Texts[0]), &parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse sentiment response", goerr.V("response", resp.Texts[0]))
	}

	byID := make(map[types.DimensionID]float64, len(parsed.Scores))
	for _, s := range parsed.Scores {
		byID[types.DimensionID(s.DimensionID)] = ontology.ClampScore(float64(s.Score))
	}

	scores := make(map[types.DimensionID]float64, len(dims))
	var missing []types.DimensionID
	for _, dim := range dims {
		if v, ok := byID[dim.ID]; ok {
			scores[dim.ID] = v
			continue
		}
		scores[dim.ID] = float64(ontology.ScaleMidpoint)
		missing = append(missing, dim.ID)
	}

	if len(missing) > 0 {
		logging.From(ctx).Warn("sentiment response missing dimensions, defaulting to midpoint",
			"domainID", domainID,
			"missing", missing,
		)
	}

	return scores, nil
}

func buildSystemPrompt() string {
	var sb strings.Builder
	sb.WriteString("You are a review analysis assistant. Given a peer review of a hackathon project, ")
	sb.WriteString("rate the reviewer's stance on each listed evaluation dimension.\n\n")
	sb.WriteString("## Instructions:\n\n")
	sb.WriteString("1. Read the review text carefully.\n")
	sb.WriteString("2. For each dimension, output a score from 1 (very negative) to 5 (very positive) ")
	sb.WriteString("reflecting what the reviewer expressed about that dimension.\n")
	sb.WriteString("3. Use 3 when the review says nothing clear about a dimension.\n")
	sb.WriteString("4. Output one entry per dimension, using the exact dimension_id given.\n")
	return sb.String()
}

func buildUserPrompt(dims []*ontology.Dimension, reviewText string) string {
	var sb strings.Builder

	sb.WriteString("## Dimensions to score:\n\n")
	for _, dim := range dims {
		fmt.Fprintf(&sb, "### %s (dimension_id: %s)\n", dim.Name, dim.ID)
		fmt.Fprintf(&sb, "%s\n", dim.Description)
		fmt.Fprintf(&sb, "Scale: 1 = %s ... 5 = %s\n\n", dim.Scale[ontology.ScaleMin], dim.Scale[ontology.ScaleMax])
	}

	sb.WriteString("## Review text:\n\n")
	sb.WriteString(reviewText)
	sb.WriteString("\n")

	return sb.String()
}

func buildResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "SentimentScores",
		Description: "Per-dimension sentiment scores extracted from a review",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"scores": {
				Type:        gollem.TypeArray,
				Description: "One entry per evaluation dimension",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"dimension_id": {
							Type:        gollem.TypeString,
							Description: "The ID of the dimension being scored",
							Required:    true,
						},
						"score": {
							Type:        gollem.TypeInteger,
							Description: "Score from 1 to 5",
							Required:    true,
						},
					},
				},
			},
		},
	}
}
