package generator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/panoptes-lab/panoptes/pkg/domain/model/ontology"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// ParseKind tags how much of the generated reply could be extracted
type ParseKind int

const (
	// Unparseable means no usable structure was found in the reply
	Unparseable ParseKind = iota
	// PartiallyParsed means a body was recovered but the confidence, some
	// expected dimension scores or the explicit review marker were missing
	PartiallyParsed
	// Parsed means the confidence, every expected dimension score and the
	// marked review body were all found
	Parsed
)

// ParseResult is the structured extraction of a generated review reply
type ParseResult struct {
	Kind          ParseKind
	Body          string
	Confidence    int
	HasConfidence bool
	Scores        map[types.DimensionID]float64
	Missing       []types.DimensionID // expected dimensions absent from the reply
}

var (
	confidencePattern = regexp.MustCompile(`(?mi)^\s*CONFIDENCE\s*[:=]\s*(\d{1,3})\s*$`)
	scorePattern      = regexp.MustCompile(`(?mi)^\s*SCORE\s+([a-z0-9_-]+)\s*[:=]\s*([1-5])\s*$`)
	reviewPattern     = regexp.MustCompile(`(?mis)^\s*REVIEW\s*:\s*$(.*)`)
)

// ParseReply extracts confidence, per-dimension scores and the review body
// from the model's reply. It never fails past this function: a reply with
// missing pieces yields PartiallyParsed, a reply with nothing usable yields
// Unparseable, and the caller decides what to do with either.
func ParseReply(reply string, expected []*ontology.Dimension) *ParseResult {
	result := &ParseResult{
		Scores: make(map[types.DimensionID]float64, len(expected)),
	}

	if m := confidencePattern.FindStringSubmatch(reply); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v >= ontology.ConfidenceMin && v <= ontology.ConfidenceMax {
			result.Confidence = v
			result.HasConfidence = true
		}
	}

	found := make(map[types.DimensionID]bool, len(expected))
	for _, m := range scorePattern.FindAllStringSubmatch(reply, -1) {
		id := types.DimensionID(strings.ToLower(m[1]))
		score, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		result.Scores[id] = ontology.ClampScore(float64(score))
		found[id] = true
	}

	var fromMarker bool
	if m := reviewPattern.FindStringSubmatch(reply); m != nil {
		result.Body = strings.TrimSpace(m[1])
		fromMarker = result.Body != ""
	}
	if result.Body == "" {
		// No REVIEW marker; fall back to the reply stripped of structure lines
		result.Body = strings.TrimSpace(stripStructureLines(reply))
	}

	for _, dim := range expected {
		if !found[dim.ID] {
			result.Missing = append(result.Missing, dim.ID)
		}
	}

	switch {
	case result.Body == "" && len(result.Scores) == 0:
		result.Kind = Unparseable
	case result.HasConfidence && len(result.Missing) == 0 && fromMarker:
		result.Kind = Parsed
	default:
		result.Kind = PartiallyParsed
	}
	return result
}

func stripStructureLines(reply string) string {
	var kept []string
	for _, line := range strings.Split(reply, "\n") {
		if confidencePattern.MatchString(line) || scorePattern.MatchString(line) {
			continue
		}
		if trimmed := strings.TrimSpace(line); strings.EqualFold(trimmed, "REVIEW:") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
