package profiler

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/model/ontology"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// Profile is the expertise and relevance verdict for one review against its
// assigned domain
type Profile struct {
	ExpertiseLevelID types.ExpertiseLevelID
	RelevanceScore   float64 // 0.0-1.0
}

// Profiler derives reviewer expertise and relevance. Pure function of the
// review text, the self-reported confidence and the domain's relevant
// dimension set; confidence range validation happens before this stage.
type Profiler struct{}

func New() *Profiler {
	return &Profiler{}
}

// Run looks up the expertise band for the confidence score and measures how
// much of the domain's relevant dimension set the review text actually covers.
// Covering every relevant dimension scores 1.0, covering none scores 0.0.
func (p *Profiler) Run(snapshot *ontology.Snapshot, text string, confidence int, domainID types.DomainID) (*Profile, error) {
	level, err := snapshot.LevelFor(confidence)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve expertise level",
			goerr.V("confidence", confidence),
		)
	}

	dims, err := snapshot.RelevantDimensions(domainID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve relevant dimensions",
			goerr.V("domainID", domainID),
		)
	}

	var covered int
	tokens := tokenSet(text)
	for _, dim := range dims {
		if coversDimension(tokens, dim) {
			covered++
		}
	}

	relevance := 0.0
	if len(dims) > 0 {
		relevance = float64(covered) / float64(len(dims))
	}

	return &Profile{
		ExpertiseLevelID: level.ID,
		RelevanceScore:   relevance,
	}, nil
}

var wordPattern = regexp.MustCompile(`[a-z0-9][a-z0-9_-]*`)

// stopwords excluded from dimension description matching. Short function words
// would otherwise make every text "cover" every dimension.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "this": true,
	"that": true, "how": true, "its": true, "are": true, "was": true,
	"has": true, "have": true, "not": true, "but": true, "can": true,
	"very": true, "much": true, "does": true, "will": true, "would": true,
	"project": true, "solution": true, "approach": true, "potential": true,
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(tok) >= 3 && !stopwords[tok] {
			set[tok] = true
		}
	}
	return set
}

// coversDimension reports whether the text touches the dimension's vocabulary:
// any token of the dimension's name or ID, or at least two distinct content
// terms from its description.
func coversDimension(tokens map[string]bool, dim *ontology.Dimension) bool {
	for nameTok := range tokenSet(dim.Name + " " + strings.ReplaceAll(string(dim.ID), "_", " ")) {
		if tokens[nameTok] {
			return true
		}
	}

	var hits int
	for descTok := range tokenSet(dim.Description) {
		if tokens[descTok] {
			hits++
			if hits >= 2 {
				return true
			}
		}
	}
	return false
}
