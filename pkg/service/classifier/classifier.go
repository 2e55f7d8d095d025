package classifier

import (
	"math"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/model/ontology"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// ErrLowConfidence is returned when no domain matches the text above the
// similarity floor. Callers fall back to rejection, never to a guess.
var ErrLowConfidence = goerr.New("classification confidence below floor")

// DefaultMinSimilarity is the default floor for cosine similarity between the
// review text and the winning domain's keyword bag. Tunable, not load-bearing.
const DefaultMinSimilarity = 0.05

type Config struct {
	// MinSimilarity rejects classifications whose best score falls below it
	MinSimilarity float64
}

func (c Config) minSimilarity() float64 {
	if c.MinSimilarity > 0 {
		return c.MinSimilarity
	}
	return DefaultMinSimilarity
}

// Result is the outcome of a successful classification
type Result struct {
	DomainID   types.DomainID
	Confidence float64 // 0.0-1.0
	Subdomain  string  // best matching subdomain ID, empty if none matched
}

// Classifier assigns review text to ontology domains. It is a pure function of
// the text and the ontology snapshot; no state is kept between calls.
type Classifier struct {
	cfg Config
}

func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

var tokenPattern = regexp.MustCompile(`[a-z0-9][a-z0-9/_-]*`)

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// termCounts builds the term-frequency vector of the text. Multi-word keyword
// phrases are counted by substring occurrence against the normalized text.
type termCounts struct {
	normalized string
	tokens     map[string]int
	norm       float64
}

func newTermCounts(text string) *termCounts {
	tokens := tokenize(text)
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	var sumSq float64
	for _, n := range counts {
		sumSq += float64(n) * float64(n)
	}

	return &termCounts{
		normalized: strings.ToLower(text),
		tokens:     counts,
		norm:       math.Sqrt(sumSq),
	}
}

func (tc *termCounts) count(keyword string) int {
	if strings.ContainsRune(keyword, ' ') {
		return strings.Count(tc.normalized, keyword)
	}
	return tc.tokens[keyword]
}

// Classify matches the text against every domain's keyword bag (including
// subdomain bags) using TF cosine similarity with inverse domain-frequency
// keyword weights: a keyword shared by many domains carries less signal than
// one unique to a single domain. Ties are broken by the stronger subdomain
// match, then by lexical domain ID order.
func (c *Classifier) Classify(snapshot *ontology.Snapshot, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, goerr.Wrap(ErrLowConfidence, "empty review text")
	}

	tc := newTermCounts(text)
	if tc.norm == 0 {
		return nil, goerr.Wrap(ErrLowConfidence, "no matchable terms in text")
	}

	domains := snapshot.Domains()
	idf := keywordWeights(domains)

	var best *Result
	var bestSubCount int
	for _, dom := range domains {
		score, subID, subCount := c.scoreDomain(tc, dom, idf)
		if best == nil ||
			score > best.Confidence ||
			(score == best.Confidence && subCount > bestSubCount) ||
			(score == best.Confidence && subCount == bestSubCount && dom.ID < best.DomainID) {
			best = &Result{DomainID: dom.ID, Confidence: score, Subdomain: subID}
			bestSubCount = subCount
		}
	}

	if best == nil || best.Confidence < c.cfg.minSimilarity() {
		return nil, goerr.Wrap(ErrLowConfidence, "no domain matched text",
			goerr.V("best_score", bestScore(best)),
			goerr.V("floor", c.cfg.minSimilarity()),
		)
	}
	return best, nil
}

func bestScore(r *Result) float64 {
	if r == nil {
		return 0
	}
	return r.Confidence
}

// keywordWeights computes 1/df per keyword, where df is the number of domains
// whose bag (own or subdomain) contains the keyword
func keywordWeights(domains []*ontology.Domain) map[string]float64 {
	df := make(map[string]int)
	for _, dom := range domains {
		seen := make(map[string]bool)
		for _, kw := range domainKeywords(dom) {
			if !seen[kw] {
				seen[kw] = true
				df[kw]++
			}
		}
	}

	weights := make(map[string]float64, len(df))
	for kw, n := range df {
		weights[kw] = 1.0 / float64(n)
	}
	return weights
}

func domainKeywords(dom *ontology.Domain) []string {
	keywords := make([]string, 0, len(dom.Keywords))
	keywords = append(keywords, dom.Keywords...)
	for _, sub := range dom.Subdomains {
		keywords = append(keywords, sub.Keywords...)
	}
	return keywords
}

func (c *Classifier) scoreDomain(tc *termCounts, dom *ontology.Domain, idf map[string]float64) (float64, string, int) {
	var dot, wSumSq float64
	addKeyword := func(kw string) int {
		w := idf[kw]
		wSumSq += w * w
		n := tc.count(kw)
		dot += float64(n) * w
		return n
	}

	for _, kw := range dom.Keywords {
		addKeyword(kw)
	}

	var bestSubID string
	var bestSubCount int
	for _, sub := range dom.Subdomains {
		var subCount int
		for _, kw := range sub.Keywords {
			subCount += addKeyword(kw)
		}
		if subCount > bestSubCount {
			bestSubCount = subCount
			bestSubID = sub.ID
		}
	}

	if dot == 0 || wSumSq == 0 {
		return 0, "", 0
	}

	sim := dot / (tc.norm * math.Sqrt(wSumSq))
	if sim > 1.0 {
		sim = 1.0
	}
	return sim, bestSubID, bestSubCount
}
