package generator

import (
	"context"
	_ "embed"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/model/ontology"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	"github.com/panoptes-lab/panoptes/pkg/utils/logging"
)

// ErrGenerationFailed is returned when generation for one domain gave up after
// all retries. Recoverable per domain: the caller records it and the domain
// stays a coverage gap.
var ErrGenerationFailed = goerr.New("synthetic review generation failed")

//go:embed prompt/review.md
var reviewPromptTemplate string

const (
	DefaultMaxRetries     = 2
	DefaultRetryBackoff   = 2 * time.Second
	DefaultAttemptTimeout = 60 * time.Second

	// defaultConfidence stands in when the reply omits its CONFIDENCE line
	defaultConfidence = 50
)

type Config struct {
	// MaxRetries is the number of retries after the first failed attempt
	MaxRetries int

	// RetryBackoff is the base wait between attempts, doubled per retry
	RetryBackoff time.Duration

	// AttemptTimeout bounds a single generation call
	AttemptTimeout time.Duration
}

func (c Config) maxRetries() int {
	if c.MaxRetries > 0 {
		return c.MaxRetries
	}
	return DefaultMaxRetries
}

func (c Config) retryBackoff() time.Duration {
	if c.RetryBackoff > 0 {
		return c.RetryBackoff
	}
	return DefaultRetryBackoff
}

func (c Config) attemptTimeout() time.Duration {
	if c.AttemptTimeout > 0 {
		return c.AttemptTimeout
	}
	return DefaultAttemptTimeout
}

// Output is one generated review plus the dimension scores parsed out of the
// reply. The review still goes through classification and acceptance like any
// human review; the scores become its sentiment annotation if it is accepted.
type Output struct {
	Review *model.Review
	Scores map[types.DimensionID]float64
}

// Generator produces synthetic reviews for uncovered domains. Prompts are
// built from the ontology snapshot (domain description, keywords, dimension
// scales), not hardcoded per domain.
type Generator struct {
	llmClient gollem.LLMClient
	cfg       Config
	tmpl      *template.Template
}

func New(llmClient gollem.LLMClient, cfg Config) (*Generator, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	tmpl, err := template.New("review").Parse(reviewPromptTemplate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse review prompt template")
	}

	return &Generator{
		llmClient: llmClient,
		cfg:       cfg,
		tmpl:      tmpl,
	}, nil
}

type promptData struct {
	DomainName         string
	DomainDescription  string
	Keywords           string
	ProjectName        string
	ProjectDescription string
	WorkDone           string
	Dimensions         []*ontology.Dimension
}

func (g *Generator) buildPrompt(project *model.Project, dom *ontology.Domain, dims []*ontology.Dimension) (string, error) {
	var sb strings.Builder
	err := g.tmpl.Execute(&sb, promptData{
		DomainName:         dom.Name,
		DomainDescription:  dom.Description,
		Keywords:           strings.Join(dom.Keywords, ", "),
		ProjectName:        project.Name,
		ProjectDescription: project.Description,
		WorkDone:           project.WorkDone,
		Dimensions:         dims,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to build review prompt", goerr.V("domainID", dom.ID))
	}
	return sb.String(), nil
}

// Generate produces one synthetic review for the domain, retrying transient
// failures with backoff. An unparseable reply counts as a failed attempt.
func (g *Generator) Generate(ctx context.Context, project *model.Project, snapshot *ontology.Snapshot, domainID types.DomainID) (*Output, error) {
	dom, err := snapshot.Domain(domainID)
	if err != nil {
		return nil, goerr.Wrap(err, "unknown domain for generation", goerr.V("domainID", domainID))
	}
	dims, err := snapshot.RelevantDimensions(domainID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve relevant dimensions", goerr.V("domainID", domainID))
	}

	prompt, err := g.buildPrompt(project, dom, dims)
	if err != nil {
		return nil, err
	}

	logger := logging.From(ctx)
	var lastErr error
	attempts := g.cfg.maxRetries() + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := g.cfg.retryBackoff() << (attempt - 1)
			logger.Warn("retrying synthetic review generation",
				"domainID", domainID,
				"attempt", attempt+1,
				"backoff", backoff,
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, goerr.Wrap(ErrGenerationFailed, "generation cancelled",
					goerr.V("domainID", domainID))
			}
		}

		output, err := g.attempt(ctx, prompt, dom, dims)
		if err != nil {
			lastErr = err
			continue
		}
		return output, nil
	}

	return nil, goerr.Wrap(ErrGenerationFailed, "all generation attempts failed",
		goerr.V("domainID", domainID),
		goerr.V("attempts", attempts),
		goerr.V("cause", lastErr),
	)
}

func (g *Generator) attempt(ctx context.Context, prompt string, dom *ontology.Domain, dims []*ontology.Dimension) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.attemptTimeout())
	defer cancel()

	session, err := g.llmClient.NewSession(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return nil, goerr.Wrap(err, "generation call failed", goerr.V("domainID", dom.ID))
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("empty generation reply", goerr.V("domainID", dom.ID))
	}

	parsed := ParseReply(resp.Texts[0], dims)
	if parsed.Kind == Unparseable {
		return nil, goerr.New("unparseable generation reply",
			goerr.V("domainID", dom.ID),
			goerr.V("reply", resp.Texts[0]),
		)
	}

	scores := make(map[types.DimensionID]float64, len(dims))
	for id, score := range parsed.Scores {
		scores[id] = score
	}
	for _, id := range parsed.Missing {
		scores[id] = float64(ontology.ScaleMidpoint)
	}

	confidence := parsed.Confidence
	if !parsed.HasConfidence {
		confidence = defaultConfidence
	}

	if parsed.Kind == PartiallyParsed {
		logging.From(ctx).Warn("generation reply partially parsed",
			"domainID", dom.ID,
			"missing", parsed.Missing,
			"hasConfidence", parsed.HasConfidence,
		)
	}

	review := &model.Review{
		ReviewerName:    "Synthetic " + dom.Name + " Perspective",
		Text:            parsed.Body,
		ConfidenceScore: confidence,
		IsArtificial:    true,
	}
	return &Output{Review: review, Scores: scores}, nil
}
