package usecase

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/panoptes-lab/panoptes/pkg/domain/interfaces"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	ontologystore "github.com/panoptes-lab/panoptes/pkg/ontology"
	"github.com/panoptes-lab/panoptes/pkg/service/aggregator"
	"github.com/panoptes-lab/panoptes/pkg/service/classifier"
	"github.com/panoptes-lab/panoptes/pkg/service/filter"
	"github.com/panoptes-lab/panoptes/pkg/service/generator"
	"github.com/panoptes-lab/panoptes/pkg/service/profiler"
	"github.com/panoptes-lab/panoptes/pkg/service/sentiment"
	"github.com/panoptes-lab/panoptes/pkg/service/synthesizer"
)

const (
	// DefaultMaxConcurrentGenerations bounds parallel LLM calls per run
	DefaultMaxConcurrentGenerations = 3

	// DefaultProjectRelevanceFloor skips synthetic generation for gap domains
	// the project text has nothing to say about
	DefaultProjectRelevanceFloor = 0.2
)

// UseCases wires the repositories, the ontology registry and the pipeline
// services together. The LLM client is optional; without it sentiment scoring
// and synthetic generation are skipped and recorded as job errors.
type UseCases struct {
	repo      interfaces.Repository
	registry  *ontologystore.Registry
	llmClient gollem.LLMClient

	classifier  *classifier.Classifier
	profiler    *profiler.Profiler
	filter      *filter.Filter
	sentiment   *sentiment.Analyzer
	generator   *generator.Generator
	aggregator  *aggregator.Aggregator
	synthesizer *synthesizer.Synthesizer

	classifierCfg  classifier.Config
	filterCfg      filter.Config
	generatorCfg   generator.Config
	aggregatorCfg  aggregator.Config
	synthesizerCfg synthesizer.Config

	coreDomains              []types.DomainID
	maxConcurrentGenerations int
	projectRelevanceFloor    float64
}

type Option func(*UseCases)

// WithLLMClient enables sentiment scoring and synthetic review generation
func WithLLMClient(client gollem.LLMClient) Option {
	return func(uc *UseCases) {
		uc.llmClient = client
	}
}

func WithClassifierConfig(cfg classifier.Config) Option {
	return func(uc *UseCases) {
		uc.classifierCfg = cfg
	}
}

func WithFilterConfig(cfg filter.Config) Option {
	return func(uc *UseCases) {
		uc.filterCfg = cfg
	}
}

func WithGeneratorConfig(cfg generator.Config) Option {
	return func(uc *UseCases) {
		uc.generatorCfg = cfg
	}
}

func WithAggregatorConfig(cfg aggregator.Config) Option {
	return func(uc *UseCases) {
		uc.aggregatorCfg = cfg
	}
}

func WithSynthesizerConfig(cfg synthesizer.Config) Option {
	return func(uc *UseCases) {
		uc.synthesizerCfg = cfg
	}
}

// WithCoreDomains overrides the mandatory perspective set used for gap
// detection. Default: every domain in the ontology snapshot.
func WithCoreDomains(domains []types.DomainID) Option {
	return func(uc *UseCases) {
		uc.coreDomains = domains
	}
}

func WithMaxConcurrentGenerations(n int) Option {
	return func(uc *UseCases) {
		uc.maxConcurrentGenerations = n
	}
}

func New(repo interfaces.Repository, registry *ontologystore.Registry, opts ...Option) (*UseCases, error) {
	if repo == nil {
		return nil, goerr.New("repository is required")
	}
	if registry == nil {
		return nil, goerr.New("ontology registry is required")
	}

	uc := &UseCases{
		repo:                     repo,
		registry:                 registry,
		maxConcurrentGenerations: DefaultMaxConcurrentGenerations,
		projectRelevanceFloor:    DefaultProjectRelevanceFloor,
	}
	for _, opt := range opts {
		opt(uc)
	}

	uc.classifier = classifier.New(uc.classifierCfg)
	uc.profiler = profiler.New()
	uc.filter = filter.New(uc.filterCfg)
	uc.aggregator = aggregator.New(uc.aggregatorCfg)
	uc.synthesizer = synthesizer.New(uc.synthesizerCfg)

	if uc.llmClient != nil {
		analyzer, err := sentiment.New(uc.llmClient)
		if err != nil {
			return nil, err
		}
		uc.sentiment = analyzer

		gen, err := generator.New(uc.llmClient, uc.generatorCfg)
		if err != nil {
			return nil, err
		}
		uc.generator = gen
	}

	return uc, nil
}
