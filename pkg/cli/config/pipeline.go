package config

import (
	"time"

	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	"github.com/panoptes-lab/panoptes/pkg/service/aggregator"
	"github.com/panoptes-lab/panoptes/pkg/service/classifier"
	"github.com/panoptes-lab/panoptes/pkg/service/filter"
	"github.com/panoptes-lab/panoptes/pkg/service/generator"
	"github.com/panoptes-lab/panoptes/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Pipeline holds the tunable thresholds of the processing pipeline. All
// defaults match the service-level documented defaults.
type Pipeline struct {
	minSimilarity     float64
	relevanceFloor    float64
	confidenceFloor   int
	syntheticDiscount float64
	coreDomains       []string

	maxConcurrentGenerations int
	generationRetries        int
	generationBackoff        time.Duration
	generationTimeout        time.Duration
}

// Flags returns CLI flags for pipeline tuning
func (p *Pipeline) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.FloatFlag{
			Name:        "min-similarity",
			Usage:       "Minimum classification similarity before a review is rejected",
			Value:       classifier.DefaultMinSimilarity,
			Sources:     cli.EnvVars("PANOPTES_MIN_SIMILARITY"),
			Destination: &p.minSimilarity,
		},
		&cli.FloatFlag{
			Name:        "relevance-floor",
			Usage:       "Minimum relevance score for review acceptance",
			Value:       filter.DefaultRelevanceFloor,
			Sources:     cli.EnvVars("PANOPTES_RELEVANCE_FLOOR"),
			Destination: &p.relevanceFloor,
		},
		&cli.IntFlag{
			Name:        "confidence-floor",
			Usage:       "Minimum self-reported confidence for review acceptance",
			Value:       filter.DefaultConfidenceFloor,
			Sources:     cli.EnvVars("PANOPTES_CONFIDENCE_FLOOR"),
			Destination: &p.confidenceFloor,
		},
		&cli.FloatFlag{
			Name:        "synthetic-discount",
			Usage:       "Aggregation weight multiplier for synthetic reviews (0-1)",
			Value:       aggregator.DefaultSyntheticDiscount,
			Sources:     cli.EnvVars("PANOPTES_SYNTHETIC_DISCOUNT"),
			Destination: &p.syntheticDiscount,
		},
		&cli.StringSliceFlag{
			Name:        "core-domains",
			Usage:       "Core domain IDs requiring coverage (all ontology domains when empty)",
			Sources:     cli.EnvVars("PANOPTES_CORE_DOMAINS"),
			Destination: &p.coreDomains,
		},
		&cli.IntFlag{
			Name:        "max-concurrent-generations",
			Usage:       "Upper bound on parallel LLM calls per processing run",
			Value:       usecase.DefaultMaxConcurrentGenerations,
			Sources:     cli.EnvVars("PANOPTES_MAX_CONCURRENT_GENERATIONS"),
			Destination: &p.maxConcurrentGenerations,
		},
		&cli.IntFlag{
			Name:        "generation-retries",
			Usage:       "Retries per synthetic generation before giving up",
			Value:       generator.DefaultMaxRetries,
			Sources:     cli.EnvVars("PANOPTES_GENERATION_RETRIES"),
			Destination: &p.generationRetries,
		},
		&cli.DurationFlag{
			Name:        "generation-backoff",
			Usage:       "Initial backoff between generation retries",
			Value:       generator.DefaultRetryBackoff,
			Sources:     cli.EnvVars("PANOPTES_GENERATION_BACKOFF"),
			Destination: &p.generationBackoff,
		},
		&cli.DurationFlag{
			Name:        "generation-timeout",
			Usage:       "Timeout per generation attempt",
			Value:       generator.DefaultAttemptTimeout,
			Sources:     cli.EnvVars("PANOPTES_GENERATION_TIMEOUT"),
			Destination: &p.generationTimeout,
		},
	}
}

// Options converts the flags into use case options
func (p *Pipeline) Options() []usecase.Option {
	opts := []usecase.Option{
		usecase.WithClassifierConfig(classifier.Config{MinSimilarity: p.minSimilarity}),
		usecase.WithFilterConfig(filter.Config{}.
			WithRelevanceFloor(p.relevanceFloor).
			WithConfidenceFloor(p.confidenceFloor)),
		usecase.WithGeneratorConfig(generator.Config{
			MaxRetries:     p.generationRetries,
			RetryBackoff:   p.generationBackoff,
			AttemptTimeout: p.generationTimeout,
		}),
		usecase.WithAggregatorConfig(aggregator.Config{SyntheticDiscount: p.syntheticDiscount}),
		usecase.WithMaxConcurrentGenerations(p.maxConcurrentGenerations),
	}

	if len(p.coreDomains) > 0 {
		domains := make([]types.DomainID, 0, len(p.coreDomains))
		for _, id := range p.coreDomains {
			domains = append(domains, types.DomainID(id))
		}
		opts = append(opts, usecase.WithCoreDomains(domains))
	}

	return opts
}
