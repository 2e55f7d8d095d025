package model

import (
	"time"

	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// DomainInsight summarizes the accepted reviews of one domain
type DomainInsight struct {
	DomainID       types.DomainID
	DomainName     string
	ReviewCount    int // human reviews
	SyntheticCount int
	KeyStrengths   []string // dimension names scored >= 4.0 by this domain
	Concerns       []string // dimension names scored <= 2.5 by this domain
	AverageScore   float64
}

// FeedbackReport is the final aggregated multi-perspective feedback for a
// project. A new report supersedes any previous one; reports are never merged.
type FeedbackReport struct {
	ID                  types.ReportID
	ProjectID           types.ProjectID
	DimensionScores     map[types.DimensionID]float64 // 1.0-5.0, only covered dimensions
	UncoveredDimensions []types.DimensionID
	UncoveredDomains    []types.DomainID // core domains left without any accepted review
	OverallScore        float64          // unweighted mean of covered dimensions, 1 decimal
	Narrative           string
	Insights            []DomainInsight
	Recommendations     []string
	GeneratedAt         time.Time
}
