package synthesizer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/model/ontology"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	"github.com/panoptes-lab/panoptes/pkg/service/aggregator"
)

// Thresholds for labeling dimensions in domain insights and ranking
// recommendations. Tunable via Config.
const (
	DefaultStrengthThreshold = 4.0
	DefaultConcernThreshold  = 2.5
	DefaultRecommendFloor    = 3.0

	maxStrengthsPerDomain = 3
	maxConcernsPerDomain  = 2
)

type Config struct {
	// StrengthThreshold marks a dimension a key strength at or above it
	StrengthThreshold float64

	// ConcernThreshold marks a dimension a concern at or below it
	ConcernThreshold float64

	// RecommendFloor triggers a domain-specific recommendation when the
	// domain's dimensions average below it
	RecommendFloor float64
}

func (c Config) strengthThreshold() float64 {
	if c.StrengthThreshold > 0 {
		return c.StrengthThreshold
	}
	return DefaultStrengthThreshold
}

func (c Config) concernThreshold() float64 {
	if c.ConcernThreshold > 0 {
		return c.ConcernThreshold
	}
	return DefaultConcernThreshold
}

func (c Config) recommendFloor() float64 {
	if c.RecommendFloor > 0 {
		return c.RecommendFloor
	}
	return DefaultRecommendFloor
}

// generalRecommendations pad the list after domain-specific ones. Filler only;
// never ranked above a scored recommendation.
var generalRecommendations = []string{
	"Validate the solution with end users before scaling beyond the pilot.",
	"Document data handling and review regulatory requirements for the target setting.",
	"Define measurable success criteria for the next development phase.",
}

// Synthesizer turns aggregated scores and accepted reviews into the final
// feedback report. Every claim in the narrative traces back to a score or a
// domain summary; nothing is invented independently of the data.
type Synthesizer struct {
	cfg Config
}

func New(cfg Config) *Synthesizer {
	return &Synthesizer{cfg: cfg}
}

// Input bundles what one run produced for the report
type Input struct {
	Project          *model.Project
	Snapshot         *ontology.Snapshot
	Accepted         []*model.Review
	Aggregated       *aggregator.Result
	UncoveredDomains []types.DomainID // core domains with no accepted review
}

// Synthesize builds the feedback report: per-domain insights, ranked
// recommendations and the narrative.
func (s *Synthesizer) Synthesize(in Input) *model.FeedbackReport {
	insights := s.buildInsights(in)
	recommendations := s.buildRecommendations(in, insights)

	report := &model.FeedbackReport{
		ID:                  types.NewReportID(),
		ProjectID:           in.Project.ID,
		DimensionScores:     in.Aggregated.DimensionScores,
		UncoveredDimensions: in.Aggregated.UncoveredDimensions,
		UncoveredDomains:    in.UncoveredDomains,
		OverallScore:        in.Aggregated.OverallScore,
		Insights:            insights,
		Recommendations:     recommendations,
		GeneratedAt:         time.Now().UTC(),
	}
	report.Narrative = s.buildNarrative(in, report)
	return report
}

// domainStats accumulates the accepted reviews of one domain
type domainStats struct {
	id         types.DomainID
	human      int
	synthetic  int
	dimSums    map[types.DimensionID]float64
	dimCounts  map[types.DimensionID]int
	scoreSum   float64
	scoreCount int
}

func (s *Synthesizer) buildInsights(in Input) []model.DomainInsight {
	byDomain := make(map[types.DomainID]*domainStats)
	for _, rv := range in.Accepted {
		if rv.Annotation == nil || rv.Annotation.Status != types.ReviewStatusAccepted {
			continue
		}
		st, ok := byDomain[rv.Annotation.DomainID]
		if !ok {
			st = &domainStats{
				id:        rv.Annotation.DomainID,
				dimSums:   make(map[types.DimensionID]float64),
				dimCounts: make(map[types.DimensionID]int),
			}
			byDomain[rv.Annotation.DomainID] = st
		}
		if rv.IsArtificial {
			st.synthetic++
		} else {
			st.human++
		}
		for dimID, score := range rv.Annotation.SentimentScores {
			st.dimSums[dimID] += score
			st.dimCounts[dimID]++
			st.scoreSum += score
			st.scoreCount++
		}
	}

	ids := make([]types.DomainID, 0, len(byDomain))
	for id := range byDomain {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	insights := make([]model.DomainInsight, 0, len(ids))
	for _, id := range ids {
		st := byDomain[id]
		insights = append(insights, s.buildInsight(in.Snapshot, st))
	}
	return insights
}

func (s *Synthesizer) buildInsight(snapshot *ontology.Snapshot, st *domainStats) model.DomainInsight {
	insight := model.DomainInsight{
		DomainID:       st.id,
		ReviewCount:    st.human,
		SyntheticCount: st.synthetic,
	}
	if dom, err := snapshot.Domain(st.id); err == nil {
		insight.DomainName = dom.Name
	} else {
		insight.DomainName = string(st.id)
	}
	if st.scoreCount > 0 {
		insight.AverageScore = st.scoreSum / float64(st.scoreCount)
	}

	// Deterministic label order: strongest first for strengths, weakest first
	// for concerns, dimension ID as tiebreak
	type dimAvg struct {
		id  types.DimensionID
		avg float64
	}
	avgs := make([]dimAvg, 0, len(st.dimSums))
	for dimID, sum := range st.dimSums {
		avgs = append(avgs, dimAvg{id: dimID, avg: sum / float64(st.dimCounts[dimID])})
	}

	sort.Slice(avgs, func(i, j int) bool {
		if avgs[i].avg != avgs[j].avg {
			return avgs[i].avg > avgs[j].avg
		}
		return avgs[i].id < avgs[j].id
	})
	for _, da := range avgs {
		if da.avg >= s.cfg.strengthThreshold() && len(insight.KeyStrengths) < maxStrengthsPerDomain {
			insight.KeyStrengths = append(insight.KeyStrengths, dimensionName(snapshot, da.id))
		}
	}

	sort.Slice(avgs, func(i, j int) bool {
		if avgs[i].avg != avgs[j].avg {
			return avgs[i].avg < avgs[j].avg
		}
		return avgs[i].id < avgs[j].id
	})
	for _, da := range avgs {
		if da.avg <= s.cfg.concernThreshold() && len(insight.Concerns) < maxConcernsPerDomain {
			insight.Concerns = append(insight.Concerns, dimensionName(snapshot, da.id))
		}
	}

	return insight
}

func dimensionName(snapshot *ontology.Snapshot, id types.DimensionID) string {
	if dim, err := snapshot.Dimension(id); err == nil {
		return dim.Name
	}
	return string(id)
}

func (s *Synthesizer) buildRecommendations(in Input, insights []model.DomainInsight) []string {
	// Domain-specific recommendations first, weakest domain first
	ranked := make([]model.DomainInsight, 0, len(insights))
	for _, ins := range insights {
		if ins.AverageScore > 0 && ins.AverageScore < s.cfg.recommendFloor() {
			ranked = append(ranked, ins)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].AverageScore != ranked[j].AverageScore {
			return ranked[i].AverageScore < ranked[j].AverageScore
		}
		return ranked[i].DomainID < ranked[j].DomainID
	})

	var recs []string
	for _, ins := range ranked {
		rec := fmt.Sprintf("Address the %s perspective (averaged %.1f/5", ins.DomainName, ins.AverageScore)
		if len(ins.Concerns) > 0 {
			rec += fmt.Sprintf("; weakest: %s", strings.Join(ins.Concerns, ", "))
		}
		rec += ")."
		recs = append(recs, rec)
	}

	for _, dom := range in.UncoveredDomains {
		recs = append(recs, fmt.Sprintf(
			"Seek feedback from a %s reviewer; this perspective is missing from the current review set.",
			domainName(in.Snapshot, dom),
		))
	}

	recs = append(recs, generalRecommendations...)
	return recs
}

func domainName(snapshot *ontology.Snapshot, id types.DomainID) string {
	if dom, err := snapshot.Domain(id); err == nil {
		return dom.Name
	}
	return string(id)
}

func (s *Synthesizer) buildNarrative(in Input, report *model.FeedbackReport) string {
	var sb strings.Builder

	// Overview
	human, synthetic := 0, 0
	for _, ins := range report.Insights {
		human += ins.ReviewCount
		synthetic += ins.SyntheticCount
	}
	fmt.Fprintf(&sb, "%s received feedback from %d perspective(s) (%d human review(s), %d generated).",
		in.Project.Name, len(report.Insights), human, synthetic)
	if report.OverallScore > 0 {
		fmt.Fprintf(&sb, " Overall score: %.1f/5.", report.OverallScore)
	} else {
		sb.WriteString(" No dimension received enough accepted feedback for an overall score.")
	}
	sb.WriteString("\n\n")

	// Strengths: dimensions at or above the strength threshold
	var strengths, weaknesses []string
	for _, dim := range in.Snapshot.Dimensions() {
		score, covered := report.DimensionScores[dim.ID]
		if !covered {
			continue
		}
		switch {
		case score >= s.cfg.strengthThreshold():
			strengths = append(strengths, fmt.Sprintf("%s (%.1f)", dim.Name, score))
		case score <= s.cfg.concernThreshold():
			weaknesses = append(weaknesses, fmt.Sprintf("%s (%.1f)", dim.Name, score))
		}
	}
	if len(strengths) > 0 {
		fmt.Fprintf(&sb, "Strengths: %s.\n\n", strings.Join(strengths, ", "))
	}
	if len(weaknesses) > 0 {
		fmt.Fprintf(&sb, "Weaknesses: %s.\n\n", strings.Join(weaknesses, ", "))
	}

	// Coverage gaps are stated explicitly, never silently scored
	if len(report.UncoveredDimensions) > 0 {
		names := make([]string, 0, len(report.UncoveredDimensions))
		for _, id := range report.UncoveredDimensions {
			names = append(names, dimensionName(in.Snapshot, id))
		}
		fmt.Fprintf(&sb, "Not covered by any accepted review: %s.\n\n", strings.Join(names, ", "))
	}
	if len(report.UncoveredDomains) > 0 {
		names := make([]string, 0, len(report.UncoveredDomains))
		for _, id := range report.UncoveredDomains {
			names = append(names, domainName(in.Snapshot, id))
		}
		fmt.Fprintf(&sb, "Missing perspectives: %s.\n\n", strings.Join(names, ", "))
	}

	if len(report.Recommendations) > 0 {
		sb.WriteString("Recommendations:\n")
		for i, rec := range report.Recommendations {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, rec)
		}
	}

	return strings.TrimSpace(sb.String())
}
