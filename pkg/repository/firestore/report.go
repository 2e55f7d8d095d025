package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type domainInsightDocument struct {
	DomainID       string   `firestore:"domain_id"`
	DomainName     string   `firestore:"domain_name"`
	ReviewCount    int      `firestore:"review_count"`
	SyntheticCount int      `firestore:"synthetic_count"`
	KeyStrengths   []string `firestore:"key_strengths,omitempty"`
	Concerns       []string `firestore:"concerns,omitempty"`
	AverageScore   float64  `firestore:"average_score"`
}

type reportDocument struct {
	ID                  string                  `firestore:"id"`
	ProjectID           string                  `firestore:"project_id"`
	DimensionScores     map[string]float64      `firestore:"dimension_scores,omitempty"`
	UncoveredDimensions []string                `firestore:"uncovered_dimensions,omitempty"`
	UncoveredDomains    []string                `firestore:"uncovered_domains,omitempty"`
	OverallScore        float64                 `firestore:"overall_score"`
	Narrative           string                  `firestore:"narrative"`
	Insights            []domainInsightDocument `firestore:"insights,omitempty"`
	Recommendations     []string                `firestore:"recommendations,omitempty"`
	GeneratedAt         time.Time               `firestore:"generated_at"`
}

func toReportDocument(rep *model.FeedbackReport) *reportDocument {
	doc := &reportDocument{
		ID:              string(rep.ID),
		ProjectID:       string(rep.ProjectID),
		OverallScore:    rep.OverallScore,
		Narrative:       rep.Narrative,
		Recommendations: rep.Recommendations,
		GeneratedAt:     rep.GeneratedAt,
	}
	if rep.DimensionScores != nil {
		doc.DimensionScores = make(map[string]float64, len(rep.DimensionScores))
		for k, v := range rep.DimensionScores {
			doc.DimensionScores[string(k)] = v
		}
	}
	for _, id := range rep.UncoveredDimensions {
		doc.UncoveredDimensions = append(doc.UncoveredDimensions, string(id))
	}
	for _, id := range rep.UncoveredDomains {
		doc.UncoveredDomains = append(doc.UncoveredDomains, string(id))
	}
	for _, ins := range rep.Insights {
		doc.Insights = append(doc.Insights, domainInsightDocument{
			DomainID:       string(ins.DomainID),
			DomainName:     ins.DomainName,
			ReviewCount:    ins.ReviewCount,
			SyntheticCount: ins.SyntheticCount,
			KeyStrengths:   ins.KeyStrengths,
			Concerns:       ins.Concerns,
			AverageScore:   ins.AverageScore,
		})
	}
	return doc
}

func (d *reportDocument) toModel() *model.FeedbackReport {
	rep := &model.FeedbackReport{
		ID:              types.ReportID(d.ID),
		ProjectID:       types.ProjectID(d.ProjectID),
		OverallScore:    d.OverallScore,
		Narrative:       d.Narrative,
		Recommendations: d.Recommendations,
		GeneratedAt:     d.GeneratedAt,
	}
	if d.DimensionScores != nil {
		rep.DimensionScores = make(map[types.DimensionID]float64, len(d.DimensionScores))
		for k, v := range d.DimensionScores {
			rep.DimensionScores[types.DimensionID(k)] = v
		}
	}
	for _, id := range d.UncoveredDimensions {
		rep.UncoveredDimensions = append(rep.UncoveredDimensions, types.DimensionID(id))
	}
	for _, id := range d.UncoveredDomains {
		rep.UncoveredDomains = append(rep.UncoveredDomains, types.DomainID(id))
	}
	for _, ins := range d.Insights {
		rep.Insights = append(rep.Insights, model.DomainInsight{
			DomainID:       types.DomainID(ins.DomainID),
			DomainName:     ins.DomainName,
			ReviewCount:    ins.ReviewCount,
			SyntheticCount: ins.SyntheticCount,
			KeyStrengths:   ins.KeyStrengths,
			Concerns:       ins.Concerns,
			AverageScore:   ins.AverageScore,
		})
	}
	return rep
}

type reportRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newReportRepository(client *firestore.Client) *reportRepository {
	return &reportRepository{client: client}
}

func (r *reportRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_reports"
	}
	return "reports"
}

// Save writes the report keyed by project ID so that a new run's report
// replaces the previous one in a single Set.
func (r *reportRepository) Save(ctx context.Context, rep *model.FeedbackReport) error {
	docRef := r.client.Collection(r.collection()).Doc(string(rep.ProjectID))
	if _, err := docRef.Set(ctx, toReportDocument(rep)); err != nil {
		return goerr.Wrap(err, "failed to save report",
			goerr.V("projectID", rep.ProjectID),
			goerr.V("reportID", rep.ID),
		)
	}
	return nil
}

func (r *reportRepository) GetCurrent(ctx context.Context, projectID types.ProjectID) (*model.FeedbackReport, error) {
	doc, err := r.client.Collection(r.collection()).Doc(string(projectID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "no report for project", goerr.V("projectID", projectID))
		}
		return nil, goerr.Wrap(err, "failed to get report", goerr.V("projectID", projectID))
	}

	var rd reportDocument
	if err := doc.DataTo(&rd); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal report", goerr.V("projectID", projectID))
	}
	return rd.toModel(), nil
}
