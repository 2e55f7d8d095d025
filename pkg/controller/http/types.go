package http

import (
	"time"

	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/model/ontology"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

type projectRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	WorkDone    string         `json:"work_done"`
	Status      string         `json:"status,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type projectResponse struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	WorkDone         string         `json:"work_done"`
	Status           string         `json:"status"`
	ProcessingStatus string         `json:"processing_status"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func toProjectResponse(p *model.Project) *projectResponse {
	return &projectResponse{
		ID:               p.ID.String(),
		Name:             p.Name,
		Description:      p.Description,
		WorkDone:         p.WorkDone,
		Status:           p.Status.String(),
		ProcessingStatus: p.ProcessingStatus.String(),
		Metadata:         p.Metadata,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

type reviewRequest struct {
	ReviewerName    string            `json:"reviewer_name"`
	Text            string            `json:"text"`
	ConfidenceScore int               `json:"confidence_score"`
	Links           map[string]string `json:"links,omitempty"`
}

type annotationResponse struct {
	DomainID         string             `json:"domain_id"`
	ExpertiseLevelID string             `json:"expertise_level_id,omitempty"`
	RelevanceScore   float64            `json:"relevance_score"`
	SentimentScores  map[string]float64 `json:"sentiment_scores,omitempty"`
	Status           string             `json:"status"`
	RejectReasons    []string           `json:"reject_reasons,omitempty"`
	ProcessedAt      time.Time          `json:"processed_at"`
}

type reviewResponse struct {
	ID              string              `json:"id"`
	ProjectID       string              `json:"project_id"`
	ReviewerName    string              `json:"reviewer_name"`
	Text            string              `json:"text"`
	ConfidenceScore int                 `json:"confidence_score"`
	Links           map[string]string   `json:"links,omitempty"`
	IsArtificial    bool                `json:"is_artificial"`
	SubmittedAt     time.Time           `json:"submitted_at"`
	Annotation      *annotationResponse `json:"annotation,omitempty"`
}

func toReviewResponse(rv *model.Review) *reviewResponse {
	resp := &reviewResponse{
		ID:              rv.ID.String(),
		ProjectID:       rv.ProjectID.String(),
		ReviewerName:    rv.ReviewerName,
		Text:            rv.Text,
		ConfidenceScore: rv.ConfidenceScore,
		Links:           rv.Links,
		IsArtificial:    rv.IsArtificial,
		SubmittedAt:     rv.SubmittedAt,
	}
	if ann := rv.Annotation; ann != nil {
		reasons := make([]string, 0, len(ann.RejectReasons))
		for _, reason := range ann.RejectReasons {
			reasons = append(reasons, reason.String())
		}
		scores := make(map[string]float64, len(ann.SentimentScores))
		for id, score := range ann.SentimentScores {
			scores[id.String()] = score
		}
		resp.Annotation = &annotationResponse{
			DomainID:         ann.DomainID.String(),
			ExpertiseLevelID: ann.ExpertiseLevelID.String(),
			RelevanceScore:   ann.RelevanceScore,
			SentimentScores:  scores,
			Status:           ann.Status.String(),
			RejectReasons:    reasons,
			ProcessedAt:      ann.ProcessedAt,
		}
	}
	return resp
}

type processRequest struct {
	GenerateArtificial bool `json:"generate_artificial"`
	ForceReprocess     bool `json:"force_reprocess"`
}

type jobStepResponse struct {
	Name        string     `json:"name"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type jobResponse struct {
	ID          string            `json:"id"`
	ProjectID   string            `json:"project_id"`
	Status      string            `json:"status"`
	Steps       []jobStepResponse `json:"steps"`
	Errors      []string          `json:"errors,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

func toJobResponse(job *model.ProcessingJob) *jobResponse {
	steps := make([]jobStepResponse, 0, len(job.Steps))
	for _, step := range job.Steps {
		sr := jobStepResponse{
			Name:      step.Name,
			Completed: step.Completed(),
		}
		if step.Completed() {
			at := step.CompletedAt
			sr.CompletedAt = &at
		}
		steps = append(steps, sr)
	}
	resp := &jobResponse{
		ID:        job.ID.String(),
		ProjectID: job.ProjectID.String(),
		Status:    job.Status.String(),
		Steps:     steps,
		Errors:    job.Errors,
		StartedAt: job.StartedAt,
	}
	if !job.CompletedAt.IsZero() {
		at := job.CompletedAt
		resp.CompletedAt = &at
	}
	return resp
}

type insightResponse struct {
	DomainID       string   `json:"domain_id"`
	DomainName     string   `json:"domain_name"`
	ReviewCount    int      `json:"review_count"`
	SyntheticCount int      `json:"synthetic_count"`
	KeyStrengths   []string `json:"key_strengths,omitempty"`
	Concerns       []string `json:"concerns,omitempty"`
	AverageScore   float64  `json:"average_score"`
}

type reportResponse struct {
	ID                  string             `json:"id"`
	ProjectID           string             `json:"project_id"`
	DimensionScores     map[string]float64 `json:"dimension_scores"`
	UncoveredDimensions []string           `json:"uncovered_dimensions,omitempty"`
	UncoveredDomains    []string           `json:"uncovered_domains,omitempty"`
	OverallScore        float64            `json:"overall_score"`
	Narrative           string             `json:"narrative"`
	Insights            []insightResponse  `json:"insights"`
	Recommendations     []string           `json:"recommendations"`
	GeneratedAt         time.Time          `json:"generated_at"`
}

func toReportResponse(report *model.FeedbackReport) *reportResponse {
	scores := make(map[string]float64, len(report.DimensionScores))
	for id, score := range report.DimensionScores {
		scores[id.String()] = score
	}
	insights := make([]insightResponse, 0, len(report.Insights))
	for _, ins := range report.Insights {
		insights = append(insights, insightResponse{
			DomainID:       ins.DomainID.String(),
			DomainName:     ins.DomainName,
			ReviewCount:    ins.ReviewCount,
			SyntheticCount: ins.SyntheticCount,
			KeyStrengths:   ins.KeyStrengths,
			Concerns:       ins.Concerns,
			AverageScore:   ins.AverageScore,
		})
	}
	return &reportResponse{
		ID:                  report.ID.String(),
		ProjectID:           report.ProjectID.String(),
		DimensionScores:     scores,
		UncoveredDimensions: idStrings(report.UncoveredDimensions),
		UncoveredDomains:    domainStrings(report.UncoveredDomains),
		OverallScore:        report.OverallScore,
		Narrative:           report.Narrative,
		Insights:            insights,
		Recommendations:     report.Recommendations,
		GeneratedAt:         report.GeneratedAt,
	}
}

func idStrings(ids []types.DimensionID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func domainStrings(ids []types.DomainID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

type subdomainResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

type domainResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Keywords    []string            `json:"keywords"`
	Subdomains  []subdomainResponse `json:"subdomains,omitempty"`
	Dimensions  []string            `json:"dimensions"`
}

type dimensionResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Scale       map[int]string `json:"scale"`
}

type expertiseLevelResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	MinConfidence int    `json:"min_confidence"`
	MaxConfidence int    `json:"max_confidence"`
}

type ontologyResponse struct {
	Version         int64                    `json:"version"`
	Domains         []domainResponse         `json:"domains"`
	Dimensions      []dimensionResponse      `json:"dimensions"`
	ExpertiseLevels []expertiseLevelResponse `json:"expertise_levels"`
}

func toOntologyResponse(snapshot *ontology.Snapshot) *ontologyResponse {
	resp := &ontologyResponse{Version: snapshot.Version()}

	for _, dom := range snapshot.Domains() {
		subs := make([]subdomainResponse, 0, len(dom.Subdomains))
		for _, sub := range dom.Subdomains {
			subs = append(subs, subdomainResponse{
				ID:       sub.ID,
				Name:     sub.Name,
				Keywords: sub.Keywords,
			})
		}
		resp.Domains = append(resp.Domains, domainResponse{
			ID:          dom.ID.String(),
			Name:        dom.Name,
			Description: dom.Description,
			Keywords:    dom.Keywords,
			Subdomains:  subs,
			Dimensions:  idStrings(dom.RelevantDimensions),
		})
	}

	for _, dim := range snapshot.Dimensions() {
		resp.Dimensions = append(resp.Dimensions, dimensionResponse{
			ID:          dim.ID.String(),
			Name:        dim.Name,
			Description: dim.Description,
			Scale:       dim.Scale,
		})
	}

	for _, level := range snapshot.ExpertiseLevels() {
		resp.ExpertiseLevels = append(resp.ExpertiseLevels, expertiseLevelResponse{
			ID:            level.ID.String(),
			Name:          level.Name,
			Description:   level.Description,
			MinConfidence: level.MinConfidence,
			MaxConfidence: level.MaxConfidence,
		})
	}

	return resp
}
