package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	ontologystore "github.com/panoptes-lab/panoptes/pkg/ontology"
	"github.com/panoptes-lab/panoptes/pkg/repository/memory"
	"github.com/panoptes-lab/panoptes/pkg/service/generator"
	"github.com/panoptes-lab/panoptes/pkg/usecase"
)

const testOntology = `
[[domains]]
id = "technical"
name = "Technical"
description = "Software engineering and implementation"
keywords = ["code", "software", "api", "architecture", "backend", "technical"]
dimensions = ["innovation", "feasibility"]

[[domains]]
id = "clinical"
name = "Clinical"
description = "Patient care and medical practice"
keywords = ["patient", "clinical", "medical", "triage", "diagnosis"]
dimensions = ["impact", "feasibility"]

[[domains]]
id = "business"
name = "Business"
description = "Market strategy and commercialization"
keywords = ["market", "revenue", "pricing", "customer", "business"]
dimensions = ["innovation", "impact"]

[[dimensions]]
id = "innovation"
name = "Innovation"
description = "Novelty of the solution"
scale = ["derivative", "minor twist", "solid improvement", "novel approach", "breakthrough"]

[[dimensions]]
id = "impact"
name = "Impact"
description = "Effect on the target users"
scale = ["negligible", "marginal", "moderate", "substantial", "transformative"]

[[dimensions]]
id = "feasibility"
name = "Feasibility"
description = "Likelihood the approach works as built"
scale = ["implausible", "doubtful", "plausible", "likely", "demonstrated"]

[[expertise_levels]]
id = "novice"
name = "Novice"
min_confidence = 0
max_confidence = 40

[[expertise_levels]]
id = "skilled"
name = "Skilled"
min_confidence = 41
max_confidence = 70

[[expertise_levels]]
id = "expert"
name = "Expert"
min_confidence = 71
max_confidence = 100
`

var allCoreDomains = []types.DomainID{"technical", "clinical", "business"}

// mockLLM answers both generation prompts (text format) and sentiment prompts
// (JSON), dispatching on the prompt content
type mockLLM struct {
	gollem.LLMClient

	mu          sync.Mutex
	generations int
	sentiments  int

	failGeneration bool
	blockCh        chan struct{} // when set, every call waits until closed
}

type mockSession struct {
	gollem.Session
	fn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return s.fn(ctx, input...)
}

func (m *mockLLM) NewSession(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
	return &mockSession{fn: m.respond}, nil
}

func (m *mockLLM) counts() (generations, sentiments int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generations, m.sentiments
}

func (m *mockLLM) respond(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if m.blockCh != nil {
		select {
		case <-m.blockCh:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var sb strings.Builder
	for _, in := range input {
		if t, ok := in.(gollem.Text); ok {
			sb.WriteString(string(t))
		}
	}
	prompt := sb.String()

	if strings.Contains(prompt, "# Output format") {
		m.mu.Lock()
		m.generations++
		fail := m.failGeneration
		m.mu.Unlock()
		if fail {
			return nil, errors.New("deadline exceeded")
		}
		return &gollem.Response{Texts: []string{generationReply(prompt)}}, nil
	}

	m.mu.Lock()
	m.sentiments++
	m.mu.Unlock()
	return &gollem.Response{Texts: []string{sentimentReply(prompt)}}, nil
}

var (
	genDomainPattern = regexp.MustCompile(`experienced (\w+) reviewer`)
	genDimPattern    = regexp.MustCompile(`\(id: ([a-z_]+)\)`)
	sentDimPattern   = regexp.MustCompile(`dimension_id: ([a-z_]+)\)`)
)

// reviewBodies hold on-topic text per domain so the generated review survives
// reclassification and covers the domain's dimensions
var reviewBodies = map[string]string{
	"Technical": "The code and software architecture are clean, with a sensible backend api. " +
		"The innovation is real and the technical feasibility is demonstrated by the prototype.",
	"Clinical": "From a clinical standpoint the patient triage logic is sound. " +
		"The impact on medical workflows is clear and the feasibility of adoption is high.",
	"Business": "The market opportunity is large and the revenue model is credible. " +
		"The innovation differentiates it from competitors and the customer impact is obvious.",
}

func generationReply(prompt string) string {
	var sb strings.Builder
	sb.WriteString("CONFIDENCE: 80\n")
	for _, match := range genDimPattern.FindAllStringSubmatch(prompt, -1) {
		fmt.Fprintf(&sb, "SCORE %s: 4\n", match[1])
	}
	sb.WriteString("REVIEW:\n")

	body := "A generic review."
	if match := genDomainPattern.FindStringSubmatch(prompt); match != nil {
		if b, ok := reviewBodies[match[1]]; ok {
			body = b
		}
	}
	sb.WriteString(body + "\n")
	return sb.String()
}

func sentimentReply(prompt string) string {
	var entries []string
	for _, match := range sentDimPattern.FindAllStringSubmatch(prompt, -1) {
		entries = append(entries, fmt.Sprintf(`{"dimension_id":%q,"score":4}`, match[1]))
	}
	return fmt.Sprintf(`{"scores":[%s]}`, strings.Join(entries, ","))
}

func newTestUseCases(t *testing.T, llm gollem.LLMClient, opts ...usecase.Option) (*usecase.UseCases, *memory.Memory) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ontology.toml")
	gt.NoError(t, os.WriteFile(path, []byte(testOntology), 0600))
	registry, err := ontologystore.NewRegistry(path)
	gt.NoError(t, err)

	repo := memory.New()
	base := []usecase.Option{
		usecase.WithCoreDomains(allCoreDomains),
		usecase.WithGeneratorConfig(generator.Config{
			RetryBackoff:   time.Millisecond,
			AttemptTimeout: time.Second,
		}),
	}
	if llm != nil {
		base = append(base, usecase.WithLLMClient(llm))
	}
	uc, err := usecase.New(repo, registry, append(base, opts...)...)
	gt.NoError(t, err)
	return uc, repo
}

func createProject(t *testing.T, uc *usecase.UseCases) *model.Project {
	t.Helper()
	project, err := uc.CreateProject(context.Background(), &model.Project{
		Name: "MedTriage",
		Description: "A triage assistant for patients in small clinics. The innovation lies in " +
			"combining clinical rules with a simple scoring model; the impact on medical staff " +
			"workload is measurable and the technical feasibility was shown with a working backend.",
		WorkDone: "Built a prototype api with code for patient intake, pricing research on the " +
			"market side, and an architecture sketch for scaling.",
	})
	gt.NoError(t, err)
	return project
}

func submitClinicalReview(t *testing.T, uc *usecase.UseCases, projectID types.ProjectID, confidence int) *model.Review {
	t.Helper()
	review, err := uc.SubmitReview(context.Background(), projectID, &model.Review{
		ReviewerName: "Dr. Chen",
		Text: "As a clinical reviewer I find the patient triage flow medically sound. The impact " +
			"on diagnosis speed is substantial and the feasibility of rolling it out in a clinical " +
			"setting is high.",
		ConfidenceScore: confidence,
	})
	gt.NoError(t, err)
	return review
}

func waitForJob(t *testing.T, uc *usecase.UseCases, projectID types.ProjectID) *model.ProcessingJob {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		job, err := uc.GetStatus(context.Background(), projectID)
		gt.NoError(t, err)
		if !job.InFlight() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("processing run did not finish in time")
	return nil
}
