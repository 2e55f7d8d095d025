package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/model/ontology"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	"github.com/panoptes-lab/panoptes/pkg/service/aggregator"
	"github.com/panoptes-lab/panoptes/pkg/service/classifier"
	"github.com/panoptes-lab/panoptes/pkg/service/synthesizer"
	"github.com/panoptes-lab/panoptes/pkg/utils/async"
	"github.com/panoptes-lab/panoptes/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// ProcessOptions controls one processing run
type ProcessOptions struct {
	// GenerateArtificial fills coverage gaps with synthetic reviews
	GenerateArtificial bool

	// ForceReprocess recomputes even when a completed run already exists. The
	// new report supersedes the old one. It does not override the in-flight
	// lock; two runs never aggregate the same project concurrently.
	ForceReprocess bool
}

// ProcessProject triggers the classification and aggregation pipeline for a
// project. It returns immediately with the processing job; callers poll
// GetStatus. With ForceReprocess=false a completed run is returned as-is and
// an in-flight run is never duplicated.
func (uc *UseCases) ProcessProject(ctx context.Context, projectID types.ProjectID, opts ProcessOptions) (*model.ProcessingJob, error) {
	project, err := uc.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if !opts.ForceReprocess {
		latest, err := uc.repo.Job().GetLatestByProject(ctx, projectID)
		if err == nil && latest.Status == types.ProcessingStatusCompleted {
			return latest, nil
		}
		if err != nil && !isNotFound(err) {
			return nil, goerr.Wrap(err, "failed to check latest job", goerr.V("projectID", projectID))
		}
	}

	job, started, err := uc.repo.Job().StartRun(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to start processing run", goerr.V("projectID", projectID))
	}
	if !started {
		// Another run is in flight; return it unchanged
		return job, nil
	}

	// The snapshot is captured once here; registry reloads never affect this run
	snapshot := uc.registry.Snapshot()
	if snapshot == nil {
		uc.failJob(ctx, job, ErrOntologyUnavailable)
		return nil, goerr.Wrap(ErrOntologyUnavailable, "cannot start run without ontology",
			goerr.V("projectID", projectID))
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.runPipeline(ctx, project, job, snapshot, opts)
	})

	return job, nil
}

// run carries the shared state of one pipeline execution. Job mutations from
// concurrent steps go through its mutex.
type run struct {
	project  *model.Project
	job      *model.ProcessingJob
	snapshot *ontology.Snapshot
	opts     ProcessOptions

	mu sync.Mutex
}

func (r *run) appendError(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.job.AppendError(msg)
}

func (uc *UseCases) runPipeline(ctx context.Context, project *model.Project, job *model.ProcessingJob, snapshot *ontology.Snapshot, opts ProcessOptions) error {
	logger := logging.From(ctx).With("projectID", project.ID, "jobID", job.ID)
	ctx = logging.With(ctx, logger)

	r := &run{project: project, job: job, snapshot: snapshot, opts: opts}

	if err := job.TransitionTo(types.ProcessingStatusProcessing); err != nil {
		return err
	}
	if err := uc.repo.Job().Update(ctx, job); err != nil {
		return err
	}
	if err := uc.repo.Project().UpdateProcessingStatus(ctx, project.ID, types.ProcessingStatusProcessing); err != nil {
		return err
	}

	if err := uc.executePipeline(ctx, r); err != nil {
		uc.failJob(ctx, job, err)
		return err
	}

	if err := job.TransitionTo(types.ProcessingStatusCompleted); err != nil {
		return err
	}
	if err := uc.repo.Job().Update(ctx, job); err != nil {
		return err
	}
	if err := uc.repo.Project().UpdateProcessingStatus(ctx, project.ID, types.ProcessingStatusCompleted); err != nil {
		return err
	}

	logger.Info("processing run completed",
		"steps", job.CompletedSteps(),
		"errors", len(job.Errors),
	)
	return nil
}

// executePipeline runs the step sequence. Per-review and per-domain failures
// accumulate in the job's error list; only store or ontology failures abort.
func (uc *UseCases) executePipeline(ctx context.Context, r *run) error {
	reviews, err := uc.repo.Review().ListByProject(ctx, r.project.ID)
	if err != nil {
		return goerr.Wrap(err, "failed to load reviews")
	}
	if err := uc.markStep(ctx, r, model.StepLoadingProject); err != nil {
		return err
	}

	if err := uc.classifyReviews(ctx, r, reviews); err != nil {
		return err
	}
	if err := uc.markStep(ctx, r, model.StepClassifyingReview); err != nil {
		return err
	}

	if err := uc.scoreSentiment(ctx, r, reviews); err != nil {
		return err
	}
	if err := uc.markStep(ctx, r, model.StepScoringSentiment); err != nil {
		return err
	}

	if r.opts.GenerateArtificial {
		synthetic, err := uc.fillGaps(ctx, r, reviews)
		if err != nil {
			return err
		}
		reviews = append(reviews, synthetic...)
	}
	if err := uc.markStep(ctx, r, model.StepFillingGaps); err != nil {
		return err
	}

	accepted := acceptedOf(reviews)
	aggregated := uc.aggregator.Aggregate(r.snapshot, accepted)
	if err := uc.markStep(ctx, r, model.StepAggregatingScores); err != nil {
		return err
	}

	report := uc.synthesizer.Synthesize(synthesizerInput(r, accepted, aggregated, uc.resolveCoreDomains(r.snapshot)))
	if err := uc.repo.Report().Save(ctx, report); err != nil {
		return goerr.Wrap(err, "failed to save feedback report")
	}
	if err := uc.markStep(ctx, r, model.StepSynthesizing); err != nil {
		return err
	}

	return nil
}

// classifyReviews annotates every review with domain, expertise, relevance and
// the acceptance verdict. Reviews are independent; the work fans out.
func (uc *UseCases) classifyReviews(ctx context.Context, r *run, reviews []*model.Review) error {
	eg, egCtx := errgroup.WithContext(ctx)
	for _, rv := range reviews {
		eg.Go(func() error {
			ann := uc.annotate(egCtx, r, rv)
			rv.Annotation = ann
			if err := uc.repo.Review().SaveAnnotation(egCtx, rv.ID, ann); err != nil {
				return goerr.Wrap(err, "failed to save annotation", goerr.V("reviewID", rv.ID))
			}
			return nil
		})
	}
	return eg.Wait()
}

// annotate runs classifier, profiler and filter over one review. A
// classification below the confidence floor falls back to rejection.
func (uc *UseCases) annotate(ctx context.Context, r *run, rv *model.Review) *model.ReviewAnnotation {
	ann := &model.ReviewAnnotation{ProcessedAt: time.Now().UTC()}

	res, err := uc.classifier.Classify(r.snapshot, rv.Text)
	if err != nil {
		if !errors.Is(err, classifier.ErrLowConfidence) {
			r.appendError("classification failed for review " + rv.ID.String() + ": " + err.Error())
		}
		ann.Status = types.ReviewStatusRejected
		ann.RejectReasons = []types.RejectReason{types.RejectReasonLowRelevance}
		return ann
	}
	ann.DomainID = res.DomainID

	profile, err := uc.profiler.Run(r.snapshot, rv.Text, rv.ConfidenceScore, res.DomainID)
	if err != nil {
		r.appendError("profiling failed for review " + rv.ID.String() + ": " + err.Error())
		ann.Status = types.ReviewStatusRejected
		ann.RejectReasons = []types.RejectReason{types.RejectReasonLowRelevance}
		return ann
	}
	ann.ExpertiseLevelID = profile.ExpertiseLevelID
	ann.RelevanceScore = profile.RelevanceScore

	decision := uc.filter.Decide(profile.RelevanceScore, rv.ConfidenceScore)
	ann.Status = decision.Status
	ann.RejectReasons = decision.Reasons
	return ann
}

// scoreSentiment fills per-dimension scores for accepted reviews that do not
// have them yet. Failures leave the review accepted but unscored; it then
// contributes nothing to aggregation.
func (uc *UseCases) scoreSentiment(ctx context.Context, r *run, reviews []*model.Review) error {
	pending := make([]*model.Review, 0, len(reviews))
	for _, rv := range reviews {
		if rv.Accepted() && len(rv.Annotation.SentimentScores) == 0 {
			pending = append(pending, rv)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	if uc.sentiment == nil {
		r.appendError("sentiment scoring skipped: no LLM client configured")
		return nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.maxConcurrentGenerations)
	for _, rv := range pending {
		eg.Go(func() error {
			scores, err := uc.sentiment.Score(egCtx, r.snapshot, rv.Annotation.DomainID, rv.Text)
			if err != nil {
				r.appendError("sentiment scoring failed for review " + rv.ID.String() + ": " + err.Error())
				return nil
			}
			rv.Annotation.SentimentScores = scores
			if err := uc.repo.Review().SaveAnnotation(egCtx, rv.ID, rv.Annotation); err != nil {
				return goerr.Wrap(err, "failed to save sentiment scores", goerr.V("reviewID", rv.ID))
			}
			return nil
		})
	}
	return eg.Wait()
}

// fillGaps generates a synthetic review for each uncovered core domain the
// project text is at least marginally relevant to. Generated reviews re-enter
// the classifier, profiler and filter like human ones; an off-topic generation
// can still be rejected and the domain stays a gap.
func (uc *UseCases) fillGaps(ctx context.Context, r *run, reviews []*model.Review) ([]*model.Review, error) {
	gaps := DetectGaps(reviews, uc.resolveCoreDomains(r.snapshot))
	if len(gaps) == 0 {
		return nil, nil
	}

	if uc.generator == nil {
		r.appendError("gap filling skipped: no LLM client configured")
		return nil, nil
	}

	logger := logging.From(ctx)

	var mu sync.Mutex
	var synthetic []*model.Review

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.maxConcurrentGenerations)
	for _, domainID := range gaps {
		eg.Go(func() error {
			if !uc.projectRelevantTo(r, domainID) {
				logger.Info("skipping generation for unrelated domain", "domainID", domainID)
				return nil
			}

			out, err := uc.generator.Generate(egCtx, r.project, r.snapshot, domainID)
			if err != nil {
				r.appendError("generation failed for domain " + domainID.String() + ": " + err.Error())
				return nil
			}

			out.Review.ProjectID = r.project.ID
			created, err := uc.repo.Review().Create(egCtx, out.Review)
			if err != nil {
				return goerr.Wrap(err, "failed to store synthetic review", goerr.V("domainID", domainID))
			}

			ann := uc.annotate(egCtx, r, created)
			if ann.Status == types.ReviewStatusAccepted {
				// The parsed scores are the synthetic review's sentiment
				ann.SentimentScores = out.Scores
			} else {
				logger.Warn("synthetic review rejected, domain stays uncovered",
					"domainID", domainID,
					"assignedDomain", ann.DomainID,
					"reasons", ann.RejectReasons,
				)
			}
			created.Annotation = ann
			if err := uc.repo.Review().SaveAnnotation(egCtx, created.ID, ann); err != nil {
				return goerr.Wrap(err, "failed to save synthetic annotation", goerr.V("reviewID", created.ID))
			}

			mu.Lock()
			synthetic = append(synthetic, created)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return synthetic, nil
}

// projectRelevantTo reports whether the project's own text covers enough of
// the domain's dimensions to make a generated review grounded rather than
// hallucinated
func (uc *UseCases) projectRelevantTo(r *run, domainID types.DomainID) bool {
	profile, err := uc.profiler.Run(r.snapshot, r.project.FullText(), ontology.ConfidenceMax, domainID)
	if err != nil {
		return false
	}
	return profile.RelevanceScore >= uc.projectRelevanceFloor
}

func (uc *UseCases) resolveCoreDomains(snapshot *ontology.Snapshot) []types.DomainID {
	if len(uc.coreDomains) > 0 {
		return uc.coreDomains
	}
	domains := snapshot.Domains()
	ids := make([]types.DomainID, 0, len(domains))
	for _, dom := range domains {
		ids = append(ids, dom.ID)
	}
	return ids
}

func (uc *UseCases) markStep(ctx context.Context, r *run, name string) error {
	r.mu.Lock()
	r.job.MarkStep(name)
	r.mu.Unlock()
	if err := uc.repo.Job().Update(ctx, r.job); err != nil {
		return goerr.Wrap(err, "failed to persist job step", goerr.V("step", name))
	}
	return nil
}

// failJob marks the job and the project failed. Best effort; store errors here
// are logged, not propagated.
func (uc *UseCases) failJob(ctx context.Context, job *model.ProcessingJob, cause error) {
	logger := logging.From(ctx)
	job.AppendError(cause.Error())
	if err := job.TransitionTo(types.ProcessingStatusFailed); err != nil {
		logger.Error("failed to transition job to failed", "jobID", job.ID, "error", err.Error())
	}
	if err := uc.repo.Job().Update(ctx, job); err != nil {
		logger.Error("failed to persist failed job", "jobID", job.ID, "error", err.Error())
	}
	if err := uc.repo.Project().UpdateProcessingStatus(ctx, job.ProjectID, types.ProcessingStatusFailed); err != nil {
		logger.Error("failed to update project status", "projectID", job.ProjectID, "error", err.Error())
	}
}

func synthesizerInput(r *run, accepted []*model.Review, aggregated *aggregator.Result, coreDomains []types.DomainID) synthesizer.Input {
	return synthesizer.Input{
		Project:          r.project,
		Snapshot:         r.snapshot,
		Accepted:         accepted,
		Aggregated:       aggregated,
		UncoveredDomains: DetectGaps(accepted, coreDomains),
	}
}

func acceptedOf(reviews []*model.Review) []*model.Review {
	accepted := make([]*model.Review, 0, len(reviews))
	for _, rv := range reviews {
		if rv.Accepted() {
			accepted = append(accepted, rv)
		}
	}
	return accepted
}
