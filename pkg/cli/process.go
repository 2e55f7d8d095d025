package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/panoptes-lab/panoptes/pkg/cli/config"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	"github.com/panoptes-lab/panoptes/pkg/usecase"
	"github.com/panoptes-lab/panoptes/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdProcess() *cli.Command {
	var generateArtificial bool
	var force bool
	var timeout time.Duration
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var ontologyCfg config.Ontology
	var pipelineCfg config.Pipeline

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "generate-artificial",
			Usage:       "Generate synthetic reviews for uncovered core domains",
			Sources:     cli.EnvVars("PANOPTES_GENERATE_ARTIFICIAL"),
			Destination: &generateArtificial,
		},
		&cli.BoolFlag{
			Name:        "force",
			Usage:       "Reprocess even when a completed run already exists",
			Destination: &force,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Maximum time to wait for the run to finish",
			Value:       10 * time.Minute,
			Destination: &timeout,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, ontologyCfg.Flags()...)
	flags = append(flags, pipelineCfg.Flags()...)

	return &cli.Command{
		Name:      "process",
		Usage:     "Run the review processing pipeline for one project and wait for it to finish",
		ArgsUsage: "<project-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one project ID argument is required")
			}
			projectID := types.ProjectID(c.Args().First())

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			registry, err := ontologyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure ontology")
			}

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}

			ucOpts := pipelineCfg.Options()
			if llmClient != nil {
				ucOpts = append(ucOpts, usecase.WithLLMClient(llmClient))
			}

			uc, err := usecase.New(repo, registry, ucOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize use cases")
			}

			job, err := uc.ProcessProject(ctx, projectID, usecase.ProcessOptions{
				GenerateArtificial: generateArtificial,
				ForceReprocess:     force,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to start processing")
			}

			logging.Default().Info("Processing started", "project_id", projectID, "job_id", job.ID)

			deadline := time.Now().Add(timeout)
			for job.InFlight() {
				if time.Now().After(deadline) {
					return goerr.New("timed out waiting for processing run",
						goerr.V("job_id", job.ID), goerr.V("timeout", timeout))
				}
				select {
				case <-ctx.Done():
					return goerr.Wrap(ctx.Err(), "interrupted while waiting for processing run")
				case <-time.After(500 * time.Millisecond):
				}

				job, err = uc.GetStatus(ctx, projectID)
				if err != nil {
					return goerr.Wrap(err, "failed to poll job status")
				}
			}

			for _, msg := range job.Errors {
				logging.Default().Warn("Run reported error", "job_id", job.ID, "message", msg)
			}

			if job.Status != types.ProcessingStatusCompleted {
				return goerr.New("processing run did not complete",
					goerr.V("job_id", job.ID), goerr.V("status", job.Status))
			}

			report, err := uc.GetFeedback(ctx, projectID)
			if err != nil {
				return goerr.Wrap(err, "failed to fetch feedback report")
			}

			logging.Default().Info("Processing completed",
				"job_id", job.ID,
				"report_id", report.ID,
				"overall_score", report.OverallScore,
				"insights", len(report.Insights),
				"uncovered_domains", len(report.UncoveredDomains),
			)
			return nil
		},
	}
}
