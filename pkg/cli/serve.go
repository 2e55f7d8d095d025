package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/panoptes-lab/panoptes/pkg/cli/config"
	httpctrl "github.com/panoptes-lab/panoptes/pkg/controller/http"
	"github.com/panoptes-lab/panoptes/pkg/service/worker"
	"github.com/panoptes-lab/panoptes/pkg/usecase"
	"github.com/panoptes-lab/panoptes/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var reaperInterval time.Duration
	var reaperDeadline time.Duration
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var ontologyCfg config.Ontology
	var pipelineCfg config.Pipeline

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("PANOPTES_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "reaper-interval",
			Usage:       "Interval between stale job sweeps",
			Value:       time.Minute,
			Sources:     cli.EnvVars("PANOPTES_REAPER_INTERVAL"),
			Destination: &reaperInterval,
		},
		&cli.DurationFlag{
			Name:        "reaper-deadline",
			Usage:       "Age after which a running job is marked failed",
			Value:       30 * time.Minute,
			Sources:     cli.EnvVars("PANOPTES_REAPER_DEADLINE"),
			Destination: &reaperDeadline,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, ontologyCfg.Flags()...)
	flags = append(flags, pipelineCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
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
			if llmClient == nil {
				logging.Default().Warn("Gemini not configured, sentiment scoring and gap filling are disabled")
			}

			ucOpts := pipelineCfg.Options()
			if llmClient != nil {
				ucOpts = append(ucOpts, usecase.WithLLMClient(llmClient))
			}

			uc, err := usecase.New(repo, registry, ucOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize use cases")
			}

			reaper := worker.NewStaleJobReaper(repo, reaperInterval, reaperDeadline)
			if err := reaper.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start stale job reaper")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			hupCh := make(chan os.Signal, 1)
			signal.Notify(hupCh, syscall.SIGHUP)
			go func() {
				for range hupCh {
					if err := registry.Reload(ctx); err != nil {
						logging.Default().Error("failed to reload ontology", "error", err)
						continue
					}
					logging.Default().Info("Ontology reloaded", "version", registry.Snapshot().Version())
				}
			}()
			defer signal.Stop(hupCh)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				reaper.Stop()
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				reaper.Stop()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
