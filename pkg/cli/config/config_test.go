package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/panoptes-lab/panoptes/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func runWithFlags(t *testing.T, flags []cli.Flag, args []string, action func(context.Context, *cli.Command) error) {
	t.Helper()
	cmd := &cli.Command{
		Name:   "test",
		Flags:  flags,
		Action: action,
	}
	gt.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
}

func TestRepositoryMemoryBackend(t *testing.T) {
	var cfg config.Repository
	runWithFlags(t, cfg.Flags(), nil, func(ctx context.Context, c *cli.Command) error {
		repo, err := cfg.Configure(ctx)
		gt.NoError(t, err)
		gt.Value(t, repo).NotNil()
		gt.NoError(t, repo.Close())
		return nil
	})
}

func TestRepositoryFirestoreRequiresProject(t *testing.T) {
	var cfg config.Repository
	runWithFlags(t, cfg.Flags(), []string{"--repository-backend", "firestore"}, func(ctx context.Context, c *cli.Command) error {
		_, err := cfg.Configure(ctx)
		gt.Error(t, err)
		return nil
	})
}

func TestRepositoryUnknownBackend(t *testing.T) {
	var cfg config.Repository
	runWithFlags(t, cfg.Flags(), []string{"--repository-backend", "dynamo"}, func(ctx context.Context, c *cli.Command) error {
		_, err := cfg.Configure(ctx)
		gt.Error(t, err)
		return nil
	})
}

func TestGeminiDisabledWithoutProject(t *testing.T) {
	var cfg config.Gemini
	runWithFlags(t, cfg.Flags(), nil, func(ctx context.Context, c *cli.Command) error {
		client, err := cfg.Configure(ctx)
		gt.NoError(t, err)
		gt.Value(t, client).Nil()
		return nil
	})
}

func TestLoggerRejectsInvalidLevel(t *testing.T) {
	var cfg config.Logger
	runWithFlags(t, cfg.Flags(), []string{"--log-level", "verbose"}, func(ctx context.Context, c *cli.Command) error {
		_, err := cfg.Configure()
		gt.Error(t, err)
		return nil
	})
}

func TestLoggerRejectsInvalidFormat(t *testing.T) {
	var cfg config.Logger
	runWithFlags(t, cfg.Flags(), []string{"--log-format", "xml"}, func(ctx context.Context, c *cli.Command) error {
		_, err := cfg.Configure()
		gt.Error(t, err)
		return nil
	})
}

func TestOntologyDefaultDocument(t *testing.T) {
	var cfg config.Ontology
	runWithFlags(t, cfg.Flags(), nil, func(ctx context.Context, c *cli.Command) error {
		registry, err := cfg.Configure()
		gt.NoError(t, err)
		snapshot := registry.Snapshot()
		gt.A(t, snapshot.Domains()).Length(6)
		gt.A(t, snapshot.Dimensions()).Length(6)
		gt.A(t, snapshot.ExpertiseLevels()).Length(5)
		return nil
	})
}

func TestOntologyMissingFile(t *testing.T) {
	var cfg config.Ontology
	runWithFlags(t, cfg.Flags(), []string{"--ontology", "/no/such/file.toml"}, func(ctx context.Context, c *cli.Command) error {
		_, err := cfg.Configure()
		gt.Error(t, err)
		return nil
	})
}

func TestPipelineOptionsFromDefaults(t *testing.T) {
	var cfg config.Pipeline
	runWithFlags(t, cfg.Flags(), nil, func(ctx context.Context, c *cli.Command) error {
		opts := cfg.Options()
		gt.A(t, opts).Length(5)
		return nil
	})
}
