package config

import (
	"github.com/m-mizutani/goerr/v2"
	ontologystore "github.com/panoptes-lab/panoptes/pkg/ontology"
	"github.com/panoptes-lab/panoptes/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Ontology holds CLI flags for the ontology document
type Ontology struct {
	path string
}

// Flags returns CLI flags for ontology configuration
func (o *Ontology) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "ontology",
			Usage:       "Path to the ontology TOML file (built-in default when empty)",
			Sources:     cli.EnvVars("PANOPTES_ONTOLOGY"),
			Destination: &o.path,
		},
	}
}

// Path returns the configured ontology file path
func (o *Ontology) Path() string {
	return o.path
}

// Configure loads and validates the ontology into a registry
func (o *Ontology) Configure() (*ontologystore.Registry, error) {
	registry, err := ontologystore.NewRegistry(o.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load ontology", goerr.V("path", o.path))
	}

	snapshot := registry.Snapshot()
	logging.Default().Info("Ontology loaded",
		"path", o.path,
		"version", snapshot.Version(),
		"domains", len(snapshot.Domains()),
		"dimensions", len(snapshot.Dimensions()),
	)
	return registry, nil
}
