package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/panoptes-lab/panoptes/pkg/cli/config"
	"github.com/panoptes-lab/panoptes/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var ontologyCfg config.Ontology

	return &cli.Command{
		Name:  "validate",
		Usage: "Load an ontology document and report its contents",
		Flags: ontologyCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			registry, err := ontologyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "ontology validation failed")
			}

			snapshot := registry.Snapshot()
			for _, d := range snapshot.Domains() {
				logging.Default().Info("Domain",
					"id", d.ID,
					"name", d.Name,
					"subdomains", len(d.Subdomains),
					"relevant_dimensions", len(d.RelevantDimensions),
				)
			}
			for _, dim := range snapshot.Dimensions() {
				logging.Default().Info("Dimension", "id", dim.ID, "name", dim.Name)
			}
			for _, lv := range snapshot.ExpertiseLevels() {
				logging.Default().Info("Expertise level",
					"id", lv.ID,
					"min_confidence", lv.MinConfidence,
					"max_confidence", lv.MaxConfidence,
				)
			}

			logging.Default().Info("Ontology is valid",
				"path", ontologyCfg.Path(),
				"version", snapshot.Version(),
			)
			return nil
		},
	}
}
