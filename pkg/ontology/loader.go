package ontology

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/model/ontology"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	"github.com/pelletier/go-toml/v2"
)

// Document is the TOML representation of the ontology file
type Document struct {
	Domains         []DomainEntry         `toml:"domains"`
	Dimensions      []DimensionEntry      `toml:"dimensions"`
	ExpertiseLevels []ExpertiseLevelEntry `toml:"expertise_levels"`
}

// DomainEntry represents a domain definition in the ontology file
type DomainEntry struct {
	ID          string           `toml:"id"`
	Name        string           `toml:"name"`
	Description string           `toml:"description"`
	Keywords    []string         `toml:"keywords"`
	Dimensions  []string         `toml:"dimensions"`
	Subdomains  []SubdomainEntry `toml:"subdomains"`
}

// SubdomainEntry represents a subdomain definition in the ontology file
type SubdomainEntry struct {
	ID       string   `toml:"id"`
	Name     string   `toml:"name"`
	Keywords []string `toml:"keywords"`
}

// DimensionEntry represents an evaluation dimension definition in the ontology
// file. Scale holds the textual meaning of points 1 through 5, in order.
type DimensionEntry struct {
	ID          string   `toml:"id"`
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Scale       []string `toml:"scale"`
}

// ExpertiseLevelEntry represents an expertise level band in the ontology file
type ExpertiseLevelEntry struct {
	ID            string `toml:"id"`
	Name          string `toml:"name"`
	Description   string `toml:"description"`
	MinConfidence int    `toml:"min_confidence"`
	MaxConfidence int    `toml:"max_confidence"`
}

// Parse decodes a TOML ontology document and converts it to domain values.
// Validation happens in ontology.NewSnapshot, which the caller invokes with
// the returned entries.
func Parse(data []byte) ([]*ontology.Domain, []*ontology.Dimension, []*ontology.ExpertiseLevel, error) {
	var doc Document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, nil, nil, goerr.Wrap(err, "failed to parse ontology TOML")
	}

	domains := make([]*ontology.Domain, 0, len(doc.Domains))
	for _, entry := range doc.Domains {
		dims := make([]types.DimensionID, 0, len(entry.Dimensions))
		for _, dim := range entry.Dimensions {
			dims = append(dims, types.DimensionID(dim))
		}
		subs := make([]ontology.Subdomain, 0, len(entry.Subdomains))
		for _, sub := range entry.Subdomains {
			subs = append(subs, ontology.Subdomain{
				ID:       sub.ID,
				Name:     sub.Name,
				Keywords: sub.Keywords,
			})
		}
		domains = append(domains, &ontology.Domain{
			ID:                 types.DomainID(entry.ID),
			Name:               entry.Name,
			Description:        entry.Description,
			Keywords:           entry.Keywords,
			Subdomains:         subs,
			RelevantDimensions: dims,
		})
	}

	dimensions := make([]*ontology.Dimension, 0, len(doc.Dimensions))
	for _, entry := range doc.Dimensions {
		if len(entry.Scale) != ontology.ScaleMax-ontology.ScaleMin+1 {
			return nil, nil, nil, goerr.New("dimension scale must list exactly 5 point meanings",
				goerr.V("id", entry.ID),
				goerr.V("points", len(entry.Scale)),
			)
		}
		scale := make(map[int]string, len(entry.Scale))
		for i, meaning := range entry.Scale {
			scale[ontology.ScaleMin+i] = meaning
		}
		dimensions = append(dimensions, &ontology.Dimension{
			ID:          types.DimensionID(entry.ID),
			Name:        entry.Name,
			Description: entry.Description,
			Scale:       scale,
		})
	}

	levels := make([]*ontology.ExpertiseLevel, 0, len(doc.ExpertiseLevels))
	for _, entry := range doc.ExpertiseLevels {
		levels = append(levels, &ontology.ExpertiseLevel{
			ID:            types.ExpertiseLevelID(entry.ID),
			Name:          entry.Name,
			Description:   entry.Description,
			MinConfidence: entry.MinConfidence,
			MaxConfidence: entry.MaxConfidence,
		})
	}

	return domains, dimensions, levels, nil
}

// LoadFile reads and parses an ontology TOML file
func LoadFile(path string) ([]*ontology.Domain, []*ontology.Dimension, []*ontology.ExpertiseLevel, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, goerr.Wrap(err, "failed to read ontology file", goerr.V("path", path))
	}
	return Parse(data)
}
