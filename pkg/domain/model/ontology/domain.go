package ontology

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// Subdomain is a more specific area inside a domain with its own keyword bag.
// Subdomain matches are used as a tiebreaker during classification.
type Subdomain struct {
	ID       string
	Name     string
	Keywords []string
}

// Validate checks if the Subdomain is valid
func (s *Subdomain) Validate() error {
	if s.ID == "" {
		return goerr.New("subdomain ID is required")
	}
	if s.Name == "" {
		return goerr.New("subdomain name is required", goerr.V("id", s.ID))
	}
	if len(s.Keywords) == 0 {
		return goerr.New("subdomain keyword set cannot be empty", goerr.V("id", s.ID))
	}
	return nil
}

// Domain represents a knowledge domain reviews are classified into
type Domain struct {
	ID                 types.DomainID
	Name               string
	Description        string
	Keywords           []string
	Subdomains         []Subdomain
	RelevantDimensions []types.DimensionID
}

// Normalize lower-cases all keyword sets for matching. Called once at load time;
// domains are immutable afterwards.
func (d *Domain) Normalize() {
	for i, kw := range d.Keywords {
		d.Keywords[i] = strings.ToLower(kw)
	}
	for i := range d.Subdomains {
		for j, kw := range d.Subdomains[i].Keywords {
			d.Subdomains[i].Keywords[j] = strings.ToLower(kw)
		}
	}
}

// Validate checks if the Domain is valid
func (d *Domain) Validate() error {
	if err := d.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid domain ID")
	}
	if d.Name == "" {
		return goerr.New("domain name is required", goerr.V("id", d.ID))
	}
	if len(d.Keywords) == 0 {
		return goerr.New("domain keyword set cannot be empty", goerr.V("id", d.ID))
	}
	if len(d.RelevantDimensions) == 0 {
		return goerr.New("domain must declare at least one relevant dimension", goerr.V("id", d.ID))
	}
	seen := make(map[types.DimensionID]bool)
	for _, dim := range d.RelevantDimensions {
		if err := dim.Validate(); err != nil {
			return goerr.Wrap(err, "invalid relevant dimension ID", goerr.V("domain", d.ID))
		}
		if seen[dim] {
			return goerr.New("duplicate relevant dimension", goerr.V("domain", d.ID), goerr.V("dimension", dim))
		}
		seen[dim] = true
	}
	subIDs := make(map[string]bool)
	for i := range d.Subdomains {
		if err := d.Subdomains[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid subdomain", goerr.V("domain", d.ID))
		}
		if subIDs[d.Subdomains[i].ID] {
			return goerr.New("duplicate subdomain ID", goerr.V("domain", d.ID), goerr.V("subdomain", d.Subdomains[i].ID))
		}
		subIDs[d.Subdomains[i].ID] = true
	}
	return nil
}
