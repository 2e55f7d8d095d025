package ontology

import (
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// Snapshot is an immutable, versioned view of the ontology. Each processing run
// captures one snapshot at start so that concurrent ontology edits never change
// classification results mid-run. All query methods are read-only.
type Snapshot struct {
	version    int64
	loadedAt   time.Time
	domains    map[types.DomainID]*Domain
	dimensions map[types.DimensionID]*Dimension
	levels     []*ExpertiseLevel

	domainOrder    []types.DomainID
	dimensionOrder []types.DimensionID
}

// NewSnapshot validates all entries and their cross-references and builds an
// immutable snapshot. Fails fast on malformed ontology entries rather than
// producing garbage prompts downstream.
func NewSnapshot(version int64, domains []*Domain, dimensions []*Dimension, levels []*ExpertiseLevel) (*Snapshot, error) {
	if len(domains) == 0 {
		return nil, goerr.New("ontology must define at least one domain")
	}
	if len(dimensions) == 0 {
		return nil, goerr.New("ontology must define at least one dimension")
	}

	dimMap := make(map[types.DimensionID]*Dimension, len(dimensions))
	dimOrder := make([]types.DimensionID, 0, len(dimensions))
	for _, dim := range dimensions {
		if err := dim.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid dimension")
		}
		if _, exists := dimMap[dim.ID]; exists {
			return nil, goerr.New("duplicate dimension ID", goerr.V("id", dim.ID))
		}
		dimMap[dim.ID] = dim
		dimOrder = append(dimOrder, dim.ID)
	}

	domMap := make(map[types.DomainID]*Domain, len(domains))
	domOrder := make([]types.DomainID, 0, len(domains))
	for _, dom := range domains {
		dom.Normalize()
		if err := dom.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid domain")
		}
		if _, exists := domMap[dom.ID]; exists {
			return nil, goerr.New("duplicate domain ID", goerr.V("id", dom.ID))
		}
		for _, dimID := range dom.RelevantDimensions {
			if _, exists := dimMap[dimID]; !exists {
				return nil, goerr.New("domain references unknown dimension",
					goerr.V("domain", dom.ID),
					goerr.V("dimension", dimID),
				)
			}
		}
		domMap[dom.ID] = dom
		domOrder = append(domOrder, dom.ID)
	}

	if err := validateBands(levels); err != nil {
		return nil, err
	}

	sort.Slice(domOrder, func(i, j int) bool { return domOrder[i] < domOrder[j] })
	sort.Slice(dimOrder, func(i, j int) bool { return dimOrder[i] < dimOrder[j] })

	sorted := make([]*ExpertiseLevel, len(levels))
	copy(sorted, levels)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinConfidence < sorted[j].MinConfidence })

	return &Snapshot{
		version:        version,
		loadedAt:       time.Now().UTC(),
		domains:        domMap,
		dimensions:     dimMap,
		levels:         sorted,
		domainOrder:    domOrder,
		dimensionOrder: dimOrder,
	}, nil
}

// validateBands checks that expertise bands partition 0-100 with no gaps or overlaps
func validateBands(levels []*ExpertiseLevel) error {
	if len(levels) == 0 {
		return goerr.New("ontology must define at least one expertise level")
	}

	sorted := make([]*ExpertiseLevel, len(levels))
	copy(sorted, levels)
	for _, lv := range sorted {
		if err := lv.Validate(); err != nil {
			return goerr.Wrap(err, "invalid expertise level")
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinConfidence < sorted[j].MinConfidence })

	next := ConfidenceMin
	for _, lv := range sorted {
		if lv.MinConfidence != next {
			return goerr.New("expertise level bands must partition the confidence range",
				goerr.V("id", lv.ID),
				goerr.V("expected_min", next),
				goerr.V("actual_min", lv.MinConfidence),
			)
		}
		next = lv.MaxConfidence + 1
	}
	if next != ConfidenceMax+1 {
		return goerr.New("expertise level bands must cover the confidence range up to 100",
			goerr.V("covered_up_to", next-1),
		)
	}
	return nil
}

// Version returns the snapshot's monotonically increasing version number
func (s *Snapshot) Version() int64 {
	return s.version
}

// LoadedAt returns when the snapshot was constructed
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Domains returns all domains ordered by ID
func (s *Snapshot) Domains() []*Domain {
	out := make([]*Domain, 0, len(s.domainOrder))
	for _, id := range s.domainOrder {
		out = append(out, s.domains[id])
	}
	return out
}

// Domain returns the domain with the given ID
func (s *Snapshot) Domain(id types.DomainID) (*Domain, error) {
	dom, exists := s.domains[id]
	if !exists {
		return nil, goerr.New("domain not found in ontology", goerr.V("id", id))
	}
	return dom, nil
}

// HasDomain reports whether the domain exists in the snapshot
func (s *Snapshot) HasDomain(id types.DomainID) bool {
	_, exists := s.domains[id]
	return exists
}

// Dimensions returns all dimensions ordered by ID
func (s *Snapshot) Dimensions() []*Dimension {
	out := make([]*Dimension, 0, len(s.dimensionOrder))
	for _, id := range s.dimensionOrder {
		out = append(out, s.dimensions[id])
	}
	return out
}

// Dimension returns the dimension with the given ID
func (s *Snapshot) Dimension(id types.DimensionID) (*Dimension, error) {
	dim, exists := s.dimensions[id]
	if !exists {
		return nil, goerr.New("dimension not found in ontology", goerr.V("id", id))
	}
	return dim, nil
}

// ExpertiseLevels returns all expertise levels ordered by band
func (s *Snapshot) ExpertiseLevels() []*ExpertiseLevel {
	out := make([]*ExpertiseLevel, len(s.levels))
	copy(out, s.levels)
	return out
}

// LevelFor returns the expertise level whose band contains the confidence score.
// Bands partition 0-100, so any valid score matches exactly one level.
func (s *Snapshot) LevelFor(confidence int) (*ExpertiseLevel, error) {
	if confidence < ConfidenceMin || confidence > ConfidenceMax {
		return nil, goerr.New("confidence score out of range", goerr.V("confidence", confidence))
	}
	for _, lv := range s.levels {
		if lv.Contains(confidence) {
			return lv, nil
		}
	}
	return nil, goerr.New("no expertise level band contains score", goerr.V("confidence", confidence))
}

// RelevantDimensions returns the resolved dimension set declared by the domain
func (s *Snapshot) RelevantDimensions(domainID types.DomainID) ([]*Dimension, error) {
	dom, err := s.Domain(domainID)
	if err != nil {
		return nil, err
	}
	out := make([]*Dimension, 0, len(dom.RelevantDimensions))
	for _, dimID := range dom.RelevantDimensions {
		dim, err := s.Dimension(dimID)
		if err != nil {
			return nil, err
		}
		out = append(out, dim)
	}
	return out, nil
}
