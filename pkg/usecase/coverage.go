package usecase

import (
	"sort"

	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
)

// DetectGaps returns the core domains not covered by any accepted review,
// sorted by domain ID. A domain counts as covered whether the accepted review
// is human or synthetic. Deterministic given its inputs.
func DetectGaps(accepted []*model.Review, coreDomains []types.DomainID) []types.DomainID {
	covered := make(map[types.DomainID]bool, len(accepted))
	for _, rv := range accepted {
		if rv.Accepted() {
			covered[rv.Annotation.DomainID] = true
		}
	}

	var gaps []types.DomainID
	for _, id := range coreDomains {
		if !covered[id] {
			gaps = append(gaps, id)
		}
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i] < gaps[j] })
	return gaps
}
