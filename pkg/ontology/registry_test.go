package ontology_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	"github.com/panoptes-lab/panoptes/pkg/ontology"
)

func TestRegistryDefault(t *testing.T) {
	reg, err := ontology.NewRegistry("")
	gt.NoError(t, err)

	snap := reg.Snapshot()
	gt.Value(t, snap.Version()).Equal(int64(1))
	gt.A(t, snap.Domains()).Length(6)
	gt.A(t, snap.Dimensions()).Length(6)
	gt.A(t, snap.ExpertiseLevels()).Length(5)

	gt.B(t, snap.HasDomain(types.DomainID("technical"))).True()
	gt.B(t, snap.HasDomain(types.DomainID("clinical"))).True()

	dims, err := snap.RelevantDimensions(types.DomainID("business"))
	gt.NoError(t, err)
	gt.A(t, dims).Length(3)
}

func TestRegistryDefaultBands(t *testing.T) {
	reg, err := ontology.NewRegistry("")
	gt.NoError(t, err)
	snap := reg.Snapshot()

	for _, tc := range []struct {
		confidence int
		levelID    types.ExpertiseLevelID
	}{
		{0, "beginner"},
		{40, "beginner"},
		{41, "skilled"},
		{70, "skilled"},
		{71, "talented"},
		{85, "talented"},
		{86, "seasoned"},
		{95, "seasoned"},
		{96, "expert"},
		{100, "expert"},
	} {
		lv, err := snap.LevelFor(tc.confidence)
		gt.NoError(t, err)
		gt.Value(t, lv.ID).Equal(tc.levelID)
	}

	_, err = snap.LevelFor(101)
	gt.Error(t, err)
}

func TestRegistryFileAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ontology.toml")
	gt.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0600))

	reg, err := ontology.NewRegistry(path)
	gt.NoError(t, err)

	first := reg.Snapshot()
	gt.Value(t, first.Version()).Equal(int64(1))
	gt.A(t, first.Domains()).Length(1)

	// Add a second domain and reload. The old snapshot must stay intact.
	extended := sampleDoc + `
[[domains]]
id = "business"
name = "Business"
description = "Market expertise"
keywords = ["market", "revenue"]
dimensions = ["innovation"]
`
	gt.NoError(t, os.WriteFile(path, []byte(extended), 0600))
	gt.NoError(t, reg.Reload(context.Background()))

	second := reg.Snapshot()
	gt.Value(t, second.Version()).Equal(int64(2))
	gt.A(t, second.Domains()).Length(2)
	gt.A(t, first.Domains()).Length(1)
}

func TestRegistryReloadKeepsSnapshotOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ontology.toml")
	gt.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0600))

	reg, err := ontology.NewRegistry(path)
	gt.NoError(t, err)

	gt.NoError(t, os.WriteFile(path, []byte("not toml at all ["), 0600))
	gt.Error(t, reg.Reload(context.Background()))

	snap := reg.Snapshot()
	gt.Value(t, snap.Version()).Equal(int64(1))
	gt.A(t, snap.Domains()).Length(1)
}

func TestRegistryRejectsGappyBands(t *testing.T) {
	doc := `
[[domains]]
id = "technical"
name = "Technical"
description = "d"
keywords = ["code"]
dimensions = ["innovation"]

[[dimensions]]
id = "innovation"
name = "Innovation"
description = "d"
scale = ["a", "b", "c", "d", "e"]

[[expertise_levels]]
id = "novice"
name = "Novice"
description = "d"
min_confidence = 0
max_confidence = 40

[[expertise_levels]]
id = "expert"
name = "Expert"
description = "d"
min_confidence = 45
max_confidence = 100
`
	path := filepath.Join(t.TempDir(), "ontology.toml")
	gt.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	_, err := ontology.NewRegistry(path)
	gt.Error(t, err)
}
