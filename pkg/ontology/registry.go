package ontology

import (
	"context"
	_ "embed"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/model/ontology"
	"github.com/panoptes-lab/panoptes/pkg/utils/logging"
)

//go:embed default.toml
var defaultOntology []byte

// Registry holds the current ontology snapshot and supports reloading from
// file without restarting the process. Readers take an immutable snapshot at
// the start of each processing run; a reload never affects an in-flight run.
type Registry struct {
	mu       sync.RWMutex
	path     string // empty means the embedded default
	version  int64
	snapshot *ontology.Snapshot
}

// NewRegistry loads the initial ontology. With an empty path the embedded
// default document is used.
func NewRegistry(path string) (*Registry, error) {
	r := &Registry{path: path}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) load() error {
	var (
		domains    []*ontology.Domain
		dimensions []*ontology.Dimension
		levels     []*ontology.ExpertiseLevel
		err        error
	)

	if r.path == "" {
		domains, dimensions, levels, err = Parse(defaultOntology)
	} else {
		domains, dimensions, levels, err = LoadFile(r.path)
	}
	if err != nil {
		return goerr.Wrap(err, "failed to load ontology", goerr.V("path", r.path))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.version++
	snapshot, err := ontology.NewSnapshot(r.version, domains, dimensions, levels)
	if err != nil {
		r.version--
		return goerr.Wrap(err, "ontology validation failed", goerr.V("path", r.path))
	}
	r.snapshot = snapshot
	return nil
}

// Snapshot returns the current immutable ontology snapshot
func (r *Registry) Snapshot() *ontology.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Reload re-reads the ontology source and atomically swaps the snapshot.
// Supports incremental addition of domains and dimensions at runtime.
func (r *Registry) Reload(ctx context.Context) error {
	if err := r.load(); err != nil {
		return err
	}

	snap := r.Snapshot()
	logging.From(ctx).Info("ontology reloaded",
		"version", snap.Version(),
		"domains", len(snap.Domains()),
		"dimensions", len(snap.Dimensions()),
	)
	return nil
}
