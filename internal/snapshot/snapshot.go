// Package snapshot reads a single YAML document holding catalog entities and
// their latest facts. It backs the CLI in place of live collaborators and is
// the canonical fixture format for tests.
package snapshot

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/greenlightci/greenlight/internal/catalog"
	"github.com/greenlightci/greenlight/internal/facts"
	"github.com/greenlightci/greenlight/internal/validation"
)

// Document mirrors the snapshot YAML shape. Facts are keyed by stringified
// entity ref, then by retriever id.
type Document struct {
	Entities []catalog.Entity       `yaml:"entities"`
	Facts    map[string]facts.Batch `yaml:"facts"`
}

// Snapshot is an immutable, indexed view of a Document. It implements both
// catalog.Catalog and facts.Store.
type Snapshot struct {
	entities map[string]catalog.Entity
	facts    map[string]facts.Batch
}

var (
	_ catalog.Catalog = (*Snapshot)(nil)
	_ facts.Store     = (*Snapshot)(nil)
)

// Load reads and indexes a snapshot file.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	snap, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// Parse validates and indexes raw snapshot YAML bytes.
func Parse(data []byte) (*Snapshot, error) {
	if issues := validation.ValidateSnapshotBytes(data); len(issues) > 0 {
		return nil, fmt.Errorf("snapshot failed schema validation: %v", issues)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return FromDocument(doc)
}

// FromDocument indexes an in-memory Document. Entities default to kind
// "component" in namespace "default"; duplicate refs are rejected.
func FromDocument(doc Document) (*Snapshot, error) {
	snap := &Snapshot{
		entities: make(map[string]catalog.Entity, len(doc.Entities)),
		facts:    make(map[string]facts.Batch, len(doc.Facts)),
	}

	for _, e := range doc.Entities {
		if e.Name == "" {
			return nil, fmt.Errorf("snapshot entity missing a name")
		}
		if e.Kind == "" {
			e.Kind = "component"
		}
		if e.Namespace == "" {
			e.Namespace = "default"
		}
		key := e.Ref().String()
		if _, dup := snap.entities[key]; dup {
			return nil, fmt.Errorf("duplicate snapshot entity %s", key)
		}
		snap.entities[key] = e
	}

	for rawRef, batch := range doc.Facts {
		ref, err := catalog.ParseRef(rawRef)
		if err != nil {
			return nil, fmt.Errorf("snapshot facts key %q: %w", rawRef, err)
		}
		snap.facts[ref.String()] = batch
	}

	return snap, nil
}

// GetByRef returns the entity for ref, or nil when the snapshot does not
// contain it.
func (s *Snapshot) GetByRef(_ context.Context, ref catalog.Ref) (*catalog.Entity, error) {
	e, ok := s.entities[ref.String()]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// LatestByRetrievers returns the entity's facts filtered down to the
// requested retrievers. Retrievers absent from the snapshot are simply
// missing from the batch.
func (s *Snapshot) LatestByRetrievers(_ context.Context, retrieverIDs []string, ref catalog.Ref) (facts.Batch, error) {
	stored := s.facts[ref.String()]
	batch := make(facts.Batch, len(retrieverIDs))
	for _, id := range retrieverIDs {
		if rf, ok := stored[id]; ok {
			batch[id] = rf
		}
	}
	return batch, nil
}
