// Package facts defines the contract for the fact store: reading the latest
// point-in-time fact snapshots produced by external integrations.
package facts

import (
	"context"

	"github.com/greenlightci/greenlight/internal/catalog"
)

// RetrieverFacts holds the latest fact snapshot from one retriever.
type RetrieverFacts struct {
	Facts map[string]any `yaml:"facts"`
}

// Batch is the result of one batched fetch, keyed by retriever id.
type Batch map[string]RetrieverFacts

// Value looks up a single fact value by (retrieverID, factKey). The second
// return reports whether the retriever and key were present in the batch.
func (b Batch) Value(retrieverID, factKey string) (any, bool) {
	rf, ok := b[retrieverID]
	if !ok {
		return nil, false
	}
	v, ok := rf.Facts[factKey]
	return v, ok
}

// Store is the fact store consumed by the check runner and the status
// aggregators. Implementations return the latest snapshot per retriever for
// the given entity; retrievers with no data are simply absent from the batch.
type Store interface {
	LatestByRetrievers(ctx context.Context, retrieverIDs []string, ref catalog.Ref) (Batch, error)
}
