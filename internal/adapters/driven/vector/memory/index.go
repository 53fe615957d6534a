// Package memory provides an in-memory vector index using brute-force
// cosine similarity. Suitable for tests and small corpora; larger
// installations use the pgvector-backed index.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

type vectorEntry struct {
	sourceID  string
	embedding []float32
	metadata  map[string]any
}

// Index is an in-memory vector index. The dimensionality is fixed by the
// first upsert; later vectors must match it.
type Index struct {
	mu      sync.RWMutex
	entries map[string]vectorEntry // chunkID -> entry
	dims    int
}

// New creates an empty index. Passing dims 0 defers the dimension check to
// the first upsert.
func New(dims int) *Index {
	return &Index{
		entries: make(map[string]vectorEntry),
		dims:    dims,
	}
}

// Upsert adds or replaces a chunk's embedding.
func (idx *Index) Upsert(_ context.Context, chunkID, sourceID string, embedding []float32, metadata map[string]any) error {
	if len(embedding) == 0 {
		return fmt.Errorf("%w: empty embedding for chunk %s", domain.ErrInvalidInput, chunkID)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.dims == 0 {
		idx.dims = len(embedding)
	} else if len(embedding) != idx.dims {
		return fmt.Errorf("%w: embedding has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(embedding), idx.dims)
	}

	stored := make([]float32, len(embedding))
	copy(stored, embedding)

	idx.entries[chunkID] = vectorEntry{
		sourceID:  sourceID,
		embedding: stored,
		metadata:  metadata,
	}
	return nil
}

// Delete removes a chunk. Missing IDs are a no-op.
func (idx *Index) Delete(_ context.Context, chunkID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.entries, chunkID)
	return nil
}

// DeleteBySource removes all chunks belonging to a source.
func (idx *Index) DeleteBySource(_ context.Context, sourceID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for id, e := range idx.entries {
		if e.sourceID == sourceID {
			delete(idx.entries, id)
		}
	}
	return nil
}

// Search returns the k nearest chunks by cosine similarity, restricted to
// chunks whose metadata satisfies the filter. Ties break by ascending
// chunk ID.
func (idx *Index) Search(_ context.Context, query []float32, k int, filter domain.QueryFilter) ([]driven.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.dims > 0 && len(query) != idx.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), idx.dims)
	}
	if k <= 0 || len(idx.entries) == 0 {
		return nil, nil
	}

	hits := make([]driven.VectorHit, 0, len(idx.entries))
	for id, e := range idx.entries {
		if !filter.MatchesMetadata(e.metadata) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    id,
			Similarity: cosineSimilarity(query, e.embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Dimensions returns the index dimensionality, 0 when still unset.
func (idx *Index) Dimensions() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dims
}

// Close releases resources.
func (idx *Index) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between two vectors of
// equal length. Zero vectors yield similarity 0.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
