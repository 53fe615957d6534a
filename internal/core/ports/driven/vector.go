package driven

import (
	"context"

	"github.com/docsift/docsift/internal/core/domain"
)

// VectorIndex provides semantic similarity search operations over chunk
// embeddings, with metadata pre-filtering delegated to the backend.
type VectorIndex interface {
	// Upsert inserts or replaces the vector for the given chunk ID.
	Upsert(ctx context.Context, chunkID, sourceID string, embedding []float32, metadata map[string]any) error

	// Delete removes a single chunk's vector from the index.
	Delete(ctx context.Context, chunkID string) error

	// DeleteBySource removes all vectors belonging to a source.
	DeleteBySource(ctx context.Context, sourceID string) error

	// Search finds the k nearest neighbours to the query vector among
	// chunks whose metadata satisfies the filter.
	// Returns domain.ErrDimensionMismatch if the query vector's length
	// does not match the collection's dimensionality.
	Search(ctx context.Context, query []float32, k int, filter domain.QueryFilter) ([]VectorHit, error)

	// Dimensions returns the collection's vector size, or 0 before the
	// first insert fixes it.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
