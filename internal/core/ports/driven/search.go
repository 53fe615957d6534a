package driven

import (
	"context"

	"github.com/docsift/docsift/internal/core/domain"
)

// SearchEngine provides lexical full-text search over indexed chunks.
// Backed by an in-memory BM25 inverted index owned by this application.
type SearchEngine interface {
	// Index adds or updates a chunk in the search index.
	Index(ctx context.Context, chunk domain.Chunk) error

	// Delete removes a chunk from the search index.
	Delete(ctx context.Context, chunkID string) error

	// DeleteBySource removes all chunks belonging to a source.
	DeleteBySource(ctx context.Context, sourceID string) error

	// Search scores indexed chunks against the query terms, restricted to
	// chunks satisfying the filter's metadata constraints and boolean
	// expression, and returns the limit highest-scoring chunks.
	Search(ctx context.Context, query string, filter domain.QueryFilter, limit int) ([]SearchHit, error)

	// Size returns the number of indexed chunks.
	Size() int

	// Close releases resources.
	Close() error
}

// SearchHit represents a search result from the engine.
type SearchHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the relevance score (e.g., BM25).
	Score float64
}
