package driven

import (
	"context"

	"github.com/docsift/docsift/internal/core/domain"
)

// DocumentStore persists documents and chunks.
// Backed by SQLite for durable storage, or by memory for tests.
type DocumentStore interface {
	// SaveDocument stores a document version.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores chunks, replacing chunks with the same IDs.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document version by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// LatestVersion returns the highest stored version for a source,
	// or 0 when the source has never been ingested.
	LatestVersion(ctx context.Context, sourceID string) (int, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves all chunks for a document version, ordered by
	// position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// ChunksBySource retrieves the live chunk set for a source, ordered
	// by position.
	ChunksBySource(ctx context.Context, sourceID string) ([]domain.Chunk, error)

	// DeleteChunks removes specific chunks by ID.
	DeleteChunks(ctx context.Context, ids []string) error

	// DeleteSource removes all document versions and chunks for a source.
	DeleteSource(ctx context.Context, sourceID string) error

	// ListDocuments returns the latest version of every stored document.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// EmbeddingProvider returns the provider ID recorded for the
	// collection's stored vectors, or empty when nothing has been
	// embedded yet.
	EmbeddingProvider(ctx context.Context) (string, error)

	// SetEmbeddingProvider records the provider ID producing the
	// collection's vectors. Recorded at the first embedded ingest; later
	// ingests and queries must present the same provider.
	SetEmbeddingProvider(ctx context.Context, providerID string) error
}
