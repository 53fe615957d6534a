package driving

import (
	"context"

	"github.com/docsift/docsift/internal/core/domain"
)

// IngestService brings documents into the retrieval indexes:
// chunk, embed, persist, index.
type IngestService interface {
	// Ingest chunks and indexes a document. Re-ingesting an existing
	// SourceID supersedes the previous version: the new chunk set is
	// written completely before stale chunks are purged, so concurrent
	// readers never observe a partial mix.
	Ingest(ctx context.Context, doc *domain.Document) (*domain.IngestResult, error)

	// Delete removes a source and all of its chunks from every index.
	Delete(ctx context.Context, sourceID string) error

	// List returns the latest version of every ingested document.
	List(ctx context.Context) ([]domain.Document, error)
}
