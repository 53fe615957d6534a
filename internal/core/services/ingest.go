package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
	"github.com/docsift/docsift/internal/core/ports/driving"
	"github.com/docsift/docsift/internal/logger"
)

// Ensure IngestOrchestrator implements the interface.
var _ driving.IngestService = (*IngestOrchestrator)(nil)

// IngestOrchestrator brings documents into the retrieval indexes:
// chunk, embed, persist, index lexically.
type IngestOrchestrator struct {
	pipeline driven.PostProcessorPipeline
	embedder driven.EmbeddingService // optional; nil skips vectors
	docs     driven.DocumentStore
	vector   driven.VectorIndex // optional; nil skips vectors
	lexical  driven.SearchEngine
	timeout  time.Duration
}

// NewIngestOrchestrator creates the ingestion service. The embedder and
// vector index may be nil together, producing a lexical-only installation.
func NewIngestOrchestrator(
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	docs driven.DocumentStore,
	vector driven.VectorIndex,
	lexical driven.SearchEngine,
	timeout time.Duration,
) *IngestOrchestrator {
	return &IngestOrchestrator{
		pipeline: pipeline,
		embedder: embedder,
		docs:     docs,
		vector:   vector,
		lexical:  lexical,
		timeout:  timeout,
	}
}

// Ingest chunks, embeds and indexes a document. Re-ingesting an existing
// SourceID supersedes the previous version: chunk IDs derive from source and
// ordinal, so writing the new set overwrites the live entries in place and
// only then are stale higher-ordinal chunks purged. Readers never observe a
// gap, only a brief mix of versions at identical ordinals.
func (o *IngestOrchestrator) Ingest(ctx context.Context, doc *domain.Document) (*domain.IngestResult, error) {
	if doc == nil || doc.SourceID == "" {
		return nil, fmt.Errorf("%w: document requires a source ID", domain.ErrInvalidInput)
	}

	logger.Section("Ingestion")
	logger.Debug("Source: %s (%d bytes)", doc.SourceID, len(doc.Content))

	prevVersion, err := o.docs.LatestVersion(ctx, doc.SourceID)
	if err != nil {
		return nil, fmt.Errorf("latest version for %s: %w", doc.SourceID, err)
	}

	// Snapshot the outgoing chunk set before writing the new one, so
	// stale ordinals can be retired afterwards.
	var oldChunks []domain.Chunk
	if prevVersion > 0 {
		oldChunks, err = o.docs.ChunksBySource(ctx, doc.SourceID)
		if err != nil {
			return nil, fmt.Errorf("chunks for %s: %w", doc.SourceID, err)
		}
	}

	stored := *doc
	stored.ID = uuid.New().String()
	stored.Version = prevVersion + 1
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	chunks, err := o.pipeline.Process(ctx, &stored)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", doc.SourceID, err)
	}
	logger.Debug("Chunked into %d chunks", len(chunks))

	if err := o.embedChunks(ctx, chunks); err != nil {
		return nil, err
	}

	if err := o.docs.SaveDocument(ctx, &stored); err != nil {
		return nil, fmt.Errorf("save document %s: %w", doc.SourceID, err)
	}
	if err := o.docs.SaveChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("save chunks for %s: %w", doc.SourceID, err)
	}

	for i := range chunks {
		if o.vector != nil && chunks[i].Embedding != nil {
			if err := o.vector.Upsert(ctx, chunks[i].ID, chunks[i].SourceID,
				chunks[i].Embedding, chunks[i].Metadata); err != nil {
				return nil, fmt.Errorf("vector upsert %s: %w", chunks[i].ID, err)
			}
		}
		if err := o.lexical.Index(ctx, chunks[i]); err != nil {
			return nil, fmt.Errorf("lexical index %s: %w", chunks[i].ID, err)
		}
	}

	retired, err := o.retireStale(ctx, oldChunks, len(chunks))
	if err != nil {
		return nil, err
	}

	logger.Info("Ingested %s v%d: %d chunks, %d retired",
		doc.SourceID, stored.Version, len(chunks), retired)

	return &domain.IngestResult{
		DocumentID: stored.ID,
		SourceID:   stored.SourceID,
		Version:    stored.Version,
		Chunks:     len(chunks),
		Retired:    retired,
	}, nil
}

// embedChunks fills chunk embeddings in one batch call. Embedding failures
// are fatal for the ingest: a half-embedded source would leave semantic and
// lexical views inconsistent.
func (o *IngestOrchestrator) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	if o.embedder == nil || o.vector == nil || len(chunks) == 0 {
		return nil
	}

	if err := o.checkProvider(ctx); err != nil {
		return err
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	embedCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	embeddings, err := o.embedder.EmbedBatch(embedCtx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrInvalidInput, len(embeddings), len(chunks))
	}

	if dims := o.vector.Dimensions(); dims > 0 {
		for _, e := range embeddings {
			if len(e) != dims {
				return fmt.Errorf("%w: embedding has %d dimensions, collection has %d",
					domain.ErrDimensionMismatch, len(e), dims)
			}
		}
	}

	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}
	return nil
}

// checkProvider enforces a single embedding provider per collection: the
// first embedded ingest records the provider, later ones must match it.
// Dimensionality alone cannot catch a provider swap whose vector size
// happens to agree.
func (o *IngestOrchestrator) checkProvider(ctx context.Context) error {
	recorded, err := o.docs.EmbeddingProvider(ctx)
	if err != nil {
		return fmt.Errorf("embedding provider: %w", err)
	}

	current := o.embedder.ProviderID()
	if recorded == "" {
		if err := o.docs.SetEmbeddingProvider(ctx, current); err != nil {
			return fmt.Errorf("record embedding provider: %w", err)
		}
		return nil
	}
	if recorded != current {
		return fmt.Errorf("%w: collection embedded with %s, configured %s",
			domain.ErrProviderMismatch, recorded, current)
	}
	return nil
}

// retireStale purges superseded chunks whose ordinal lies beyond the new
// chunk count. Lower ordinals were already overwritten in place.
func (o *IngestOrchestrator) retireStale(ctx context.Context, oldChunks []domain.Chunk, newCount int) (int, error) {
	var staleIDs []string
	for _, c := range oldChunks {
		if c.Position >= newCount {
			staleIDs = append(staleIDs, c.ID)
		}
	}
	if len(staleIDs) == 0 {
		return 0, nil
	}

	if err := o.docs.DeleteChunks(ctx, staleIDs); err != nil {
		return 0, fmt.Errorf("retire chunks: %w", err)
	}
	for _, id := range staleIDs {
		if o.vector != nil {
			if err := o.vector.Delete(ctx, id); err != nil {
				return 0, fmt.Errorf("retire vector %s: %w", id, err)
			}
		}
		if err := o.lexical.Delete(ctx, id); err != nil {
			return 0, fmt.Errorf("retire lexical %s: %w", id, err)
		}
	}

	return len(staleIDs), nil
}

// Delete removes a source and all of its chunks from every index.
func (o *IngestOrchestrator) Delete(ctx context.Context, sourceID string) error {
	if sourceID == "" {
		return fmt.Errorf("%w: source ID required", domain.ErrInvalidInput)
	}

	if err := o.docs.DeleteSource(ctx, sourceID); err != nil {
		return fmt.Errorf("delete source %s: %w", sourceID, err)
	}
	if o.vector != nil {
		if err := o.vector.DeleteBySource(ctx, sourceID); err != nil {
			return fmt.Errorf("delete vectors for %s: %w", sourceID, err)
		}
	}
	if err := o.lexical.DeleteBySource(ctx, sourceID); err != nil {
		return fmt.Errorf("delete lexical entries for %s: %w", sourceID, err)
	}

	logger.Info("Deleted source %s", sourceID)
	return nil
}

// List returns the latest version of every ingested document.
func (o *IngestOrchestrator) List(ctx context.Context) ([]domain.Document, error) {
	return o.docs.ListDocuments(ctx)
}
