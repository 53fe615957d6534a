package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Suitable for tests and single-process ephemeral installations.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document // document ID -> document
	chunks    map[string]domain.Chunk    // chunk ID -> chunk
	provider  string                     // embedding provider for stored vectors
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string]domain.Chunk),
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// SaveChunks stores chunks, overwriting any existing chunks with the same IDs.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		s.chunks[c.ID] = c
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// LatestVersion returns the highest stored version for a source,
// or 0 if the source has never been ingested.
func (s *DocumentStore) LatestVersion(_ context.Context, sourceID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	latest := 0
	for _, doc := range s.documents {
		if doc.SourceID == sourceID && doc.Version > latest {
			latest = doc.Version
		}
	}
	return latest, nil
}

// GetChunk retrieves a single chunk by ID.
func (s *DocumentStore) GetChunk(_ context.Context, chunkID string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[chunkID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &chunk, nil
}

// GetChunks retrieves all chunks for a document, ordered by position.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Chunk
	for _, c := range s.chunks {
		if c.DocumentID == documentID {
			result = append(result, c)
		}
	}
	sortChunks(result)
	return result, nil
}

// ChunksBySource retrieves all chunks for a source, ordered by position.
func (s *DocumentStore) ChunksBySource(_ context.Context, sourceID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Chunk
	for _, c := range s.chunks {
		if c.SourceID == sourceID {
			result = append(result, c)
		}
	}
	sortChunks(result)
	return result, nil
}

// DeleteChunks removes the chunks with the given IDs. Missing IDs are ignored.
func (s *DocumentStore) DeleteChunks(_ context.Context, chunkIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range chunkIDs {
		delete(s.chunks, id)
	}
	return nil
}

// DeleteSource removes a source's documents and chunks.
func (s *DocumentStore) DeleteSource(_ context.Context, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, doc := range s.documents {
		if doc.SourceID == sourceID {
			delete(s.documents, id)
		}
	}
	for id, c := range s.chunks {
		if c.SourceID == sourceID {
			delete(s.chunks, id)
		}
	}
	return nil
}

// ListDocuments returns the latest version of every document,
// ordered by source ID.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[string]domain.Document)
	for _, doc := range s.documents {
		if cur, ok := latest[doc.SourceID]; !ok || doc.Version > cur.Version {
			latest[doc.SourceID] = doc
		}
	}

	result := make([]domain.Document, 0, len(latest))
	for _, doc := range latest {
		result = append(result, doc)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SourceID < result[j].SourceID
	})
	return result, nil
}

// EmbeddingProvider returns the provider ID recorded for the collection's
// stored vectors, or empty when nothing has been embedded yet.
func (s *DocumentStore) EmbeddingProvider(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider, nil
}

// SetEmbeddingProvider records the provider ID producing the collection's
// vectors.
func (s *DocumentStore) SetEmbeddingProvider(_ context.Context, providerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider = providerID
	return nil
}

func sortChunks(chunks []domain.Chunk) {
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Position < chunks[j].Position
	})
}
