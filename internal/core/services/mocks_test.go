package services

import (
	"context"
	"strings"
	"sync"

	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
)

// --- Mock implementations of the driven ports ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	dims      int
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return len(m.embedding)
}

func (m *mockEmbeddingService) ProviderID() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	searchErr error
	upsertErr error
	deleteErr error
	dims      int

	mu       sync.Mutex
	upserted []string
	deleted  []string
}

func (m *mockVectorIndex) Upsert(_ context.Context, chunkID, _ string, _ []float32, _ map[string]any) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserted = append(m.upserted, chunkID)
	return nil
}

func (m *mockVectorIndex) Delete(_ context.Context, chunkID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, chunkID)
	return nil
}

func (m *mockVectorIndex) DeleteBySource(_ context.Context, sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, "source:"+sourceID)
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int, _ domain.QueryFilter) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Dimensions() int {
	return m.dims
}

func (m *mockVectorIndex) Close() error {
	return nil
}

// mockSearchEngine implements driven.SearchEngine for testing.
type mockSearchEngine struct {
	hits      []driven.SearchHit
	searchErr error
	indexErr  error
	size      int

	mu      sync.Mutex
	indexed []string
	deleted []string
}

func (m *mockSearchEngine) Index(_ context.Context, chunk domain.Chunk) error {
	if m.indexErr != nil {
		return m.indexErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexed = append(m.indexed, chunk.ID)
	return nil
}

func (m *mockSearchEngine) Delete(_ context.Context, chunkID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, chunkID)
	return nil
}

func (m *mockSearchEngine) DeleteBySource(_ context.Context, sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, "source:"+sourceID)
	return nil
}

func (m *mockSearchEngine) Search(_ context.Context, _ string, _ domain.QueryFilter, limit int) ([]driven.SearchHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if limit > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:limit], nil
}

func (m *mockSearchEngine) Size() int {
	if m.size > 0 {
		return m.size
	}
	return len(m.hits)
}

func (m *mockSearchEngine) Close() error {
	return nil
}

// mockReranker implements driven.Reranker for testing. Scores are looked up
// by passage content; missing passages score zero.
type mockReranker struct {
	scores   map[string]float64
	scoreErr error
	failOn   string // passage content that triggers scoreErr
}

func (m *mockReranker) Score(_ context.Context, _ string, passage string) (float64, error) {
	if m.scoreErr != nil && (m.failOn == "" || m.failOn == passage) {
		return 0, m.scoreErr
	}
	return m.scores[passage], nil
}

func (m *mockReranker) ModelName() string {
	return "mock-rerank"
}

func (m *mockReranker) Ping(_ context.Context) error {
	return nil
}

func (m *mockReranker) Close() error {
	return nil
}

// wordCounter is a deterministic token counter for assembler tests.
type wordCounter struct{}

func (wordCounter) Count(text string) int {
	return len(strings.Fields(text))
}
