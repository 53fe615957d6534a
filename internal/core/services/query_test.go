package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
)

func testRetrievalSettings() domain.RetrievalSettings {
	s := domain.DefaultSettings().Retrieval
	s.InitialK = 10
	s.FinalK = 3
	s.TokenBudget = 1000
	return s
}

// setupQueryPipeline wires a pipeline over an in-memory doc store seeded with
// chunk-a..chunk-d and the given lexical hits.
func setupQueryPipeline(t *testing.T, reranker driven.Reranker, lexical *mockSearchEngine) *QueryPipeline {
	t.Helper()

	docs := setupRetrieverDocStore(t)
	retriever := NewRetriever(nil, nil, lexical, docs, testTimeout)
	assembler := NewContextAssembler(wordCounter{})

	pipeline, err := NewQueryPipeline(
		NewQueryRefiner(), retriever, reranker, assembler, testRetrievalSettings())
	require.NoError(t, err)
	return pipeline
}

func TestNewQueryPipeline_InvalidSettings(t *testing.T) {
	settings := testRetrievalSettings()
	settings.FinalK = 0

	_, err := NewQueryPipeline(NewQueryRefiner(), nil, nil, nil, settings)

	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestQueryPipeline_Query_NoReranker_KeepsFusedOrder(t *testing.T) {
	lexical := &mockSearchEngine{
		hits: []driven.SearchHit{
			{ChunkID: "chunk-a", Score: 9.0},
			{ChunkID: "chunk-b", Score: 7.0},
		},
	}
	pipeline := setupQueryPipeline(t, nil, lexical)

	resp, err := pipeline.Query(context.Background(), "content", domain.QueryOptions{})

	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "chunk-a", resp.Results[0].Chunk.ID)
	assert.Equal(t, "chunk-b", resp.Results[1].Chunk.ID)
	assert.Equal(t, "content", resp.Query)
	assert.Equal(t, "content", resp.RefinedQuery)
	assert.NotEmpty(t, resp.Context)
	require.Len(t, resp.Citations, 1)
	assert.Equal(t, "src-1", resp.Citations[0].SourceID)
	// Running without a reranker is the configured shape, not a degradation.
	assert.NotContains(t, resp.Degraded, degradedReranker)
}

func TestQueryPipeline_Query_RerankerReorders(t *testing.T) {
	lexical := &mockSearchEngine{
		hits: []driven.SearchHit{
			{ChunkID: "chunk-a", Score: 9.0},
			{ChunkID: "chunk-b", Score: 7.0},
			{ChunkID: "chunk-c", Score: 5.0},
		},
	}
	reranker := &mockReranker{scores: map[string]float64{
		"content of chunk-a": 0.2,
		"content of chunk-b": 0.9,
		"content of chunk-c": 0.5,
	}}
	pipeline := setupQueryPipeline(t, reranker, lexical)

	resp, err := pipeline.Query(context.Background(), "content", domain.QueryOptions{})

	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "chunk-b", resp.Results[0].Chunk.ID)
	assert.Equal(t, "chunk-c", resp.Results[1].Chunk.ID)
	assert.Equal(t, "chunk-a", resp.Results[2].Chunk.ID)
	assert.InDelta(t, 0.9, resp.Results[0].Score, 1e-9)
	assert.NotContains(t, resp.Degraded, degradedReranker)
}

func TestQueryPipeline_Query_RerankerFailureFallsBack(t *testing.T) {
	lexical := &mockSearchEngine{
		hits: []driven.SearchHit{
			{ChunkID: "chunk-a", Score: 9.0},
			{ChunkID: "chunk-b", Score: 7.0},
		},
	}
	reranker := &mockReranker{scoreErr: errors.New("model unavailable")}
	pipeline := setupQueryPipeline(t, reranker, lexical)

	resp, err := pipeline.Query(context.Background(), "content", domain.QueryOptions{})

	// Scoring failure degrades to the fused order, never fails the query.
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "chunk-a", resp.Results[0].Chunk.ID)
	assert.Contains(t, resp.Degraded, degradedReranker)
}

func TestQueryPipeline_Query_PartialRerankerFailureFallsBack(t *testing.T) {
	lexical := &mockSearchEngine{
		hits: []driven.SearchHit{
			{ChunkID: "chunk-a", Score: 9.0},
			{ChunkID: "chunk-b", Score: 7.0},
		},
	}
	reranker := &mockReranker{
		scores:   map[string]float64{"content of chunk-a": 0.1},
		scoreErr: errors.New("timeout"),
		failOn:   "content of chunk-b",
	}
	pipeline := setupQueryPipeline(t, reranker, lexical)

	resp, err := pipeline.Query(context.Background(), "content", domain.QueryOptions{})

	// One failed score invalidates the whole reranked ordering.
	require.NoError(t, err)
	assert.Equal(t, "chunk-a", resp.Results[0].Chunk.ID)
	assert.Contains(t, resp.Degraded, degradedReranker)
}

func TestQueryPipeline_Query_TruncatesToFinalK(t *testing.T) {
	lexical := &mockSearchEngine{
		hits: []driven.SearchHit{
			{ChunkID: "chunk-a", Score: 9.0},
			{ChunkID: "chunk-b", Score: 8.0},
			{ChunkID: "chunk-c", Score: 7.0},
			{ChunkID: "chunk-d", Score: 6.0},
		},
	}
	pipeline := setupQueryPipeline(t, nil, lexical)

	resp, err := pipeline.Query(context.Background(), "content", domain.QueryOptions{FinalK: 2})

	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)
}

func TestQueryPipeline_Query_NoCandidates(t *testing.T) {
	lexical := &mockSearchEngine{size: 5} // non-empty index, zero hits
	pipeline := setupQueryPipeline(t, nil, lexical)

	resp, err := pipeline.Query(context.Background(), "nothing matches", domain.QueryOptions{})

	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Empty(t, resp.Context)
	assert.Empty(t, resp.Citations)
}

func TestQueryPipeline_Query_PropagatesRetrievalFailure(t *testing.T) {
	lexical := &mockSearchEngine{searchErr: errors.New("index corrupted"), size: 5}
	pipeline := setupQueryPipeline(t, nil, lexical)

	_, err := pipeline.Query(context.Background(), "content", domain.QueryOptions{})

	assert.ErrorIs(t, err, domain.ErrRetrievalUnavailable)
}

func TestQueryPipeline_Query_FilterFlowsThrough(t *testing.T) {
	lexical := &mockSearchEngine{
		hits: []driven.SearchHit{{ChunkID: "chunk-a", Score: 1.0}},
	}
	pipeline := setupQueryPipeline(t, nil, lexical)

	resp, err := pipeline.Query(context.Background(), "ticker: AAPL margins", domain.QueryOptions{})

	require.NoError(t, err)
	assert.Equal(t, "AAPL", resp.Filter.Ticker)
	assert.Equal(t, "margins", resp.RefinedQuery)
}
