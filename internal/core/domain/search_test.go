package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidateSource_Values(t *testing.T) {
	assert.Equal(t, CandidateSource("semantic"), SourceSemantic)
	assert.Equal(t, CandidateSource("lexical"), SourceLexical)
	assert.Equal(t, CandidateSource("fused"), SourceFused)
}

func TestRetrievalCandidate_Fields(t *testing.T) {
	candidate := RetrievalCandidate{
		Chunk:  Chunk{ID: "src-1:0", Content: "text"},
		Score:  1.5,
		Source: SourceFused,
	}

	assert.Equal(t, "src-1:0", candidate.Chunk.ID)
	assert.Equal(t, 1.5, candidate.Score)
	assert.Equal(t, SourceFused, candidate.Source)
}

func TestQueryResponse_Fields(t *testing.T) {
	resp := QueryResponse{
		Query:        "revenue ticker: AAPL",
		RefinedQuery: "revenue",
		Results: RankedResult{
			{Chunk: Chunk{ID: "src-1:0"}, Score: 0.9},
		},
		Context:   "[source: src-1]\ntext\n\n",
		Citations: []Citation{{SourceID: "src-1", Title: "Report"}},
		Degraded:  []string{"vector"},
	}

	assert.Equal(t, "revenue", resp.RefinedQuery)
	assert.Len(t, resp.Results, 1)
	assert.Len(t, resp.Citations, 1)
	assert.Contains(t, resp.Degraded, "vector")
}

func TestIngestResult_Fields(t *testing.T) {
	result := IngestResult{
		DocumentID: "doc-1",
		SourceID:   "src-1",
		Version:    3,
		Chunks:     12,
		Retired:    2,
	}

	assert.Equal(t, 3, result.Version)
	assert.Equal(t, 12, result.Chunks)
	assert.Equal(t, 2, result.Retired)
}
