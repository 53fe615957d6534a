package cli

import (
	"context"
	"errors"
	"time"

	"github.com/docsift/docsift/internal/core/domain"
)

// mockIngestService implements driving.IngestService for command tests.
type mockIngestService struct {
	result    *domain.IngestResult
	docs      []domain.Document
	err       error
	ingested  []*domain.Document
	deleted   []string
	listCalls int
}

func (m *mockIngestService) Ingest(_ context.Context, doc *domain.Document) (*domain.IngestResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.ingested = append(m.ingested, doc)
	if m.result != nil {
		return m.result, nil
	}
	return &domain.IngestResult{
		DocumentID: doc.SourceID + ":v1",
		SourceID:   doc.SourceID,
		Version:    1,
		Chunks:     3,
	}, nil
}

func (m *mockIngestService) Delete(_ context.Context, sourceID string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, sourceID)
	return nil
}

func (m *mockIngestService) List(_ context.Context) ([]domain.Document, error) {
	m.listCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

// mockQueryService implements driving.QueryService for command tests.
type mockQueryService struct {
	resp    *domain.QueryResponse
	err     error
	queries []string
	opts    []domain.QueryOptions
}

func (m *mockQueryService) Query(_ context.Context, raw string, opts domain.QueryOptions) (*domain.QueryResponse, error) {
	m.queries = append(m.queries, raw)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return nil, m.err
	}
	if m.resp != nil {
		return m.resp, nil
	}
	return &domain.QueryResponse{
		Query:        raw,
		RefinedQuery: raw,
		Results: domain.RankedResult{
			{Chunk: domain.Chunk{
				ID:       "src-1:0",
				SourceID: "src-1",
				Content:  "quarterly revenue grew",
			}, Score: 0.9},
		},
		Context:   "[source: src-1 | Q3 Report | 2024-07-15]\nquarterly revenue grew",
		Citations: []domain.Citation{{SourceID: "src-1", Title: "Q3 Report", Date: "2024-07-15"}},
	}, nil
}

// setupTestServices wires mock services into the commands and returns a
// cleanup that restores the previous wiring.
func setupTestServices() (*mockIngestService, *mockQueryService, func()) {
	oldIngest, oldQuery := ingestService, queryService
	oldConfig, oldSettings := configStore, settings

	ingest := &mockIngestService{
		docs: []domain.Document{{
			ID:        "doc-1",
			SourceID:  "src-1",
			Version:   1,
			Title:     "Q3 Report",
			CreatedAt: time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC),
		}},
	}
	query := &mockQueryService{}

	ingestService = ingest
	queryService = query
	settings = domain.DefaultSettings()

	cleanup := func() {
		ingestService = oldIngest
		queryService = oldQuery
		configStore = oldConfig
		settings = oldSettings
		rootCmd.SetArgs(nil)
	}
	return ingest, query, cleanup
}

var errService = errors.New("service exploded")
