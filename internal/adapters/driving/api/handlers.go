package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docsift/docsift/internal/core/domain"
)

// ingestRequest is the JSON body for POST /v1/ingest.
type ingestRequest struct {
	SourceID string         `json:"source_id"`
	Title    string         `json:"title,omitempty"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ingestResponse is the JSON body returned after a successful ingest.
type ingestResponse struct {
	DocumentID string `json:"document_id"`
	SourceID   string `json:"source_id"`
	Version    int    `json:"version"`
	Chunks     int    `json:"chunks"`
	Retired    int    `json:"retired,omitempty"`
}

// queryRequest is the JSON body for POST /v1/query.
type queryRequest struct {
	Query       string `json:"query"`
	InitialK    int    `json:"initial_k,omitempty"`
	FinalK      int    `json:"final_k,omitempty"`
	TokenBudget int    `json:"token_budget,omitempty"`
}

// queryResponse is the JSON body returned for a query.
type queryResponse struct {
	Query        string          `json:"query"`
	RefinedQuery string          `json:"refined_query"`
	Context      string          `json:"context"`
	Citations    []citationJSON  `json:"citations"`
	Results      []rankedHitJSON `json:"results"`
	Degraded     []string        `json:"degraded,omitempty"`
}

type citationJSON struct {
	SourceID string `json:"source_id"`
	Title    string `json:"title,omitempty"`
	DocType  string `json:"doc_type,omitempty"`
	Date     string `json:"date,omitempty"`
}

type rankedHitJSON struct {
	ChunkID  string  `json:"chunk_id"`
	SourceID string  `json:"source_id"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
}

// documentJSON is one entry in GET /v1/documents.
type documentJSON struct {
	SourceID  string `json:"source_id"`
	Version   int    `json:"version"`
	Title     string `json:"title,omitempty"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.SourceID == "" {
		jsonError(w, "source_id is required", http.StatusBadRequest)
		return
	}

	doc := &domain.Document{
		SourceID: req.SourceID,
		Title:    req.Title,
		Content:  req.Content,
		Metadata: req.Metadata,
	}

	result, err := s.ingest.Ingest(r.Context(), doc)
	if err != nil {
		jsonDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ingestResponse{
		DocumentID: result.DocumentID,
		SourceID:   result.SourceID,
		Version:    result.Version,
		Chunks:     result.Chunks,
		Retired:    result.Retired,
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		jsonError(w, "query is required", http.StatusBadRequest)
		return
	}

	resp, err := s.query.Query(r.Context(), req.Query, domain.QueryOptions{
		InitialK:    req.InitialK,
		FinalK:      req.FinalK,
		TokenBudget: req.TokenBudget,
	})
	if err != nil {
		jsonDomainError(w, err)
		return
	}

	out := queryResponse{
		Query:        resp.Query,
		RefinedQuery: resp.RefinedQuery,
		Context:      resp.Context,
		Citations:    make([]citationJSON, 0, len(resp.Citations)),
		Results:      make([]rankedHitJSON, 0, len(resp.Results)),
		Degraded:     resp.Degraded,
	}
	for _, c := range resp.Citations {
		out.Citations = append(out.Citations, citationJSON{
			SourceID: c.SourceID,
			Title:    c.Title,
			DocType:  c.DocType,
			Date:     c.Date,
		})
	}
	for _, sc := range resp.Results {
		out.Results = append(out.Results, rankedHitJSON{
			ChunkID:  sc.Chunk.ID,
			SourceID: sc.Chunk.SourceID,
			Content:  sc.Chunk.Content,
			Score:    sc.Score,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.ingest.List(r.Context())
	if err != nil {
		jsonDomainError(w, err)
		return
	}

	out := make([]documentJSON, 0, len(docs))
	for _, doc := range docs {
		out = append(out, documentJSON{
			SourceID:  doc.SourceID,
			Version:   doc.Version,
			Title:     doc.Title,
			CreatedAt: doc.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": out})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "sourceID")
	if sourceID == "" {
		jsonError(w, "source ID is required", http.StatusBadRequest)
		return
	}

	if err := s.ingest.Delete(r.Context(), sourceID); err != nil {
		jsonDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// jsonDomainError maps domain sentinel errors to HTTP status codes.
func jsonDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidConfig):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrRetrievalUnavailable):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
