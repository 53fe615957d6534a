package domain

// CandidateSource tags which retrieval strategy produced a candidate.
type CandidateSource string

// Candidate sources.
const (
	// SourceSemantic marks candidates from vector similarity search.
	SourceSemantic CandidateSource = "semantic"

	// SourceLexical marks candidates from keyword (BM25) search.
	SourceLexical CandidateSource = "lexical"

	// SourceFused marks candidates after reciprocal rank fusion.
	SourceFused CandidateSource = "fused"
)

// RetrievalCandidate is a transient per-query record: a chunk snapshot with
// the score assigned by its retrieval strategy. Raw scores are not comparable
// across strategies; fusion works on ranks instead.
type RetrievalCandidate struct {
	// Chunk is the resolved chunk snapshot for downstream formatting.
	Chunk Chunk

	// Score is strategy-specific: cosine similarity for semantic hits,
	// BM25 for lexical hits, summed reciprocal rank after fusion.
	Score float64

	// Source identifies the strategy that produced this candidate.
	Source CandidateSource
}

// ScoredChunk pairs a chunk with a relevance score on a single comparable
// scale (the reranker's output, or the fused score in degraded mode).
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// RankedResult is the final reranked sequence returned to the caller.
// Invariant: non-increasing by Score, length bounded by the configured
// final result count.
type RankedResult []ScoredChunk

// Citation describes one source document backing assembled context.
type Citation struct {
	// SourceID identifies the cited source document.
	SourceID string

	// Title is the document title, may be empty.
	Title string

	// DocType is the document type metadata, may be empty.
	DocType string

	// Date is the published date metadata, may be empty.
	Date string
}

// QueryOptions configures a single retrieval query.
type QueryOptions struct {
	// InitialK is the candidate count requested from each index.
	InitialK int

	// FinalK bounds the reranked result length.
	FinalK int

	// TokenBudget bounds the assembled context size in model tokens.
	TokenBudget int
}

// QueryResponse carries everything a caller needs to prompt an LLM:
// the assembled context, the citation list, and the ranked chunks.
type QueryResponse struct {
	// Query is the original raw query.
	Query string

	// RefinedQuery is the query after filter extraction and expansion.
	RefinedQuery string

	// Filter is the structured filter extracted from the raw query.
	Filter QueryFilter

	// Results is the final ranked chunk list.
	Results RankedResult

	// Context is the token-budgeted prompt context block. Empty when
	// retrieval returned no candidates; the caller decides how to respond.
	Context string

	// Citations lists one entry per distinct source in Context.
	Citations []Citation

	// Degraded names collaborators that failed and were worked around
	// (e.g. "vector", "reranker"). Empty on a clean query.
	Degraded []string
}

// IngestResult summarises a completed ingestion.
type IngestResult struct {
	// DocumentID is the stored document version's ID.
	DocumentID string

	// SourceID is the stable source identifier.
	SourceID string

	// Version is the stored document version.
	Version int

	// Chunks is the number of chunks written.
	Chunks int

	// Retired is the number of superseded chunks purged.
	Retired int
}
