package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates invalid pipeline parameters, e.g. a chunk
	// overlap that is not smaller than the window size. Surfaced
	// immediately at construction, never retried.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrRetrievalUnavailable indicates both the semantic and the lexical
	// lookup failed. Callers should report search as unavailable rather
	// than silently returning no results.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrDimensionMismatch indicates an embedding's dimensionality does
	// not match the vector collection. Mixing embedding providers within
	// one collection is prohibited; the query fails fast.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrProviderMismatch indicates the configured embedding provider
	// differs from the one recorded for the collection's stored vectors.
	// Mixing providers within one collection is prohibited even when the
	// dimensionalities happen to agree; the vectors are not comparable.
	ErrProviderMismatch = errors.New("embedding provider mismatch")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Semantic search is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRerankerUnavailable indicates the reranking model is not
	// configured. Queries fall back to fused-score ordering.
	ErrRerankerUnavailable = errors.New("reranker unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not
	// configured. Semantic similarity search is disabled.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrSearchUnavailable indicates the lexical index is not configured.
	// Keyword search is disabled.
	ErrSearchUnavailable = errors.New("lexical index unavailable")
)
