package driven

import "context"

// Reranker scores a (query, passage) pair with a cross-encoder-style model
// that jointly encodes both texts. This is an optional service - when nil,
// queries keep the fused rank order from hybrid retrieval.
//
// Scoring a pair is expensive relative to index lookups; callers bound
// concurrent Score calls with a worker pool.
type Reranker interface {
	// Score returns a relevance score for the passage against the query,
	// on a single comparable scale (higher is more relevant).
	Score(ctx context.Context, query, passage string) (float64, error)

	// ModelName returns the scoring model identifier for logging.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
