package driving

import (
	"context"

	"github.com/docsift/docsift/internal/core/domain"
)

// QueryService runs the full retrieval pipeline for external actors:
// refine, retrieve (hybrid), rerank, assemble.
type QueryService interface {
	// Query answers a raw query with ranked chunks, an assembled context
	// block, and citations. Zero-valued options fall back to configured
	// defaults. Returns domain.ErrRetrievalUnavailable only when both
	// retrieval strategies failed; a zero-candidate result is not an error.
	Query(ctx context.Context, raw string, opts domain.QueryOptions) (*domain.QueryResponse, error)
}
