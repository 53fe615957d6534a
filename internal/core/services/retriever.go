package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
	"github.com/docsift/docsift/internal/logger"
)

// Degraded-collaborator names reported on QueryResponse.Degraded.
const (
	degradedVector   = "vector"
	degradedLexical  = "lexical"
	degradedReranker = "reranker"
)

// Retriever performs hybrid candidate generation: a semantic lookup against
// the vector index and a lexical lookup against the BM25 index, run
// concurrently and merged by reciprocal rank fusion.
type Retriever struct {
	embedder driven.EmbeddingService // optional; nil disables semantic lookup
	vector   driven.VectorIndex      // optional; nil disables semantic lookup
	lexical  driven.SearchEngine
	docs     driven.DocumentStore
	timeout  time.Duration
}

// NewRetriever creates a hybrid retriever. The embedder and vector index may
// be nil, in which case queries run lexical-only. Every collaborator call is
// bounded by timeout; a timeout counts as that collaborator's failure.
func NewRetriever(
	embedder driven.EmbeddingService,
	vector driven.VectorIndex,
	lexical driven.SearchEngine,
	docs driven.DocumentStore,
	timeout time.Duration,
) *Retriever {
	return &Retriever{
		embedder: embedder,
		vector:   vector,
		lexical:  lexical,
		docs:     docs,
		timeout:  timeout,
	}
}

// Retrieve runs both lookups for the refined query and merges the ranked
// lists. One failing strategy degrades the result to the surviving list;
// both failing returns domain.ErrRetrievalUnavailable. The degraded slice
// names any collaborator that was worked around.
func (r *Retriever) Retrieve(
	ctx context.Context, refined string, filter domain.QueryFilter, initialK int,
) ([]domain.RetrievalCandidate, []string, error) {
	if initialK <= 0 {
		return nil, nil, fmt.Errorf("%w: initial k must be positive, got %d",
			domain.ErrInvalidConfig, initialK)
	}

	logger.Section("Hybrid Retrieval")
	logger.Debug("Query: %q, initialK: %d", refined, initialK)

	var semanticHits []driven.VectorHit
	var lexicalHits []driven.SearchHit
	var semanticErr, lexicalErr error

	// The two lookups have no data dependency; run them concurrently.
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		semanticHits, semanticErr = r.semanticLookup(ctx, refined, filter, initialK)
	}()

	go func() {
		defer wg.Done()
		lexicalHits, lexicalErr = r.lexicalLookup(ctx, refined, filter, initialK)
	}()

	wg.Wait()

	var degraded []string

	switch {
	case semanticErr != nil && lexicalErr != nil:
		logger.Warn("Retrieval: both lookups failed for %q: semantic=%v lexical=%v",
			refined, semanticErr, lexicalErr)
		return nil, nil, fmt.Errorf("%w: semantic: %v; lexical: %v",
			domain.ErrRetrievalUnavailable, semanticErr, lexicalErr)

	case semanticErr != nil:
		logger.Warn("Retrieval: semantic lookup failed for %q, using lexical only: %v",
			refined, semanticErr)
		degraded = append(degraded, degradedVector)

	case lexicalErr != nil:
		logger.Warn("Retrieval: lexical lookup failed for %q, using semantic only: %v",
			refined, lexicalErr)
		degraded = append(degraded, degradedLexical)
	}

	logger.Debug("Retrieval: %d semantic + %d lexical hits", len(semanticHits), len(lexicalHits))

	fused := fuseRanked(semanticHits, lexicalHits)
	candidates, err := r.hydrate(ctx, fused)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("Retrieval: %d fused candidates", len(candidates))
	return candidates, degraded, nil
}

// semanticLookup embeds the query and searches the vector index.
func (r *Retriever) semanticLookup(
	ctx context.Context, query string, filter domain.QueryFilter, k int,
) ([]driven.VectorHit, error) {
	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if r.vector == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	// The stored vectors must come from the configured provider; a
	// matching dimensionality is not enough to make them comparable.
	recorded, err := r.docs.EmbeddingProvider(ctx)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	if recorded != "" && recorded != r.embedder.ProviderID() {
		return nil, fmt.Errorf("%w: collection embedded with %s, configured %s",
			domain.ErrProviderMismatch, recorded, r.embedder.ProviderID())
	}

	embedCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	embedding, err := r.embedder.Embed(embedCtx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Mixing embedding providers within one collection is prohibited;
	// fail the query rather than compare incompatible vectors.
	if dims := r.vector.Dimensions(); dims > 0 && dims != len(embedding) {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection has %d",
			domain.ErrDimensionMismatch, len(embedding), dims)
	}

	searchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	hits, err := r.vector.Search(searchCtx, embedding, k, filter)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return hits, nil
}

// lexicalLookup searches the BM25 index with the query's terms.
func (r *Retriever) lexicalLookup(
	ctx context.Context, query string, filter domain.QueryFilter, k int,
) ([]driven.SearchHit, error) {
	if r.lexical == nil {
		return nil, domain.ErrSearchUnavailable
	}
	if r.lexical.Size() == 0 {
		return nil, fmt.Errorf("%w: index is empty", domain.ErrSearchUnavailable)
	}

	searchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	hits, err := r.lexical.Search(searchCtx, query, filter, k)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	return hits, nil
}

// fusedScore is an intermediate fusion record keyed by chunk ID.
type fusedScore struct {
	chunkID string
	score   float64
}

// fuseRanked merges the two ranked lists using reciprocal rank fusion: each
// hit contributes 1/rank (1-based) and a chunk found by both strategies sums
// both contributions. Rank-based fusion makes the incomparable raw score
// scales (cosine similarity vs BM25) combinable without normalisation, and
// rewards chunks found by both strategies. Ties break by ascending chunk ID
// so results are reproducible.
func fuseRanked(semantic []driven.VectorHit, lexical []driven.SearchHit) []fusedScore {
	scores := make(map[string]float64, len(semantic)+len(lexical))

	for rank, hit := range semantic {
		scores[hit.ChunkID] += 1.0 / float64(rank+1)
	}
	for rank, hit := range lexical {
		scores[hit.ChunkID] += 1.0 / float64(rank+1)
	}

	fused := make([]fusedScore, 0, len(scores))
	for id, score := range scores {
		fused = append(fused, fusedScore{chunkID: id, score: score})
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].score != fused[j].score {
			return fused[i].score > fused[j].score
		}
		return fused[i].chunkID < fused[j].chunkID
	})

	return fused
}

// hydrate resolves fused chunk IDs into candidate records carrying full
// chunk snapshots. Chunks deleted between lookup and hydration are skipped.
func (r *Retriever) hydrate(ctx context.Context, fused []fusedScore) ([]domain.RetrievalCandidate, error) {
	candidates := make([]domain.RetrievalCandidate, 0, len(fused))

	for _, fs := range fused {
		chunk, err := r.docs.GetChunk(ctx, fs.chunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get chunk %s: %w", fs.chunkID, err)
		}

		candidates = append(candidates, domain.RetrievalCandidate{
			Chunk:  *chunk,
			Score:  fs.score,
			Source: domain.SourceFused,
		})
	}

	return candidates, nil
}
