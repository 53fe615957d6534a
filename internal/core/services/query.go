package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
	"github.com/docsift/docsift/internal/core/ports/driving"
	"github.com/docsift/docsift/internal/logger"
)

// Ensure QueryPipeline implements the interface.
var _ driving.QueryService = (*QueryPipeline)(nil)

// QueryPipeline runs the full retrieval pipeline:
// refine, retrieve (hybrid), rerank, assemble.
type QueryPipeline struct {
	refiner   *QueryRefiner
	retriever *Retriever
	reranker  driven.Reranker // optional; nil keeps fused order
	assembler *ContextAssembler
	settings  domain.RetrievalSettings
}

// NewQueryPipeline creates the query orchestrator. The reranker may be nil,
// in which case results keep the fused rank order. Settings are validated
// eagerly.
func NewQueryPipeline(
	refiner *QueryRefiner,
	retriever *Retriever,
	reranker driven.Reranker,
	assembler *ContextAssembler,
	settings domain.RetrievalSettings,
) (*QueryPipeline, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &QueryPipeline{
		refiner:   refiner,
		retriever: retriever,
		reranker:  reranker,
		assembler: assembler,
		settings:  settings,
	}, nil
}

// Query answers a raw query with ranked chunks, assembled context and
// citations. The pipeline is request-scoped: nothing is shared between
// concurrent queries beyond the read-mostly indexes.
func (p *QueryPipeline) Query(
	ctx context.Context, raw string, opts domain.QueryOptions,
) (*domain.QueryResponse, error) {
	logger.Section("Query Execution")
	logger.Debug("Raw query: %q", raw)

	initialK := opts.InitialK
	if initialK <= 0 {
		initialK = p.settings.InitialK
	}
	finalK := opts.FinalK
	if finalK <= 0 {
		finalK = p.settings.FinalK
	}
	tokenBudget := opts.TokenBudget
	if tokenBudget <= 0 {
		tokenBudget = p.settings.TokenBudget
	}

	refined, filter := p.refiner.Refine(raw)
	logger.Debug("Refined query: %q", refined)

	candidates, degraded, err := p.retriever.Retrieve(ctx, refined, filter, initialK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	ranked, rerankDegraded := p.rerank(ctx, refined, candidates, finalK)
	if rerankDegraded {
		degraded = append(degraded, degradedReranker)
	}

	contextText, citations, err := p.assembler.Assemble(ranked, tokenBudget)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	if len(ranked) == 0 {
		logger.Info("Query %q returned no candidates", raw)
	}

	return &domain.QueryResponse{
		Query:        raw,
		RefinedQuery: refined,
		Filter:       filter,
		Results:      ranked,
		Context:      contextText,
		Citations:    citations,
		Degraded:     degraded,
	}, nil
}

// rerank scores every candidate against the query with the cross-encoder
// collaborator, bounded by the configured worker count, then sorts by the
// new scores and truncates to finalK. Scoring failures fall back to the
// fused order - degraded, never fatal. Returns the ranked result and
// whether the fallback was taken.
func (p *QueryPipeline) rerank(
	ctx context.Context, query string, candidates []domain.RetrievalCandidate, finalK int,
) (domain.RankedResult, bool) {
	if len(candidates) == 0 {
		return domain.RankedResult{}, false
	}

	if p.reranker == nil {
		logger.Debug("Rerank: no reranker configured, keeping fused order")
		return passthrough(candidates, finalK), false
	}

	logger.Debug("Rerank: scoring %d candidates with %s", len(candidates), p.reranker.ModelName())

	scores := make([]float64, len(candidates))
	errs := make([]error, len(candidates))

	// Bounded fan-out: scoring is model-bound and must not consume
	// unbounded resources. Results are collected and sorted only after
	// all scoring completes.
	sem := make(chan struct{}, p.settings.RerankWorkers)
	var wg sync.WaitGroup

	for i := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			scoreCtx, cancel := context.WithTimeout(ctx, p.settings.CollaboratorTimeout)
			defer cancel()

			scores[i], errs[i] = p.reranker.Score(scoreCtx, query, candidates[i].Chunk.Content)
		}(i)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			logger.Warn("Rerank: scoring failed for query %q (chunk %s): %v; keeping fused order",
				query, candidates[i].Chunk.ID, err)
			return passthrough(candidates, finalK), true
		}
	}

	ranked := make(domain.RankedResult, len(candidates))
	for i, c := range candidates {
		ranked[i] = domain.ScoredChunk{Chunk: c.Chunk, Score: scores[i]}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Chunk.ID < ranked[j].Chunk.ID
	})

	return truncate(ranked, finalK), false
}

// passthrough keeps the retriever's fused ordering, truncated to finalK.
func passthrough(candidates []domain.RetrievalCandidate, finalK int) domain.RankedResult {
	ranked := make(domain.RankedResult, len(candidates))
	for i, c := range candidates {
		ranked[i] = domain.ScoredChunk{Chunk: c.Chunk, Score: c.Score}
	}
	return truncate(ranked, finalK)
}

func truncate(ranked domain.RankedResult, finalK int) domain.RankedResult {
	if len(ranked) > finalK {
		return ranked[:finalK]
	}
	return ranked
}
