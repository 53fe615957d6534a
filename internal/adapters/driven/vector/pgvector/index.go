// Package pgvector provides a PostgreSQL-backed vector index using the
// pgvector extension. Cosine distance drives similarity ordering and an
// ivfflat index keeps searches sublinear.
package pgvector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvec "github.com/pgvector/pgvector-go"

	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
	"github.com/docsift/docsift/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index stores chunk embeddings in a PostgreSQL table with a pgvector
// column. Structured filters are evaluated against the JSONB metadata
// column before distance ordering.
type Index struct {
	pool *pgxpool.Pool
	dims int
}

// New connects to PostgreSQL and prepares the schema. The dimensionality is
// fixed at table creation; re-creating the index with different dimensions
// requires dropping the table.
func New(ctx context.Context, connString string, dims int) (*Index, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("%w: vector dimensions must be positive, got %d",
			domain.ErrInvalidConfig, dims)
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	idx := &Index{pool: pool, dims: dims}
	if err := idx.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Debug("pgvector index ready (%d dimensions)", dims)
	return idx, nil
}

func (idx *Index) initialize(ctx context.Context) error {
	if _, err := idx.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS chunk_vectors (
			chunk_id  TEXT PRIMARY KEY,
			source_id TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			metadata  JSONB
		)`, idx.dims)
	if _, err := idx.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("create chunk_vectors table: %w", err)
	}

	createIndexes := []string{
		`CREATE INDEX IF NOT EXISTS chunk_vectors_embedding_idx
			ON chunk_vectors
			USING ivfflat (embedding vector_cosine_ops)
			WITH (lists = 100)`,
		`CREATE INDEX IF NOT EXISTS chunk_vectors_source_idx
			ON chunk_vectors (source_id)`,
	}
	for _, stmt := range createIndexes {
		if _, err := idx.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// Upsert inserts or replaces a chunk's embedding.
func (idx *Index) Upsert(ctx context.Context, chunkID, sourceID string, embedding []float32, metadata map[string]any) error {
	if len(embedding) != idx.dims {
		return fmt.Errorf("%w: embedding has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(embedding), idx.dims)
	}

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata for %s: %w", chunkID, err)
	}

	_, err = idx.pool.Exec(ctx, `
		INSERT INTO chunk_vectors (chunk_id, source_id, embedding, metadata)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chunk_id) DO UPDATE SET
			source_id = EXCLUDED.source_id,
			embedding = EXCLUDED.embedding,
			metadata  = EXCLUDED.metadata`,
		chunkID, sourceID, pgvec.NewVector(embedding), metaJSON)
	if err != nil {
		return fmt.Errorf("upsert vector %s: %w", chunkID, err)
	}
	return nil
}

// Delete removes a chunk's embedding. Missing IDs are a no-op.
func (idx *Index) Delete(ctx context.Context, chunkID string) error {
	if _, err := idx.pool.Exec(ctx,
		"DELETE FROM chunk_vectors WHERE chunk_id = $1", chunkID); err != nil {
		return fmt.Errorf("delete vector %s: %w", chunkID, err)
	}
	return nil
}

// DeleteBySource removes all embeddings belonging to a source.
func (idx *Index) DeleteBySource(ctx context.Context, sourceID string) error {
	if _, err := idx.pool.Exec(ctx,
		"DELETE FROM chunk_vectors WHERE source_id = $1", sourceID); err != nil {
		return fmt.Errorf("delete vectors for source %s: %w", sourceID, err)
	}
	return nil
}

// Search returns the k nearest chunks by cosine distance, restricted to
// rows whose metadata satisfies the filter. The returned similarity is
// 1 - distance so callers see higher-is-better scores.
func (idx *Index) Search(ctx context.Context, query []float32, k int, filter domain.QueryFilter) ([]driven.VectorHit, error) {
	if len(query) != idx.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), idx.dims)
	}
	if k <= 0 {
		return nil, nil
	}

	where, args := buildFilterClause(filter, 3)

	stmt := fmt.Sprintf(`
		SELECT chunk_id, 1 - (embedding <=> $1) AS similarity
		FROM chunk_vectors
		%s
		ORDER BY embedding <=> $1, chunk_id
		LIMIT $2`, where)

	queryArgs := append([]any{pgvec.NewVector(query), k}, args...)
	rows, err := idx.pool.Query(ctx, stmt, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		var hit driven.VectorHit
		if err := rows.Scan(&hit.ChunkID, &hit.Similarity); err != nil {
			return nil, fmt.Errorf("scan vector hit: %w", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector search rows: %w", err)
	}
	return hits, nil
}

// buildFilterClause renders the structured filter as a WHERE clause over the
// JSONB metadata column. Positional parameters start at startArg because $1
// and $2 are taken by the query vector and the limit.
func buildFilterClause(filter domain.QueryFilter, startArg int) (string, []any) {
	var conds []string
	var args []any
	arg := startArg

	add := func(cond string, value any) {
		conds = append(conds, fmt.Sprintf(cond, arg))
		args = append(args, value)
		arg++
	}

	if filter.Ticker != "" {
		add("metadata->>'ticker' = $%d", filter.Ticker)
	}
	if filter.DocType != "" {
		add("metadata->>'doc_type' = $%d", filter.DocType)
	}
	if filter.FormType != "" {
		add("metadata->>'form_type' = $%d", filter.FormType)
	}
	if filter.DateFrom != nil {
		add("(metadata->>'published_date')::date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		add("(metadata->>'published_date')::date <= $%d", *filter.DateTo)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// Dimensions returns the fixed index dimensionality.
func (idx *Index) Dimensions() int {
	return idx.dims
}

// Close releases the connection pool.
func (idx *Index) Close() error {
	idx.pool.Close()
	return nil
}
