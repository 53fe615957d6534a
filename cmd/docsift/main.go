// Command docsift is the entry point for the docsift CLI and HTTP server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/docsift/docsift/internal/adapters/driven/ai"
	configfile "github.com/docsift/docsift/internal/adapters/driven/config/file"
	"github.com/docsift/docsift/internal/adapters/driven/index/bm25"
	"github.com/docsift/docsift/internal/adapters/driven/storage/sqlite"
	"github.com/docsift/docsift/internal/adapters/driven/tokens"
	vectormem "github.com/docsift/docsift/internal/adapters/driven/vector/memory"
	"github.com/docsift/docsift/internal/adapters/driven/vector/pgvector"
	"github.com/docsift/docsift/internal/adapters/driving/cli"
	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
	"github.com/docsift/docsift/internal/core/services"
	"github.com/docsift/docsift/internal/postprocessors"
)

// version is overridden at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("config store: %w", err)
	}

	settings, err := configStore.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	docs, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("document store: %w", err)
	}
	defer docs.Close()

	// Collaborators degrade gracefully: an unreachable embedding or
	// reranking service downgrades the pipeline instead of aborting.
	embedder, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, running lexical-only\n", err)
		embedder = nil
	}
	reranker, err := ai.CreateAndValidateReranker(&settings.Reranker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, keeping fused order\n", err)
		reranker = nil
	}
	if embedder != nil {
		defer embedder.Close()
	}
	if reranker != nil {
		defer reranker.Close()
	}

	var vector driven.VectorIndex
	rebuildVectors := false
	if embedder != nil {
		if settings.Storage.PostgresURL != "" {
			vector, err = pgvector.New(ctx, settings.Storage.PostgresURL, embedder.Dimensions())
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: vector index unavailable (%v), running lexical-only\n", err)
			}
		} else {
			vector = vectormem.New(embedder.Dimensions())
			rebuildVectors = true
		}
	}
	if vector != nil {
		defer vector.Close()
	}

	lexical := bm25.New()
	defer lexical.Close()

	// The BM25 index lives in memory; rebuild it from the stored chunks
	// on every start. The in-memory vector index needs the same.
	if err := rebuildIndexes(ctx, docs, lexical, vector, rebuildVectors); err != nil {
		return fmt.Errorf("rebuild indexes: %w", err)
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	chunkProc, err := registry.Build("chunker", map[string]any{
		"window_size": settings.Retrieval.WindowSize,
		"overlap":     settings.Retrieval.Overlap,
	})
	if err != nil {
		return fmt.Errorf("chunker: %w", err)
	}
	pipeline := postprocessors.NewPipeline(chunkProc)

	counter := tokens.NewCounter("cl100k_base")

	ingest := services.NewIngestOrchestrator(
		pipeline, embedder, docs, vector, lexical,
		settings.Retrieval.CollaboratorTimeout)

	refiner := services.NewQueryRefiner()
	retriever := services.NewRetriever(
		embedder, vector, lexical, docs,
		settings.Retrieval.CollaboratorTimeout)
	assembler := services.NewContextAssembler(counter)

	query, err := services.NewQueryPipeline(
		refiner, retriever, reranker, assembler, settings.Retrieval)
	if err != nil {
		return fmt.Errorf("query pipeline: %w", err)
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Ingest:   ingest,
		Query:    query,
		Config:   configStore,
		Settings: settings,
	})

	return cli.Execute()
}

// rebuildIndexes replays the stored chunks into the in-memory indexes.
func rebuildIndexes(
	ctx context.Context,
	docs driven.DocumentStore,
	lexical driven.SearchEngine,
	vector driven.VectorIndex,
	rebuildVectors bool,
) error {
	stored, err := docs.ListDocuments(ctx)
	if err != nil {
		return err
	}

	for _, doc := range stored {
		chunks, err := docs.ChunksBySource(ctx, doc.SourceID)
		if err != nil {
			return err
		}
		for _, chunk := range chunks {
			if err := lexical.Index(ctx, chunk); err != nil {
				return err
			}
			if rebuildVectors && vector != nil && len(chunk.Embedding) > 0 {
				if err := upsertChunkVector(ctx, vector, chunk); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func upsertChunkVector(ctx context.Context, vector driven.VectorIndex, chunk domain.Chunk) error {
	return vector.Upsert(ctx, chunk.ID, chunk.SourceID, chunk.Embedding, chunk.Metadata)
}
