// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: document and chunk persistence
//   - SearchEngine: lexical (BM25) index, owned by this application
//   - PostProcessor / PostProcessorPipeline: chunking
//   - TokenCounter: token estimation for context assembly
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - VectorIndex: vector storage/search. Only enabled when
//     EmbeddingService is configured.
//   - EmbeddingService: generates vector embeddings. Without it, semantic
//     search is disabled and queries run lexical-only.
//   - Reranker: cross-encoder scoring. Without it, results keep the
//     fused rank order.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
