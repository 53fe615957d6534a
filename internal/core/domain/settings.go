package domain

import (
	"fmt"
	"time"
)

// AIProvider identifies an AI service provider for embeddings or reranking.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// RetrievalSettings holds the tunable parameters of the retrieval pipeline.
type RetrievalSettings struct {
	// WindowSize is the chunk size in bytes.
	WindowSize int

	// Overlap is the number of bytes shared by consecutive chunks.
	// Must be non-negative and strictly smaller than WindowSize.
	Overlap int

	// InitialK is the candidate count requested from each index per query.
	InitialK int

	// FinalK bounds the reranked result length.
	FinalK int

	// TokenBudget bounds the assembled context size in model tokens.
	TokenBudget int

	// RerankWorkers bounds concurrent reranker scoring calls.
	RerankWorkers int

	// CollaboratorTimeout wraps every call to an external collaborator
	// (embedder, vector store, reranker). A timeout counts as that
	// collaborator's failure and triggers its fallback path.
	CollaboratorTimeout time.Duration
}

// Validate checks parameter invariants eagerly, at construction time.
func (s RetrievalSettings) Validate() error {
	if s.WindowSize <= 0 {
		return fmt.Errorf("%w: window size must be positive, got %d", ErrInvalidConfig, s.WindowSize)
	}
	if s.Overlap < 0 || s.Overlap >= s.WindowSize {
		return fmt.Errorf("%w: overlap must be in [0, window size), got overlap=%d window=%d",
			ErrInvalidConfig, s.Overlap, s.WindowSize)
	}
	if s.InitialK <= 0 {
		return fmt.Errorf("%w: initial k must be positive, got %d", ErrInvalidConfig, s.InitialK)
	}
	if s.FinalK <= 0 {
		return fmt.Errorf("%w: final k must be positive, got %d", ErrInvalidConfig, s.FinalK)
	}
	if s.TokenBudget <= 0 {
		return fmt.Errorf("%w: token budget must be positive, got %d", ErrInvalidConfig, s.TokenBudget)
	}
	if s.RerankWorkers <= 0 {
		return fmt.Errorf("%w: rerank workers must be positive, got %d", ErrInvalidConfig, s.RerankWorkers)
	}
	if s.CollaboratorTimeout <= 0 {
		return fmt.Errorf("%w: collaborator timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the embedding vector size produced by Model.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// RerankerSettings holds reranking model configuration.
type RerankerSettings struct {
	// Provider is the reranker provider.
	Provider AIProvider

	// Model is the scoring model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the reranker is set up.
func (r RerankerSettings) IsConfigured() bool {
	if !r.Provider.IsValid() {
		return false
	}
	if r.Provider.RequiresAPIKey() && r.APIKey == "" {
		return false
	}
	return true
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// DataDir is the directory for the SQLite metadata database.
	// Empty means the default, ~/.docsift/data.
	DataDir string

	// PostgresURL enables the pgvector-backed vector index when set.
	// Empty means the in-memory vector index is used.
	PostgresURL string
}

// ServerSettings holds HTTP API configuration.
type ServerSettings struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
}

// Settings is the complete application configuration, constructed once at
// startup and passed into component constructors explicitly.
type Settings struct {
	Retrieval RetrievalSettings
	Embedding EmbeddingSettings
	Reranker  RerankerSettings
	Storage   StorageSettings
	Server    ServerSettings
}

// DefaultSettings returns the configuration used when no file is present.
func DefaultSettings() Settings {
	return Settings{
		Retrieval: RetrievalSettings{
			WindowSize:          1000,
			Overlap:             200,
			InitialK:            25,
			FinalK:              8,
			TokenBudget:         3000,
			RerankWorkers:       4,
			CollaboratorTimeout: 30 * time.Second,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderOllama,
			Model:      "nomic-embed-text",
			BaseURL:    "http://localhost:11434",
			Dimensions: 768,
		},
		Server: ServerSettings{
			Addr: ":8080",
		},
	}
}

// Validate checks the whole configuration eagerly.
func (s Settings) Validate() error {
	return s.Retrieval.Validate()
}
