// Package ollama provides a cross-encoder reranker adapter using Ollama.
// The scoring model sees the query and the passage together, which is more
// accurate than comparing their independent embeddings.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/docsift/docsift/internal/core/ports/driven"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "qwen2.5:3b"
	DefaultTimeout = 30 * time.Second
)

// scorePrompt asks for a single number so parsing stays trivial. Low
// temperature keeps the score stable across calls.
const scorePrompt = `Rate how relevant the passage is to the query on a scale from 0 to 10.
Respond with only the number.

Query: %s

Passage: %s

Score:`

// Config holds configuration for the Ollama reranker.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the scoring model to use (default: qwen2.5:3b).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Reranker scores query/passage pairs with an Ollama model.
type Reranker struct {
	client  *http.Client
	baseURL string
	model   string
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewReranker creates a new Ollama reranker.
func NewReranker(cfg Config) *Reranker {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Reranker{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Score rates the relevance of a passage to a query, normalised to [0, 1].
func (r *Reranker) Score(ctx context.Context, query, passage string) (float64, error) {
	reqBody := generateRequest{
		Model:  r.model,
		Prompt: fmt.Sprintf(scorePrompt, query, passage),
		Stream: false,
		Options: &options{
			NumPredict:  8,
			Temperature: 0,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		r.baseURL+"/api/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return 0, fmt.Errorf("ollama error (status %d): failed to read response", resp.StatusCode)
		}
		return 0, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	return parseScore(genResp.Response)
}

// parseScore extracts the leading number from the model output and maps the
// 0-10 scale to [0, 1]. Out-of-range values clamp rather than fail.
func parseScore(response string) (float64, error) {
	text := strings.TrimSpace(response)
	if text == "" {
		return 0, fmt.Errorf("empty score response")
	}

	// The model occasionally appends text after the number.
	if i := strings.IndexAny(text, " \n\t"); i > 0 {
		text = text[:i]
	}
	text = strings.TrimSuffix(text, ".")

	score, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("parse score %q: %w", response, err)
	}

	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return score / 10, nil
}

// ModelName returns the name of the scoring model being used.
func (r *Reranker) ModelName() string {
	return r.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
func (r *Reranker) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: API returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (r *Reranker) Close() error {
	return nil
}
