// Package tokens provides token counters for context budgeting.
package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/docsift/docsift/internal/core/ports/driven"
)

// DefaultEncoding matches the tokenizer of current OpenAI models. The exact
// encoding matters less than consistency: the same counter must budget both
// the context block and the model prompt.
const DefaultEncoding = "cl100k_base"

// Ensure both counters implement the interface.
var (
	_ driven.TokenCounter = (*TiktokenCounter)(nil)
	_ driven.TokenCounter = HeuristicCounter{}
)

// TiktokenCounter counts tokens with a real BPE tokenizer.
type TiktokenCounter struct {
	encoder *tiktoken.Tiktoken
}

// NewTiktokenCounter creates a counter for the given encoding name. Empty
// name selects DefaultEncoding.
func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	encoder, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &TiktokenCounter{encoder: encoder}, nil
}

// Count returns the exact token count of the text.
func (c *TiktokenCounter) Count(text string) int {
	return len(c.encoder.Encode(text, nil, nil))
}

// HeuristicCounter estimates tokens as length/4, the usual rule of thumb for
// English text. Used when the BPE data cannot be loaded (it is fetched over
// the network on first use).
type HeuristicCounter struct{}

// Count returns the estimated token count, at least 1 for non-empty text.
func (HeuristicCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n == 0 {
		return 1
	}
	return n
}

// NewCounter returns a tiktoken-backed counter, falling back to the
// heuristic when the encoding is unavailable.
func NewCounter(encoding string) driven.TokenCounter {
	counter, err := NewTiktokenCounter(encoding)
	if err != nil {
		return HeuristicCounter{}
	}
	return counter
}
