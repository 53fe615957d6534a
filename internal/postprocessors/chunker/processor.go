// Package chunker provides a fixed-size text chunking processor.
//
// Window size and overlap are measured in bytes, with no sentence or
// semantic awareness; boundaries falling inside a multibyte UTF-8 rune are
// snapped forward so every chunk is valid UTF-8. That keeps chunking
// deterministic: identical input always yields byte-identical chunk
// sequences, which re-indexing relies on.
package chunker

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/docsift/docsift/internal/core/domain"
)

// DefaultWindowSize is the default number of bytes per chunk.
const DefaultWindowSize = 1000

// DefaultOverlap is the default number of overlapping bytes.
const DefaultOverlap = 200

// Processor splits document content into fixed-size overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	windowSize int
	overlap    int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithWindowSize sets the chunk window size in bytes.
func WithWindowSize(size int) Option {
	return func(p *Processor) {
		p.windowSize = size
	}
}

// WithOverlap sets the overlap between consecutive chunks in bytes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// Returns domain.ErrInvalidConfig when the window size is not positive or
// the overlap is not in [0, window size).
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		windowSize: DefaultWindowSize,
		overlap:    DefaultOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.windowSize <= 0 {
		return nil, fmt.Errorf("%w: window size must be positive, got %d",
			domain.ErrInvalidConfig, p.windowSize)
	}
	if p.overlap < 0 || p.overlap >= p.windowSize {
		return nil, fmt.Errorf("%w: overlap must be in [0, window size), got overlap=%d window=%d",
			domain.ErrInvalidConfig, p.overlap, p.windowSize)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document
// content. Empty content produces no chunks. Chunk IDs derive from the
// source ID and ordinal so re-chunking a source is idempotent.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		return nil, nil
	}

	content := doc.Content
	contentLen := len(content)
	stride := p.windowSize - p.overlap

	chunks := make([]domain.Chunk, 0, contentLen/stride+1)

	position := 0
	for start := 0; start < contentLen; start += stride {
		winStart := alignRune(content, start)
		end := start + p.windowSize
		if end > contentLen {
			end = contentLen
		} else {
			end = alignRune(content, end)
		}
		if winStart >= end {
			break
		}

		chunk := domain.Chunk{
			ID:          domain.ChunkID(doc.SourceID, position),
			DocumentID:  doc.ID,
			SourceID:    doc.SourceID,
			Content:     content[winStart:end],
			StartOffset: winStart,
			EndOffset:   end,
			Position:    position,
			Metadata:    chunkMetadata(doc.Metadata, position),
		}

		chunks = append(chunks, chunk)
		position++

		if end == contentLen {
			break
		}
	}

	return chunks, nil
}

// alignRune moves a byte offset forward to the nearest rune boundary.
// A window edge landing inside a multibyte rune would otherwise split it
// across two chunks and leave both with invalid UTF-8 at the seam.
func alignRune(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}

// chunkMetadata copies document metadata and adds the chunk index.
// Chunks must not alias the document's map: documents are immutable.
func chunkMetadata(docMeta map[string]any, position int) map[string]any {
	meta := make(map[string]any, len(docMeta)+1)
	for k, v := range docMeta {
		meta[k] = v
	}
	meta[domain.MetaChunkIndex] = position
	return meta
}
