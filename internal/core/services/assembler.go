package services

import (
	"fmt"
	"strings"

	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
	"github.com/docsift/docsift/internal/logger"
)

// ContextAssembler formats ranked chunks into a token-budgeted context block
// for prompting, and collects one citation per distinct source.
type ContextAssembler struct {
	counter driven.TokenCounter
}

// NewContextAssembler creates an assembler using the given token estimator.
func NewContextAssembler(counter driven.TokenCounter) *ContextAssembler {
	return &ContextAssembler{counter: counter}
}

// Assemble walks the ranked chunks in order, appending each chunk's
// formatted block until the next block would exceed the token budget.
// Chunks are all-or-nothing: a block is never truncated mid-text. Citations
// are deduplicated by source ID in first-seen order. An empty ranked list
// yields empty context and citations; deciding how to answer without
// context is the caller's concern.
func (a *ContextAssembler) Assemble(ranked domain.RankedResult, tokenBudget int) (string, []domain.Citation, error) {
	if tokenBudget <= 0 {
		return "", nil, fmt.Errorf("%w: token budget must be positive, got %d",
			domain.ErrInvalidConfig, tokenBudget)
	}

	var sb strings.Builder
	var citations []domain.Citation
	cited := make(map[string]bool)

	used := 0
	included := 0

	for _, sc := range ranked {
		block := formatBlock(sc.Chunk)
		cost := a.counter.Count(block)

		if used+cost > tokenBudget {
			logger.Debug("Assembler: stopping at %d/%d tokens, %d chunks included",
				used, tokenBudget, included)
			break
		}

		sb.WriteString(block)
		used += cost
		included++

		if !cited[sc.Chunk.SourceID] {
			cited[sc.Chunk.SourceID] = true
			citations = append(citations, citationFor(sc.Chunk))
		}
	}

	logger.Debug("Assembler: %d chunks, %d citations, ~%d tokens", included, len(citations), used)
	return sb.String(), citations, nil
}

// formatBlock renders one chunk with a reference header naming its source.
func formatBlock(chunk domain.Chunk) string {
	var sb strings.Builder

	sb.WriteString("[source: ")
	sb.WriteString(chunk.SourceID)
	if title := metaString(chunk.Metadata, domain.MetaTitle); title != "" {
		sb.WriteString(" | ")
		sb.WriteString(title)
	}
	if date := metaString(chunk.Metadata, domain.MetaPublishedDate); date != "" {
		sb.WriteString(" | ")
		sb.WriteString(date)
	}
	sb.WriteString("]\n")
	sb.WriteString(chunk.Content)
	sb.WriteString("\n\n")

	return sb.String()
}

func citationFor(chunk domain.Chunk) domain.Citation {
	return domain.Citation{
		SourceID: chunk.SourceID,
		Title:    metaString(chunk.Metadata, domain.MetaTitle),
		DocType:  metaString(chunk.Metadata, domain.MetaDocType),
		Date:     metaString(chunk.Metadata, domain.MetaPublishedDate),
	}
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	if s, ok := meta[key].(string); ok {
		return s
	}
	return ""
}
