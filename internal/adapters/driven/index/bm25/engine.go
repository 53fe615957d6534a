// Package bm25 provides an in-memory inverted index with BM25 scoring.
// It is the lexical half of hybrid retrieval, owned by this application
// rather than delegated to an external search service.
package bm25

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.SearchEngine = (*Engine)(nil)

// BM25 parameters. k1 controls term-frequency saturation, b controls
// document-length normalisation. The values are the standard defaults.
const (
	k1 = 1.2
	b  = 0.75
)

// operator words stripped from scoring terms; they carry structure, not
// content, and are handled through the filter's boolean expression.
var operatorTokens = map[string]bool{
	"and": true, "or": true, "not": true,
}

// entry is the indexed form of one chunk.
type entry struct {
	sourceID string
	terms    map[string]int // term frequency within the chunk
	length   int            // total term count
	metadata map[string]any
}

// Engine is an in-memory BM25 inverted index over chunk text.
// Reads may run concurrently; writes take the exclusive lock.
type Engine struct {
	mu         sync.RWMutex
	entries    map[string]*entry         // chunkID -> entry
	postings   map[string]map[string]int // term -> chunkID -> tf
	totalTerms int
}

// New creates an empty index.
func New() *Engine {
	return &Engine{
		entries:  make(map[string]*entry),
		postings: make(map[string]map[string]int),
	}
}

// Index adds or updates a chunk in the index.
func (e *Engine) Index(_ context.Context, chunk domain.Chunk) error {
	terms := termCounts(tokenize(chunk.Content))
	length := 0
	for _, tf := range terms {
		length += tf
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.removeLocked(chunk.ID)

	e.entries[chunk.ID] = &entry{
		sourceID: chunk.SourceID,
		terms:    terms,
		length:   length,
		metadata: chunk.Metadata,
	}
	for term, tf := range terms {
		posting, ok := e.postings[term]
		if !ok {
			posting = make(map[string]int)
			e.postings[term] = posting
		}
		posting[chunk.ID] = tf
	}
	e.totalTerms += length

	return nil
}

// Delete removes a chunk from the index.
func (e *Engine) Delete(_ context.Context, chunkID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeLocked(chunkID)
	return nil
}

// DeleteBySource removes all chunks belonging to a source.
func (e *Engine) DeleteBySource(_ context.Context, sourceID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, ent := range e.entries {
		if ent.sourceID == sourceID {
			e.removeLocked(id)
		}
	}
	return nil
}

// removeLocked drops a chunk and its postings. Caller holds the write lock.
func (e *Engine) removeLocked(chunkID string) {
	ent, ok := e.entries[chunkID]
	if !ok {
		return
	}
	for term := range ent.terms {
		if posting, ok := e.postings[term]; ok {
			delete(posting, chunkID)
			if len(posting) == 0 {
				delete(e.postings, term)
			}
		}
	}
	e.totalTerms -= ent.length
	delete(e.entries, chunkID)
}

// Size returns the number of indexed chunks.
func (e *Engine) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.entries)
}

// Search scores indexed chunks against the query terms with BM25,
// restricted to chunks satisfying the filter's metadata constraints and
// boolean expression. Terms joined by AND require all present, OR requires
// at least one, NOT excludes. Ties break by ascending chunk ID.
func (e *Engine) Search(
	_ context.Context, query string, filter domain.QueryFilter, limit int,
) ([]driven.SearchHit, error) {
	scoring := scoringTerms(query)

	e.mu.RLock()
	defer e.mu.RUnlock()

	n := len(e.entries)
	if n == 0 || limit <= 0 {
		return nil, nil
	}
	avgLen := float64(e.totalTerms) / float64(n)

	hits := make([]driven.SearchHit, 0, limit)
	for id, ent := range e.entries {
		if !filter.MatchesMetadata(ent.metadata) {
			continue
		}
		if !matchesBoolean(ent, filter.Boolean) {
			continue
		}

		score := e.scoreLocked(ent, scoring, n, avgLen)
		if score <= 0 {
			continue
		}
		hits = append(hits, driven.SearchHit{ChunkID: id, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Close releases resources.
func (e *Engine) Close() error {
	return nil
}

// scoreLocked computes the BM25 score of one entry. Caller holds a read lock.
func (e *Engine) scoreLocked(ent *entry, terms []string, n int, avgLen float64) float64 {
	score := 0.0
	for _, term := range terms {
		tf, ok := ent.terms[term]
		if !ok {
			continue
		}
		df := len(e.postings[term])
		idf := math.Log(1.0 + (float64(n)-float64(df)+0.5)/(float64(df)+0.5))
		norm := float64(tf) * (k1 + 1) /
			(float64(tf) + k1*(1-b+b*float64(ent.length)/avgLen))
		score += idf * norm
	}
	return score
}

// matchesBoolean evaluates a boolean expression against an indexed entry.
// A nil expression matches everything.
func matchesBoolean(ent *entry, expr *domain.BooleanExpr) bool {
	if expr.IsZero() {
		return true
	}
	for _, term := range expr.Must {
		if !hasTerm(ent, term) {
			return false
		}
	}
	for _, term := range expr.MustNot {
		if hasTerm(ent, term) {
			return false
		}
	}
	if len(expr.Should) > 0 {
		any := false
		for _, term := range expr.Should {
			if hasTerm(ent, term) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	return true
}

// hasTerm reports whether all of a term's tokens appear in the entry.
// Multi-token terms ("10-k" tokenises to "10", "k") require every token.
func hasTerm(ent *entry, term string) bool {
	tokens := tokenize(term)
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if _, ok := ent.terms[tok]; !ok {
			return false
		}
	}
	return true
}

// scoringTerms tokenizes a query and drops structural operator tokens.
func scoringTerms(query string) []string {
	tokens := tokenize(query)
	terms := tokens[:0]
	for _, tok := range tokens {
		if !operatorTokens[tok] {
			terms = append(terms, tok)
		}
	}
	return terms
}

// tokenize lowercases and splits on any non-alphanumeric rune. Queries and
// chunk content pass through the same tokenizer so terms always align.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}
