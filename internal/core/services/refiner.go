package services

import (
	"strings"
	"time"

	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/logger"
)

// Filter key prefixes recognised in raw queries (e.g. "ticker: AAPL").
const (
	filterKeyTicker = "ticker"
	filterKeyForm   = "form"
	filterKeyType   = "type"
	filterKeyDoc    = "doc"
)

// defaultSynonyms expands domain abbreviations so both the original term and
// its expansion remain searchable. Expansion appends, it never replaces.
var defaultSynonyms = map[string][]string{
	"ebitda": {"earnings before interest taxes depreciation amortization"},
	"eps":    {"earnings per share"},
	"capex":  {"capital expenditure"},
	"opex":   {"operating expenses"},
	"fcf":    {"free cash flow"},
	"yoy":    {"year over year"},
	"m&a":    {"mergers and acquisitions"},
	"10-k":   {"annual report"},
	"10-q":   {"quarterly report"},
	"dcf":    {"discounted cash flow"},
}

// QueryRefiner rewrites a raw user query into a refined query string plus a
// structured filter. Extraction is best-effort: malformed filter syntax is
// treated as plain keywords, never an error.
type QueryRefiner struct {
	synonyms map[string][]string
}

// NewQueryRefiner creates a refiner with the built-in domain synonym table.
func NewQueryRefiner() *QueryRefiner {
	return &QueryRefiner{synonyms: defaultSynonyms}
}

// NewQueryRefinerWithSynonyms creates a refiner with a custom synonym table.
func NewQueryRefinerWithSynonyms(synonyms map[string][]string) *QueryRefiner {
	if synonyms == nil {
		synonyms = map[string][]string{}
	}
	return &QueryRefiner{synonyms: synonyms}
}

// Refine extracts a structured filter from the raw query and returns the
// remaining query text with domain synonym expansions appended.
func (r *QueryRefiner) Refine(raw string) (string, domain.QueryFilter) {
	var filter domain.QueryFilter

	tokens := strings.Fields(raw)
	remaining := make([]string, 0, len(tokens))

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if key, value, consumed, ok := matchKeyValue(tokens, i); ok {
			switch key {
			case filterKeyTicker:
				filter.Ticker = strings.ToUpper(value)
			case filterKeyForm:
				filter.FormType = strings.ToUpper(value)
			case filterKeyType, filterKeyDoc:
				filter.DocType = strings.ToLower(value)
			}
			i += consumed - 1
			continue
		}

		if consumed, ok := matchDatePhrase(tokens, i, &filter); ok {
			i += consumed - 1
			continue
		}

		remaining = append(remaining, tok)
	}

	filter.Boolean = parseBoolean(remaining)

	refined := strings.Join(r.expand(remaining), " ")

	if !filter.IsZero() {
		logger.Debug("Refiner: extracted filter ticker=%q form=%q type=%q from=%v to=%v boolean=%t",
			filter.Ticker, filter.FormType, filter.DocType,
			filter.DateFrom, filter.DateTo, !filter.Boolean.IsZero())
	}

	return refined, filter
}

// expand appends synonym expansions for any recognised term, deduplicated,
// preserving the original tokens in place.
func (r *QueryRefiner) expand(tokens []string) []string {
	out := make([]string, len(tokens))
	copy(out, tokens)

	seen := make(map[string]bool)
	for _, tok := range tokens {
		key := strings.ToLower(strings.Trim(tok, ".,;"))
		for _, expansion := range r.synonyms[key] {
			if !seen[expansion] {
				seen[expansion] = true
				out = append(out, expansion)
			}
		}
	}
	return out
}

// matchKeyValue recognises "key: value", "key:value" and "key : value"
// filter tokens at position i. Returns the key, the value, and how many
// tokens were consumed.
func matchKeyValue(tokens []string, i int) (key, value string, consumed int, ok bool) {
	tok := strings.ToLower(tokens[i])

	for _, k := range []string{filterKeyTicker, filterKeyForm, filterKeyType, filterKeyDoc} {
		switch {
		case tok == k+":" && i+1 < len(tokens):
			return k, tokens[i+1], 2, true
		case strings.HasPrefix(tok, k+":") && len(tok) > len(k)+1:
			return k, tokens[i][len(k)+1:], 1, true
		case tok == k && i+2 < len(tokens) && tokens[i+1] == ":":
			return k, tokens[i+2], 3, true
		}
	}
	return "", "", 0, false
}

// matchDatePhrase recognises natural-language date expressions starting at
// position i: "from X", "since X", "after X", "before X", "until X" and
// "between X and Y". Returns how many tokens were consumed.
func matchDatePhrase(tokens []string, i int, filter *domain.QueryFilter) (consumed int, ok bool) {
	word := strings.ToLower(tokens[i])

	switch word {
	case "from", "since", "after":
		if i+1 < len(tokens) {
			if t, parsed := parseDate(tokens[i+1], false); parsed {
				filter.DateFrom = &t
				return 2, true
			}
		}
	case "before", "until":
		if i+1 < len(tokens) {
			if t, parsed := parseDate(tokens[i+1], true); parsed {
				filter.DateTo = &t
				return 2, true
			}
		}
	case "between":
		if i+3 < len(tokens) && strings.EqualFold(tokens[i+2], "and") {
			from, okFrom := parseDate(tokens[i+1], false)
			to, okTo := parseDate(tokens[i+3], true)
			if okFrom && okTo {
				filter.DateFrom = &from
				filter.DateTo = &to
				return 4, true
			}
		}
	}
	return 0, false
}

// parseDate parses "2006-01-02", "2006-01" and "2006" forms. When end is
// true, partial dates resolve to the end of their period so range filters
// stay inclusive.
func parseDate(s string, end bool) (time.Time, bool) {
	s = strings.Trim(s, ".,;")

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01", s); err == nil {
		if end {
			return t.AddDate(0, 1, -1), true
		}
		return t, true
	}
	if t, err := time.Parse("2006", s); err == nil {
		if end {
			return t.AddDate(1, 0, -1), true
		}
		return t, true
	}
	return time.Time{}, false
}

// parseBoolean extracts explicit AND/OR/NOT operators from query tokens into
// a boolean expression. Returns nil when the tokens carry no operators, or
// when the expression is malformed (unbalanced operators) - in both cases
// the query is treated as plain keywords.
func parseBoolean(tokens []string) *domain.BooleanExpr {
	type item struct {
		op   string // "AND", "OR", "NOT", or "" for a term
		term string
	}

	items := make([]item, 0, len(tokens))
	hasOp := false
	for _, tok := range tokens {
		switch strings.ToUpper(tok) {
		case "AND", "&":
			items = append(items, item{op: "AND"})
			hasOp = true
		case "OR", "|":
			items = append(items, item{op: "OR"})
			hasOp = true
		case "NOT", "!":
			items = append(items, item{op: "NOT"})
			hasOp = true
		default:
			if strings.HasPrefix(tok, "!") && len(tok) > 1 {
				items = append(items, item{op: "NOT"}, item{term: normaliseTerm(tok[1:])})
				hasOp = true
			} else {
				items = append(items, item{term: normaliseTerm(tok)})
			}
		}
	}

	if !hasOp {
		return nil
	}

	expr := &domain.BooleanExpr{}
	var lastTerm string
	pendingOp := ""
	negateNext := false

	for _, it := range items {
		switch it.op {
		case "AND", "OR":
			// A binary operator needs a left operand and must not
			// stack on another pending operator.
			if lastTerm == "" || pendingOp != "" || negateNext {
				return nil
			}
			pendingOp = it.op
		case "NOT":
			if negateNext {
				return nil
			}
			negateNext = true
		default:
			term := it.term
			switch {
			case negateNext:
				expr.MustNot = append(expr.MustNot, term)
				negateNext = false
				if pendingOp != "" {
					// "a AND NOT b": the left operand binds as
					// usual, the right is excluded.
					appendTerm(expr, pendingOp, lastTerm)
					pendingOp = ""
				}
				lastTerm = ""
			case pendingOp != "":
				appendTerm(expr, pendingOp, lastTerm)
				appendTerm(expr, pendingOp, term)
				pendingOp = ""
				lastTerm = term
			default:
				if lastTerm != "" && !contains(expr.Must, lastTerm) && !contains(expr.Should, lastTerm) {
					expr.Must = append(expr.Must, lastTerm)
				}
				lastTerm = term
			}
		}
	}

	// Trailing operator with no right operand is malformed.
	if pendingOp != "" || negateNext {
		return nil
	}

	if lastTerm != "" && !contains(expr.Must, lastTerm) && !contains(expr.Should, lastTerm) {
		expr.Must = append(expr.Must, lastTerm)
	}

	if expr.IsZero() {
		return nil
	}
	return expr
}

func appendTerm(expr *domain.BooleanExpr, op, term string) {
	if term == "" || contains(expr.Must, term) || contains(expr.Should, term) {
		return
	}
	if op == "AND" {
		expr.Must = append(expr.Must, term)
	} else {
		expr.Should = append(expr.Should, term)
	}
}

func normaliseTerm(tok string) string {
	return strings.ToLower(strings.Trim(tok, ".,;"))
}

func contains(terms []string, term string) bool {
	for _, t := range terms {
		if t == term {
			return true
		}
	}
	return false
}
