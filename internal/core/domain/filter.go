package domain

import "time"

// BooleanExpr is a conjunction/disjunction/negation over keyword terms,
// extracted from explicit AND/OR/NOT operators in a query.
type BooleanExpr struct {
	// Must terms are all required (AND).
	Must []string

	// Should terms require at least one present (OR).
	Should []string

	// MustNot terms exclude any chunk containing them (NOT).
	MustNot []string
}

// IsZero returns true if the expression carries no terms.
func (e *BooleanExpr) IsZero() bool {
	return e == nil || (len(e.Must) == 0 && len(e.Should) == 0 && len(e.MustNot) == 0)
}

// QueryFilter is a structured set of constraints extracted from a raw query.
// Zero-valued fields are unset. It pre-filters both the lexical and the
// vector index before scoring.
type QueryFilter struct {
	// DateFrom and DateTo bound the document's published date (inclusive).
	DateFrom *time.Time
	DateTo   *time.Time

	// Ticker filters by entity ticker symbol (e.g. "AAPL").
	Ticker string

	// DocType filters by document type (e.g. "filing", "news").
	DocType string

	// FormType filters by regulatory form type (e.g. "10-K").
	FormType string

	// Boolean holds explicit keyword operators, nil when none were found.
	Boolean *BooleanExpr
}

// IsZero returns true when no constraint is set.
func (f QueryFilter) IsZero() bool {
	return f.DateFrom == nil && f.DateTo == nil &&
		f.Ticker == "" && f.DocType == "" && f.FormType == "" &&
		f.Boolean.IsZero()
}

// Metadata keys recognised by MatchesMetadata.
const (
	MetaTicker        = "ticker"
	MetaDocType       = "doc_type"
	MetaFormType      = "form_type"
	MetaPublishedDate = "published_date"
	MetaChunkIndex    = "chunk_index"
	MetaTitle         = "title"
)

// MatchesMetadata reports whether chunk metadata satisfies the structured
// constraints. The boolean expression is evaluated against chunk text by the
// lexical index, not here. Missing metadata fails a set constraint: a chunk
// without a published date never matches a date-bounded query.
func (f QueryFilter) MatchesMetadata(meta map[string]any) bool {
	if f.Ticker != "" && !metaEquals(meta, MetaTicker, f.Ticker) {
		return false
	}
	if f.DocType != "" && !metaEquals(meta, MetaDocType, f.DocType) {
		return false
	}
	if f.FormType != "" && !metaEquals(meta, MetaFormType, f.FormType) {
		return false
	}
	if f.DateFrom != nil || f.DateTo != nil {
		published, ok := metaDate(meta)
		if !ok {
			return false
		}
		if f.DateFrom != nil && published.Before(*f.DateFrom) {
			return false
		}
		if f.DateTo != nil && published.After(*f.DateTo) {
			return false
		}
	}
	return true
}

func metaEquals(meta map[string]any, key, want string) bool {
	val, ok := meta[key]
	if !ok {
		return false
	}
	str, ok := val.(string)
	return ok && str == want
}

// metaDate parses the published_date metadata value. Dates are stored in
// RFC 3339 or plain YYYY-MM-DD form.
func metaDate(meta map[string]any) (time.Time, bool) {
	val, ok := meta[MetaPublishedDate]
	if !ok {
		return time.Time{}, false
	}
	switch v := val.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
