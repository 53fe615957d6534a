package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBooleanExpr_IsZero(t *testing.T) {
	var nilExpr *BooleanExpr
	assert.True(t, nilExpr.IsZero())
	assert.True(t, (&BooleanExpr{}).IsZero())
	assert.False(t, (&BooleanExpr{Must: []string{"revenue"}}).IsZero())
	assert.False(t, (&BooleanExpr{MustNot: []string{"draft"}}).IsZero())
}

func TestQueryFilter_IsZero(t *testing.T) {
	assert.True(t, QueryFilter{}.IsZero())

	now := time.Now()
	assert.False(t, QueryFilter{Ticker: "AAPL"}.IsZero())
	assert.False(t, QueryFilter{DateFrom: &now}.IsZero())
	assert.False(t, QueryFilter{Boolean: &BooleanExpr{Must: []string{"x"}}}.IsZero())
}

func TestQueryFilter_MatchesMetadata(t *testing.T) {
	meta := map[string]any{
		MetaTicker:        "AAPL",
		MetaDocType:       "filing",
		MetaFormType:      "10-K",
		MetaPublishedDate: "2024-03-15",
	}

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	outside := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		filter   QueryFilter
		expected bool
	}{
		{"empty filter matches", QueryFilter{}, true},
		{"ticker match", QueryFilter{Ticker: "AAPL"}, true},
		{"ticker mismatch", QueryFilter{Ticker: "MSFT"}, false},
		{"doc type match", QueryFilter{DocType: "filing"}, true},
		{"doc type mismatch", QueryFilter{DocType: "news"}, false},
		{"form type match", QueryFilter{FormType: "10-K"}, true},
		{"date within range", QueryFilter{DateFrom: &from, DateTo: &to}, true},
		{"date before range", QueryFilter{DateFrom: &outside}, false},
		{"date after range", QueryFilter{DateTo: &from}, false},
		{"combined all match", QueryFilter{Ticker: "AAPL", FormType: "10-K", DateFrom: &from}, true},
		{"combined one mismatch", QueryFilter{Ticker: "AAPL", FormType: "10-Q"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.filter.MatchesMetadata(meta))
		})
	}
}

func TestQueryFilter_MatchesMetadata_MissingKeys(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Missing metadata fails a set constraint.
	assert.False(t, QueryFilter{Ticker: "AAPL"}.MatchesMetadata(nil))
	assert.False(t, QueryFilter{Ticker: "AAPL"}.MatchesMetadata(map[string]any{}))
	assert.False(t, QueryFilter{DateFrom: &from}.MatchesMetadata(map[string]any{
		MetaTicker: "AAPL",
	}))

	// Unparseable dates behave like missing dates.
	assert.False(t, QueryFilter{DateFrom: &from}.MatchesMetadata(map[string]any{
		MetaPublishedDate: "last tuesday",
	}))
}

func TestQueryFilter_MatchesMetadata_TimeValue(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	meta := map[string]any{
		MetaPublishedDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, QueryFilter{DateFrom: &from}.MatchesMetadata(meta))
}
