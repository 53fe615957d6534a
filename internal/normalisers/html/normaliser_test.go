package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestExtensions(t *testing.T) {
	normaliser := New()
	exts := normaliser.Extensions()

	require.NotEmpty(t, exts)
	assert.Contains(t, exts, ".html")
	assert.Contains(t, exts, ".htm")
}

func TestNormalise_Success(t *testing.T) {
	normaliser := New()

	input := `<html><head><title>Test Page</title></head><body><p>Hello World</p></body></html>`

	title, text, err := normaliser.Normalise([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, "Test Page", title)
	assert.Equal(t, "Hello World", text)
}

func TestNormalise_NoTitle(t *testing.T) {
	normaliser := New()

	title, text, err := normaliser.Normalise([]byte(`<body><p>Content only</p></body>`))
	require.NoError(t, err)
	assert.Empty(t, title)
	assert.Equal(t, "Content only", text)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "simple title",
			content:  `<title>My Page</title>`,
			expected: "My Page",
		},
		{
			name:     "title with attributes",
			content:  `<title data-test="x">Attributed</title>`,
			expected: "Attributed",
		},
		{
			name:     "title with entities",
			content:  `<title>Q&amp;A Session</title>`,
			expected: "Q&A Session",
		},
		{
			name:     "title with surrounding whitespace",
			content:  "<title>\n  Padded Title\n</title>",
			expected: "Padded Title",
		},
		{
			name:     "no title tag",
			content:  `<h1>Heading only</h1>`,
			expected: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractTitle(tc.content))
		})
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "paragraphs become lines",
			input:    `<p>First</p><p>Second</p>`,
			expected: "First\nSecond",
		},
		{
			name:     "script removed",
			input:    `<p>Visible</p><script>alert("hidden")</script>`,
			expected: "Visible",
		},
		{
			name:     "style removed",
			input:    `<style>body { color: red; }</style><p>Text</p>`,
			expected: "Text",
		},
		{
			name:     "comments removed",
			input:    `<!-- hidden comment --><p>Shown</p>`,
			expected: "Shown",
		},
		{
			name:     "br converts to newline",
			input:    `Line one<br>Line two<br/>Line three`,
			expected: "Line one\nLine two\nLine three",
		},
		{
			name:     "entities decoded",
			input:    `<p>Fish &amp; Chips &lt;daily&gt;</p>`,
			expected: "Fish & Chips <daily>",
		},
		{
			name:     "spaces collapsed",
			input:    `<p>Too     many   spaces</p>`,
			expected: "Too many spaces",
		},
		{
			name:     "list items on separate lines",
			input:    `<ul><li>One</li><li>Two</li></ul>`,
			expected: "One\nTwo",
		},
		{
			name:     "svg removed",
			input:    `<svg viewBox="0 0 1 1"><path d="M0 0"/></svg><p>After</p>`,
			expected: "After",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stripHTML(tc.input))
		})
	}
}

func TestNormalise_FullDocument(t *testing.T) {
	normaliser := New()

	input := `<!DOCTYPE html>
<html>
<head>
  <title>Quarterly Report</title>
  <style>.hidden { display: none; }</style>
  <script src="analytics.js"></script>
</head>
<body>
  <h1>Results</h1>
  <p>Revenue grew <strong>12%</strong> year over year.</p>
  <ul>
    <li>Segment A</li>
    <li>Segment B</li>
  </ul>
  <!-- internal note -->
</body>
</html>`

	title, text, err := normaliser.Normalise([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, "Quarterly Report", title)
	assert.Contains(t, text, "Results")
	assert.Contains(t, text, "Revenue grew 12% year over year.")
	assert.Contains(t, text, "Segment A")
	assert.NotContains(t, text, "analytics.js")
	assert.NotContains(t, text, "display: none")
	assert.NotContains(t, text, "internal note")
	assert.NotContains(t, text, "<")
}

func BenchmarkNormalise(b *testing.B) {
	normaliser := New()
	content := []byte(`<html><head><title>Bench</title></head><body><p>Some <b>bold</b> text with <a href="#">a link</a>.</p></body></html>`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = normaliser.Normalise(content)
	}
}
