package markdown

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
	assert.Contains(t, exts, ".md")
	assert.Contains(t, exts, ".markdown")
}

func TestNormalise_Success(t *testing.T) {
	normaliser := New()

	title, text, err := normaliser.Normalise([]byte("# Hello World\n\nThis is a test."))
	require.NoError(t, err)

	assert.Equal(t, "Hello World", title)
	assert.Equal(t, "Hello World\n\nThis is a test.", text)
}

func TestNormalise_EmptyContent(t *testing.T) {
	normaliser := New()

	title, text, err := normaliser.Normalise([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, title)
	assert.Empty(t, text)
}

func TestNormalise_TitleExtraction(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		expectedTitle string
	}{
		{
			name:          "H1 heading",
			content:       "# My Document\n\nContent here.",
			expectedTitle: "My Document",
		},
		{
			name:          "H1 with extra spaces",
			content:       "#   Spaced Title   \n\nContent",
			expectedTitle: "Spaced Title",
		},
		{
			name:          "H1 after other content",
			content:       "Intro paragraph.\n\n# Late Title\n\nMore.",
			expectedTitle: "Late Title",
		},
		{
			name:          "no heading",
			content:       "Just some content without heading.",
			expectedTitle: "",
		},
		{
			name:          "H2 only",
			content:       "## Second Level\n\nNo H1.",
			expectedTitle: "",
		},
	}

	normaliser := New()

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			title, _, err := normaliser.Normalise([]byte(tc.content))
			require.NoError(t, err)
			assert.Equal(t, tc.expectedTitle, title)
		})
	}
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "headings removed",
			input:    "# Title\n## Subtitle\n### Third",
			expected: "Title\nSubtitle\nThird",
		},
		{
			name:     "bold removed",
			input:    "This is **bold** text",
			expected: "This is bold text",
		},
		{
			name:     "links converted",
			input:    "Click [here](https://example.com)",
			expected: "Click here",
		},
		{
			name:     "images removed",
			input:    "See ![alt text](image.png) here",
			expected: "See  here",
		},
		{
			name:     "code blocks removed",
			input:    "Before\n```go\ncode here\n```\nAfter",
			expected: "Before\n\nAfter",
		},
		{
			name:     "inline code removed",
			input:    "Use `code` here",
			expected: "Use  here",
		},
		{
			name:     "blockquotes cleaned",
			input:    "> This is a quote",
			expected: "This is a quote",
		},
		{
			name:     "list markers removed",
			input:    "- Item 1\n- Item 2",
			expected: "Item 1\nItem 2",
		},
		{
			name:     "numbered list markers removed",
			input:    "1. First\n2. Second",
			expected: "First\nSecond",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := stripMarkdown(tc.input)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestNormalise_ComplexMarkdown(t *testing.T) {
	normaliser := New()

	complexMarkdown := `# Main Title

## Section 1

This is a paragraph with **bold** and *italic* text.

- List item 1
- List item 2
  - Nested item

### Subsection 1.1

` + "```go" + `
func main() {
    fmt.Println("Hello, World!")
}
` + "```" + `

## Section 2

[Link](https://example.com)

![Image](image.png)
`

	title, text, err := normaliser.Normalise([]byte(complexMarkdown))
	require.NoError(t, err)

	assert.Equal(t, "Main Title", title)

	// Verify content is stripped of markdown
	assert.NotContains(t, text, "**bold**")
	assert.Contains(t, text, "bold")
	assert.NotContains(t, text, "[Link]")
	assert.Contains(t, text, "Link")
	assert.NotContains(t, text, "```")
}

func BenchmarkNormalise(b *testing.B) {
	normaliser := New()
	content := []byte("# Test Document\n\nThis is test content with **bold** and *italic*.")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = normaliser.Normalise(content)
	}
}

func BenchmarkStripMarkdown(b *testing.B) {
	content := `# Heading

Paragraph with **bold** and *italic*.

- List item 1
- List item 2

[Link](https://example.com)

` + "```" + `
code block
` + "```"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = stripMarkdown(content)
	}
}
