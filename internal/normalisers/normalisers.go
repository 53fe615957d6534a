package normalisers

import (
	"path/filepath"
	"strings"

	"github.com/docsift/docsift/internal/core/ports/driven"
	"github.com/docsift/docsift/internal/normalisers/html"
	"github.com/docsift/docsift/internal/normalisers/markdown"
	"github.com/docsift/docsift/internal/normalisers/plaintext"
)

// byExtension maps file extensions to their normalisers, built once at
// package initialisation.
var byExtension = map[string]driven.Normaliser{}

// fallback handles every extension without a dedicated normaliser.
var fallback = plaintext.New()

func init() {
	for _, n := range []driven.Normaliser{
		markdown.New(),
		html.New(),
		fallback,
	} {
		for _, ext := range n.Extensions() {
			byExtension[ext] = n
		}
	}
}

// ForPath returns the normaliser for a file path, selected by extension.
// Unknown extensions get the plain text normaliser.
func ForPath(path string) driven.Normaliser {
	ext := strings.ToLower(filepath.Ext(path))
	if n, ok := byExtension[ext]; ok {
		return n
	}
	return fallback
}
