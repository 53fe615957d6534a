// Package plaintext provides the fallback normaliser for plain text files.
package plaintext

import (
	"strings"

	"github.com/docsift/docsift/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents. It is also the fallback for
// extensions no other normaliser claims.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".txt", ".text", ".log", ".csv"}
}

// Normalise passes the content through unchanged apart from trimming.
// Plain text carries no title.
func (n *Normaliser) Normalise(content []byte) (string, string, error) {
	return "", strings.TrimSpace(string(content)), nil
}
