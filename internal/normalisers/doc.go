// Package normalisers provides implementations of the Normaliser interface
// for various document formats. Each normaliser knows how to extract plain
// text from a specific file format; selection is by file extension with a
// plain text fallback.
package normalisers
