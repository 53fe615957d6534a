package domain

import (
	"fmt"
	"time"
)

// Document is an immutable unit of source text plus provenance metadata.
// Re-ingesting the same SourceID supersedes the previous document under an
// incremented Version; existing documents are never mutated in place.
type Document struct {
	// ID is the unique identifier for this document version.
	ID string

	// SourceID is the stable origin identifier (file path, filing
	// accession number, URL). All versions of a document share it.
	SourceID string

	// Version starts at 1 and increments on every re-ingest of SourceID.
	Version int

	// Title is the human-readable title.
	Title string

	// Content is the full text content.
	Content string

	// Metadata contains arbitrary key-value pairs. Recognised keys for
	// query filtering: "ticker", "doc_type", "form_type", "published_date".
	Metadata map[string]any

	// CreatedAt is when this version was ingested.
	CreatedAt time.Time

	// UpdatedAt is when this version was last written.
	UpdatedAt time.Time
}

// Chunk is a contiguous substring of a document, the atomic unit of
// retrieval. Chunks are created during ingestion and retired as a set when
// their source is re-ingested.
type Chunk struct {
	// ID is derived from the source ID and the ordinal position,
	// so re-chunking a source produces the same IDs.
	ID string

	// DocumentID links to the parent document version.
	DocumentID string

	// SourceID is inherited from the parent document.
	SourceID string

	// Content is the text content of this chunk.
	Content string

	// StartOffset and EndOffset are byte offsets into the parent content.
	StartOffset int
	EndOffset   int

	// Position is the 0-based ordinal position within the document.
	Position int

	// Embedding is the vector representation for semantic search.
	Embedding []float32

	// Metadata inherits the document metadata plus a "chunk_index" key.
	Metadata map[string]any
}

// ChunkID builds the canonical chunk identifier for a source and ordinal.
func ChunkID(sourceID string, position int) string {
	return fmt.Sprintf("%s:%d", sourceID, position)
}
