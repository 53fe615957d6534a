package driven

// Normaliser converts one file format into plain text ready for chunking.
// Selection is by file extension; unknown formats fall back to plain text.
type Normaliser interface {
	// Extensions returns the lowercased file extensions this normaliser
	// handles, including the leading dot.
	Extensions() []string

	// Normalise converts raw bytes into a title and plain text content.
	// The title may be empty when the format carries none; callers then
	// fall back to the file name.
	Normalise(content []byte) (title, text string, err error)
}
