package doctree

// Page is one unit of extracted text in document order. For PDFs it is a
// physical page; for other formats it is a section or row batch.
type Page struct {
	Number int    // 1-based position in the document
	Title  string // Section heading, if the format has one
	Text   string // Extracted text (empty if the page yields none)
}

// Document is the flattened text of an upload.
type Document struct {
	Title     string
	Text      string
	Pages     int  // Pages visited before extraction stopped
	Truncated bool // Extraction stopped at the size cap
}

// Chunk is a fixed-width window of document text, ready for summarization.
type Chunk struct {
	Text   string // Chunk text content
	Index  int    // Sequence number within document
	Offset int    // Rune offset of the first character
}
