package domain

// IndexHit is a raw match returned by the search index.
type IndexHit struct {
	// Filename is the indexed file name.
	Filename string

	// SourceID is the remote file's stable ID.
	SourceID string
}

// SearchHit is the client-facing search result.
type SearchHit struct {
	// Filename is the indexed file name.
	Filename string `json:"filename"`

	// URL is the download link built from the source ID and filename.
	URL string `json:"url"`
}
