package driven

import "context"

// Extractor turns the raw bytes of one file format into plain text.
// Extraction is a pure transform: no I/O beyond the given bytes.
type Extractor interface {
	// Extensions returns the lowercased extensions this extractor handles,
	// including the leading dot.
	Extensions() []string

	// Extract returns the text contained in content, verbatim.
	Extract(ctx context.Context, content []byte, filename string) (string, error)
}

// ExtractorRegistry dispatches extraction by file extension.
type ExtractorRegistry interface {
	// Extract selects an extractor from the lowercased extension of filename.
	// Unknown extensions fail with *domain.UnsupportedFormatError.
	Extract(ctx context.Context, content []byte, filename string) (string, error)

	// Register adds an extractor, replacing earlier registrations
	// for the same extensions.
	Register(extractor Extractor)

	// Supports reports whether filename's extension has an extractor.
	Supports(filename string) bool

	// SupportedExtensions returns every registered extension, sorted.
	SupportedExtensions() []string
}
