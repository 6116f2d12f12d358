package domain

import (
	"errors"
	"fmt"
)

// ExtractedDocument is the plain text pulled out of one remote file.
// It lives only for the duration of one ingestion pass.
type ExtractedDocument struct {
	// Filename is the remote file name.
	Filename string

	// Content is the extracted text, passed through verbatim.
	Content string

	// SourceID is the RemoteFileRef.ID the text came from.
	SourceID string
}

// IndexedDocument is the persisted form of a document in the search index.
// The SourceID doubles as the index key, so writing the same SourceID
// twice replaces the earlier document.
type IndexedDocument struct {
	// SourceID is the document key and the remote file's stable ID.
	SourceID string

	// Filename is stored as tokenised text.
	Filename string

	// Content is stored as a single exact value so wildcard queries
	// behave as literal substring containment.
	Content string
}

// NewIndexedDocument builds the index form of an extracted document.
func NewIndexedDocument(doc ExtractedDocument) IndexedDocument {
	return IndexedDocument{
		SourceID: doc.SourceID,
		Filename: doc.Filename,
		Content:  doc.Content,
	}
}

// Validate checks that every field is present.
// Errors wrap ErrIndexWrite so callers can treat them like write failures.
func (d IndexedDocument) Validate() error {
	var errs []error
	if d.SourceID == "" {
		errs = append(errs, errors.New("sourceId is required"))
	}
	if d.Filename == "" {
		errs = append(errs, errors.New("filename is required"))
	}
	if d.Content == "" {
		errs = append(errs, errors.New("content is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrIndexWrite, errors.Join(errs...))
	}
	return nil
}
