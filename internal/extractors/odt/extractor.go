// Package odt extracts text from OpenDocument text files via docconv.
package odt

import (
	"bytes"
	"context"
	"fmt"

	"code.sajari.com/docconv/v2"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles ODT documents.
type Extractor struct{}

// New creates a new ODT extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".odt"}
}

// Extract returns the body text of an ODT document.
func (e *Extractor) Extract(_ context.Context, content []byte, filename string) (string, error) {
	text, _, err := docconv.ConvertODT(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("%w: converting %s: %w", domain.ErrInvalidInput, filename, err)
	}
	return text, nil
}
