// Package plaintext extracts text files by decoding their bytes as UTF-8.
package plaintext

import (
	"context"
	"strings"

	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text files.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".txt", ".text", ".md", ".markdown", ".csv", ".log", ".json", ".xml", ".yaml", ".yml"}
}

// Extract decodes content as UTF-8 and returns it unchanged.
// Invalid byte sequences become U+FFFD, as a UTF-8 decoder would produce.
func (e *Extractor) Extract(_ context.Context, content []byte, _ string) (string, error) {
	return strings.ToValidUTF8(string(content), "�"), nil
}
