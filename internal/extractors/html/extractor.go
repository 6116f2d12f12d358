// Package html extracts visible text from HTML documents.
// Markup is stripped with a bluemonday strict policy; block-level
// boundaries are kept as line breaks.
package html

import (
	"context"
	"html"
	"regexp"

	"github.com/microcosm-cc/bluemonday"

	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

var (
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	blockElements = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	brTags        = regexp.MustCompile(`(?i)<br\s*/?>`)
)

// Extractor handles HTML documents.
type Extractor struct {
	policy *bluemonday.Policy
}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{policy: bluemonday.StrictPolicy()}
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".html", ".htm"}
}

// Extract strips all markup and decodes entities. Script and style
// bodies are dropped along with the document head.
func (e *Extractor) Extract(_ context.Context, content []byte, _ string) (string, error) {
	s := headTag.ReplaceAllString(string(content), "")
	s = brTags.ReplaceAllString(s, "\n")
	s = blockElements.ReplaceAllString(s, "$0\n")

	return html.UnescapeString(e.policy.Sanitize(s)), nil
}
