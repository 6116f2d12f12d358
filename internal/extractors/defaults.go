package extractors

import (
	"github.com/custodia-labs/sercha-docsearch/internal/extractors/docx"
	"github.com/custodia-labs/sercha-docsearch/internal/extractors/html"
	"github.com/custodia-labs/sercha-docsearch/internal/extractors/odt"
	"github.com/custodia-labs/sercha-docsearch/internal/extractors/pdf"
	"github.com/custodia-labs/sercha-docsearch/internal/extractors/plaintext"
)

// RegisterDefaults registers all built-in extractors with the registry.
// Call this during application initialisation.
func RegisterDefaults(r *Registry) {
	r.Register(plaintext.New())
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(odt.New())
	r.Register(html.New())
}

// NewDefaultRegistry returns a registry with every built-in extractor.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}
