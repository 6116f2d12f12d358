package extractors

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file extensions to extractors.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]driven.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]driven.Extractor),
	}
}

// Register adds an extractor for each of its extensions.
// A later registration for the same extension wins.
func (r *Registry) Register(extractor driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range extractor.Extensions() {
		r.extractors[strings.ToLower(ext)] = extractor
	}
}

// Extract dispatches on the lowercased extension of filename.
func (r *Registry) Extract(ctx context.Context, content []byte, filename string) (string, error) {
	ext := Ext(filename)

	r.mu.RLock()
	extractor, ok := r.extractors[ext]
	r.mu.RUnlock()

	if !ok {
		return "", &domain.UnsupportedFormatError{Ext: ext}
	}
	return extractor.Extract(ctx, content, filename)
}

// Supports reports whether filename has a registered extension.
func (r *Registry) Supports(filename string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.extractors[Ext(filename)]
	return ok
}

// SupportedExtensions returns every registered extension, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Ext returns the lowercased extension of filename, including the dot.
func Ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
