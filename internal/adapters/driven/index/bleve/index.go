package bleve

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-docsearch/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.SearchIndex = (*Index)(nil)

// ErrIndexClosed is returned by operations on a closed index.
var ErrIndexClosed = errors.New("bleve: index closed")

const (
	// DefaultPageSize matches the Elasticsearch default result page.
	DefaultPageSize = 10

	listPageSize = 1000
)

// Config configures the Bleve adapter.
type Config struct {
	// Path is the on-disk index directory. Empty means memory-only.
	Path string
	// PageSize caps search results. Zero means DefaultPageSize.
	PageSize int
}

// Index is a SearchIndex backed by Bleve.
type Index struct {
	mu       sync.RWMutex
	index    bleve.Index
	path     string
	pageSize int
	closed   bool
}

// Open opens the index at cfg.Path, creating it when absent.
func Open(cfg Config) (*Index, error) {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	idx, err := openOrCreate(cfg.Path)
	if err != nil {
		return nil, err
	}

	return &Index{index: idx, path: cfg.Path, pageSize: pageSize}, nil
}

func openOrCreate(path string) (bleve.Index, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(BuildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("%w: create memory index: %w", domain.ErrConnection, err)
		}
		return idx, nil
	}

	idx, err := bleve.Open(path)
	if err == nil {
		return idx, nil
	}
	if !errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		return nil, fmt.Errorf("%w: open index %s: %w", domain.ErrConnection, path, err)
	}

	idx, err = bleve.New(path, BuildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("%w: create index %s: %w", domain.ErrConnection, path, err)
	}
	logger.Info("bleve: created index at %s", path)
	return idx, nil
}

// BuildIndexMapping returns the document mapping shared by every index.
func BuildIndexMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()
	text.Store = true

	keyword := bleve.NewKeywordFieldMapping()
	keyword.Store = false

	doc := bleve.NewDocumentStaticMapping()
	doc.AddFieldMappingsAt(driven.FieldFilename, text)
	doc.AddFieldMappingsAt(driven.FieldSourceID, text)
	doc.AddFieldMappingsAt(driven.FieldContent, keyword)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// EnsureSchema is satisfied at Open time; it only verifies the index is usable.
func (i *Index) EnsureSchema(_ context.Context) error {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return fmt.Errorf("%w: %w", domain.ErrConnection, ErrIndexClosed)
	}
	return nil
}

// Upsert indexes doc under its source id, replacing any previous version.
func (i *Index) Upsert(_ context.Context, doc domain.IndexedDocument) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return fmt.Errorf("%w: %w", domain.ErrIndexWrite, ErrIndexClosed)
	}

	err := i.index.Index(doc.SourceID, map[string]any{
		driven.FieldFilename: doc.Filename,
		driven.FieldContent:  doc.Content,
		driven.FieldSourceID: doc.SourceID,
	})
	if err != nil {
		return fmt.Errorf("%w: index %s: %w", domain.ErrIndexWrite, doc.SourceID, err)
	}
	return nil
}

// Search runs a whole-term regexp query against content.
func (i *Index) Search(ctx context.Context, term string) ([]domain.IndexHit, error) {
	req := bleve.NewSearchRequestOptions(buildQuery(term), i.pageSize, 0, false)
	req.Fields = []string{driven.FieldFilename, driven.FieldSourceID}
	req.SortBy([]string{"_id"})

	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return nil, fmt.Errorf("%w: %w", domain.ErrConnection, ErrIndexClosed)
	}

	res, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", domain.ErrConnection, err)
	}

	hits := make([]domain.IndexHit, 0, len(res.Hits))
	for _, h := range res.Hits {
		sourceID := stringField(h.Fields, driven.FieldSourceID)
		if sourceID == "" {
			sourceID = h.ID
		}
		hits = append(hits, domain.IndexHit{
			Filename: stringField(h.Fields, driven.FieldFilename),
			SourceID: sourceID,
		})
	}
	return hits, nil
}

// buildQuery returns match-all for an empty term, else a substring regexp.
func buildQuery(term string) query.Query {
	if term == "" {
		return bleve.NewMatchAllQuery()
	}
	q := bleve.NewRegexpQuery(substringPattern(term))
	q.SetField(driven.FieldContent)
	return q
}

// substringPattern matches any value containing term literally,
// including across newlines.
func substringPattern(term string) string {
	return "(?s).*" + regexp.QuoteMeta(term) + ".*"
}

// Delete removes the document for sourceID. A missing document is not an error.
func (i *Index) Delete(_ context.Context, sourceID string) error {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return fmt.Errorf("%w: %w", domain.ErrIndexWrite, ErrIndexClosed)
	}
	if err := i.index.Delete(sourceID); err != nil {
		return fmt.Errorf("%w: delete %s: %w", domain.ErrIndexWrite, sourceID, err)
	}
	return nil
}

// ListIDs returns every document id, paging through a match-all query.
func (i *Index) ListIDs(ctx context.Context) ([]string, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return nil, fmt.Errorf("%w: %w", domain.ErrConnection, ErrIndexClosed)
	}

	var ids []string
	for from := 0; ; from += listPageSize {
		req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), listPageSize, from, false)
		req.SortBy([]string{"_id"})

		res, err := i.index.SearchInContext(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("%w: list ids: %w", domain.ErrConnection, err)
		}
		for _, h := range res.Hits {
			ids = append(ids, h.ID)
		}
		if len(res.Hits) < listPageSize {
			return ids, nil
		}
	}
}

// Count returns the number of documents in the index.
func (i *Index) Count(_ context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return 0, fmt.Errorf("%w: %w", domain.ErrConnection, ErrIndexClosed)
	}

	n, err := i.index.DocCount()
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", domain.ErrConnection, err)
	}
	return int(n), nil
}

// HealthCheck verifies the index answers a count.
func (i *Index) HealthCheck(ctx context.Context) error {
	_, err := i.Count(ctx)
	return err
}

// Close closes the index. Closing twice is a no-op.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil
	}
	i.closed = true
	return i.index.Close()
}

func stringField(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}
