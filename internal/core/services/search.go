package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-docsearch/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// MaxTermBytes is the longest accepted term. Lucene caps a keyword value at
// this size, so no indexed content can contain a longer term.
const MaxTermBytes = 32766

// SearchService translates a term into an index query and maps the hits
// to download URLs.
type SearchService struct {
	index driven.SearchIndex
	urls  URLBuilder
}

// NewSearchService creates a new search service.
func NewSearchService(index driven.SearchIndex, urls URLBuilder) *SearchService {
	return &SearchService{index: index, urls: urls}
}

// Search returns the documents containing term. A blank term matches every
// document. Hits keep the order the index returned them in. Terms that are
// not valid UTF-8 or exceed MaxTermBytes fail with domain.ErrInvalidQuery.
func (s *SearchService) Search(ctx context.Context, term string) ([]domain.SearchHit, error) {
	if strings.TrimSpace(term) == "" {
		term = ""
	}
	if err := validateTerm(term); err != nil {
		return nil, err
	}

	hits, err := s.index.Search(ctx, term)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) {
			return nil, fmt.Errorf("search %q: %w", term, err)
		}
		if !errors.Is(err, domain.ErrConnection) {
			err = fmt.Errorf("%w: %w", domain.ErrConnection, err)
		}
		return nil, fmt.Errorf("search %q: %w", term, err)
	}

	results := make([]domain.SearchHit, 0, len(hits))
	for _, h := range hits {
		results = append(results, domain.SearchHit{
			Filename: h.Filename,
			URL:      s.urls.Build(h.SourceID, h.Filename),
		})
	}

	logger.Debug("search %q: %d results", term, len(results))
	return results, nil
}

func validateTerm(term string) error {
	if !utf8.ValidString(term) {
		return fmt.Errorf("search: %w: term is not valid UTF-8", domain.ErrInvalidQuery)
	}
	if len(term) > MaxTermBytes {
		return fmt.Errorf("search: %w: term is %d bytes, limit is %d", domain.ErrInvalidQuery, len(term), MaxTermBytes)
	}
	return nil
}

// HealthCheck verifies the index is reachable.
func (s *SearchService) HealthCheck(ctx context.Context) error {
	return s.index.HealthCheck(ctx)
}
