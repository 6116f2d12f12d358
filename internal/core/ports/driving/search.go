package driving

import (
	"context"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search returns every document containing term, mapped to download URLs.
	// No matches yields an empty slice and a nil error; a failed query
	// yields an error wrapping domain.ErrConnection.
	Search(ctx context.Context, term string) ([]domain.SearchHit, error)

	// HealthCheck verifies the search engine is reachable.
	HealthCheck(ctx context.Context) error
}
