package driven

import (
	"context"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

// RunStore persists ingestion run reports.
type RunStore interface {
	// Save stores or replaces a report keyed by its ID.
	Save(ctx context.Context, report domain.RunReport) error

	// Latest returns the most recently started run.
	// Returns domain.ErrNotFound when no run has been recorded.
	Latest(ctx context.Context) (*domain.RunReport, error)

	// List returns up to limit reports, newest first.
	List(ctx context.Context, limit int) ([]domain.RunReport, error)
}
