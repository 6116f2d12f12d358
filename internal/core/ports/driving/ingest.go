package driving

import (
	"context"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

// IngestionPipeline indexes every file of a remote folder.
type IngestionPipeline interface {
	// Run lists the folder once and ingests each file, tolerating per-file
	// failures. The returned error is non-nil only when the listing failed
	// or the run was cancelled; per-file failures are in the report.
	Run(ctx context.Context, opts domain.RunOptions) (*domain.RunReport, error)
}

// RunHistory exposes past ingestion runs.
type RunHistory interface {
	// Latest returns the most recent run report.
	Latest(ctx context.Context) (*domain.RunReport, error)

	// List returns up to limit reports, newest first.
	List(ctx context.Context, limit int) ([]domain.RunReport, error)
}
