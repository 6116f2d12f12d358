package tui

import "github.com/custodia-labs/sercha-docsearch/internal/core/domain"

// searchCompleted carries search results back to the model.
type searchCompleted struct {
	term string
	hits []domain.SearchHit
	err  error
}

// runLoaded carries the latest ingestion report. A nil report with a nil
// error means nothing has been ingested yet.
type runLoaded struct {
	report *domain.RunReport
	err    error
}
