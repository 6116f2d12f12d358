// Package tui provides an interactive terminal search for docsearch.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"errors"

	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driving"
)

// ErrMissingSearchService is returned by NewApp without a search service.
var ErrMissingSearchService = errors.New("tui: search service is required")

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Search runs queries. Required.
	Search driving.SearchService

	// Runs supplies the last ingestion summary shown in the footer. Optional.
	Runs driving.RunHistory
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
