package mcp

import (
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Search runs queries. Required.
	Search driving.SearchService

	// Runs exposes ingestion history. Optional; without it the run
	// resources return empty documents.
	Runs driving.RunHistory
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
