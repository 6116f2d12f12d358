// Package mcp provides an MCP (Model Context Protocol) server adapter for docsearch.
// It lets AI assistants run substring searches over the indexed documents and
// read recent ingestion reports.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
