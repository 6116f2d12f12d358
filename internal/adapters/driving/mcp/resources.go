package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

const (
	uriScheme = "docsearch://"

	runsURI       = uriScheme + "runs"
	latestRunURI  = uriScheme + "runs/latest"
	runsListLimit = 20
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         latestRunURI,
		Name:        "latest-run",
		Description: "Report of the most recent ingestion run",
		MIMEType:    "application/json",
	}, s.handleLatestRunResource)

	s.server.AddResource(&mcp.Resource{
		URI:         runsURI,
		Name:        "runs",
		Description: "Recent ingestion run reports, newest first",
		MIMEType:    "application/json",
	}, s.handleRunsResource)
}

// handleLatestRunResource returns the newest run report, or null when
// nothing has been ingested yet.
func (s *Server) handleLatestRunResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Runs == nil {
		return jsonResource(req.Params.URI, nil)
	}

	report, err := s.ports.Runs.Latest(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return jsonResource(req.Params.URI, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("loading latest run: %w", err)
	}
	return jsonResource(req.Params.URI, report)
}

// handleRunsResource returns recent run reports.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	reports := []domain.RunReport{}
	if s.ports.Runs != nil {
		list, err := s.ports.Runs.List(ctx, runsListLimit)
		if err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}
		reports = append(reports, list...)
	}
	return jsonResource(req.Params.URI, reports)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
