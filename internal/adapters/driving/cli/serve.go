package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-docsearch/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/sercha-docsearch/internal/adapters/driving/mcp"
	"github.com/custodia-labs/sercha-docsearch/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search API over HTTP",
	Long: `Starts the HTTP API:

  GET /api/search?q=term   documents containing term
  GET /api/all             every document
  GET /api/runs/latest     most recent ingestion report
  GET /healthz             search index reachability
  /mcp                     MCP over streamable HTTP

Responses for a search are {"results":[{"filename":...,"url":...}]}. A search
with no matches answers 404 and an unreachable index 503.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default 127.0.0.1:8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errSearchNotConfigured
	}
	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)

	mcpServer, err := mcp.NewServer(&mcp.Ports{Search: searchService, Runs: runHistory})
	if err != nil {
		return err
	}

	server, err := httpapi.NewServer(httpapi.Ports{
		Search: searchService,
		Runs:   runHistory,
		MCP:    mcpServer.Handler(),
	})
	if err != nil {
		return err
	}

	addr := currentConfig().Server.Addr
	cmd.Printf("Listening on http://%s\n", addr)
	return server.Run(cmd.Context(), addr)
}
