package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-docsearch/internal/adapters/driving/mcp"
	"github.com/custodia-labs/sercha-docsearch/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can search
the indexed documents.

By default, the server communicates over stdio using JSON-RPC. Use --http
to serve streamable HTTP instead.

Examples:
  # Stdio mode (default, for desktop assistants)
  docsearch mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  docsearch mcp serve --http 127.0.0.1:8081

Assistant configuration:
  {
    "mcpServers": {
      "docsearch": {
        "command": "/path/to/docsearch",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().String("http", "", "HTTP listen address (empty = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("http")
	if err != nil {
		return fmt.Errorf("getting http flag: %w", err)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Search: searchService,
		Runs:   runHistory,
	})
	if err != nil {
		return err
	}

	if addr != "" {
		logger.SetTimestamps(true)
		defer logger.SetTimestamps(false)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	// stdout carries JSON-RPC; logs stay on stderr.
	return server.Run(cmd.Context())
}
