package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the search index is reachable",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errSearchNotConfigured
	}

	if err := searchService.HealthCheck(cmd.Context()); err != nil {
		return fmt.Errorf("search index unhealthy: %w", err)
	}

	c := currentConfig()
	cmd.Printf("Search index: ok (%s, %s)\n", c.Index.Backend, c.Index.Name)

	if indexAdmin != nil {
		n, err := indexAdmin.Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("count documents: %w", err)
		}
		cmd.Printf("Documents:    %d\n", n)
	}
	return nil
}
