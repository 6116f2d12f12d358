package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Search index schema commands",
}

var schemaEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Create the search index if it does not exist",
	Long: `Creates the index with its three fields: filename (text), content
(exact keyword, matched by substring) and sourceId (text). An existing
index is left untouched, so this is safe to run on every deploy.`,
	Args: cobra.NoArgs,
	RunE: runSchemaEnsure,
}

func init() {
	schemaCmd.AddCommand(schemaEnsureCmd)
	rootCmd.AddCommand(schemaCmd)
}

func runSchemaEnsure(cmd *cobra.Command, _ []string) error {
	if indexAdmin == nil {
		return errIndexNotConfigured
	}

	if err := indexAdmin.EnsureSchema(cmd.Context()); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	cmd.Printf("Index %q is ready.\n", currentConfig().Index.Name)
	return nil
}
