package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

const noResultsMessage = "No files found containing the search term."

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search indexed documents",
	Long: `Lists every indexed document whose content contains the term exactly,
with a download link for each. Matching is a case-sensitive substring match;
an empty term ("") lists every document.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	term := args[0]

	if searchService == nil {
		return errSearchNotConfigured
	}

	hits, err := searchService.Search(cmd.Context(), term)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return writeIndentedJSON(cmd.OutOrStdout(), searchOutput{Results: hits})
	}

	outputSearchTable(cmd, hits)
	return nil
}

// searchOutput matches the HTTP response body.
type searchOutput struct {
	Results []domain.SearchHit `json:"results"`
}

func outputSearchTable(cmd *cobra.Command, hits []domain.SearchHit) {
	if len(hits) == 0 {
		cmd.Println(noResultsMessage)
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, hit := range hits {
		cmd.Printf("  [%d] %s\n", i+1, hit.Filename)
		cmd.Printf("      %s\n", hit.URL)
	}
	cmd.Println()
	cmd.Printf("%d documents\n", len(hits))
}
