package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

var (
	ingestPrune bool
	ingestJSON  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index every document in the Dropbox folder",
	Long: `Lists the configured Dropbox folder, downloads and extracts each supported
file, and upserts it into the search index keyed by its Dropbox file id.

Running ingest again over an unchanged folder leaves the index unchanged.
A file that fails to download, extract or index is reported and skipped;
the rest of the run continues. With --prune, documents whose files are no
longer listed are removed after a complete run.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNeedsSource: "true"},
	RunE:        runIngest,
}

func init() {
	ingestCmd.Flags().String("root", "", "Dropbox folder to list (default: account root)")
	ingestCmd.Flags().BoolP("recursive", "r", false, "include subfolders")
	ingestCmd.Flags().Int("workers", 0, "concurrent file workers (default 4)")
	ingestCmd.Flags().BoolVar(&ingestPrune, "prune", false, "delete index entries for files no longer listed")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "print the run report as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestPipeline == nil {
		return errIngestNotConfigured
	}

	c := currentConfig()
	opts := domain.RunOptions{
		Root:      c.Dropbox.Root,
		Recursive: c.Dropbox.Recursive,
		Prune:     ingestPrune,
	}

	if !ingestJSON {
		root := opts.Root
		if root == "" {
			root = "/"
		}
		cmd.Printf("Ingesting %s...\n", root)
	}

	report, err := ingestPipeline.Run(cmd.Context(), opts)
	if report != nil {
		if ingestJSON {
			if jerr := writeIndentedJSON(cmd.OutOrStdout(), report); jerr != nil {
				return jerr
			}
		} else {
			printReport(cmd, report)
		}
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return nil
}

func printReport(cmd *cobra.Command, r *domain.RunReport) {
	cmd.Printf("Listed %d, indexed %d, skipped %d, failed %d", r.Listed, r.Indexed, r.Skipped, r.Failed)
	if r.Pruned > 0 {
		cmd.Printf(", pruned %d", r.Pruned)
	}
	cmd.Printf(" in %s\n", r.Duration().Round(durationPrecision))
	if r.Cancelled {
		cmd.Println("Run was cancelled before every file was processed.")
	}

	if len(r.Failures) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Failures:")
	for _, f := range r.Failures {
		cmd.Printf("  [%s] %s: %s\n", f.Stage, f.Name, f.Error)
	}
}

func writeIndentedJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
