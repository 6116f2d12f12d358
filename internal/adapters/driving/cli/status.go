package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

const durationPrecision = 10 * time.Millisecond

var (
	statusLimit int
	statusJSON  bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent ingestion runs",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 5, "number of runs to show")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output runs as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if runHistory == nil {
		return errRunsNotConfigured
	}
	if statusLimit <= 0 {
		return fmt.Errorf("%w: --limit must be positive", domain.ErrInvalidInput)
	}

	runs, err := runHistory.List(cmd.Context(), statusLimit)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("listing runs: %w", err)
	}

	if statusJSON {
		if runs == nil {
			runs = []domain.RunReport{}
		}
		return writeIndentedJSON(cmd.OutOrStdout(), runs)
	}

	if len(runs) == 0 {
		cmd.Println("No ingestion runs recorded.")
		return nil
	}

	for i := range runs {
		r := &runs[i]
		state := "complete"
		switch {
		case r.Cancelled:
			state = "cancelled"
		case r.Failed > 0:
			state = "partial"
		}
		cmd.Printf("%s  %-9s  listed %d, indexed %d, skipped %d, failed %d, pruned %d (%s)\n",
			r.StartedAt.Local().Format(time.DateTime), state,
			r.Listed, r.Indexed, r.Skipped, r.Failed, r.Pruned,
			r.Duration().Round(durationPrecision))
	}
	return nil
}
