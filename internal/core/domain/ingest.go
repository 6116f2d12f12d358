package domain

import "time"

// Stage names the step of the ingestion pipeline a file was in.
type Stage string

const (
	// StageListing is the folder listing that starts every run.
	StageListing Stage = "listing"

	// StageFetching downloads a file's bytes.
	StageFetching Stage = "fetching"

	// StageExtracting turns bytes into text.
	StageExtracting Stage = "extracting"

	// StageIndexing upserts the document into the search index.
	StageIndexing Stage = "indexing"

	// StagePruning removes documents whose remote file disappeared.
	StagePruning Stage = "pruning"
)

// RunOptions configures one ingestion run.
type RunOptions struct {
	// Root is the remote folder to list. Empty means the storage root.
	Root string

	// Recursive lists the whole tree below Root.
	Recursive bool

	// Prune deletes indexed documents absent from the listing once the
	// run has visited every file.
	Prune bool
}

// FileFailure records why a single file was not indexed.
type FileFailure struct {
	SourceID string `json:"source_id"`
	Name     string `json:"name"`
	Stage    Stage  `json:"stage"`
	Error    string `json:"error"`
}

// RunReport summarises an ingestion run.
type RunReport struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// Root is the listed folder.
	Root string `json:"root"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Listed is the number of files returned by the listing.
	Listed int `json:"listed"`

	// Indexed is the number of files upserted successfully.
	Indexed int `json:"indexed"`

	// Skipped counts files with an unsupported format.
	Skipped int `json:"skipped"`

	// Failed counts files that failed to fetch, extract or index.
	Failed int `json:"failed"`

	// Pruned counts orphaned documents removed from the index.
	Pruned int `json:"pruned"`

	// Cancelled is set when the run stopped before visiting every file.
	Cancelled bool `json:"cancelled"`

	// Failures lists per-file failures, including skips.
	Failures []FileFailure `json:"failures,omitempty"`
}

// Duration returns how long the run took.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
