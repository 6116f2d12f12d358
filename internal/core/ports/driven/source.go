package driven

import (
	"context"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

// FileSource lists and downloads files from remote storage.
// Implementations perform no caching and no retries; the ingestion
// pipeline owns retry policy.
type FileSource interface {
	// ListFiles returns every file below root. A failure returns no
	// partial results and wraps domain.ErrSourceUnavailable.
	ListFiles(ctx context.Context, root string, opts domain.ListOptions) ([]domain.RemoteFileRef, error)

	// FetchBytes downloads the full content of a file.
	// Returns domain.ErrNotFound if the file no longer exists and
	// domain.ErrSourceUnavailable on transient failures.
	FetchBytes(ctx context.Context, ref domain.RemoteFileRef) ([]byte, error)
}
