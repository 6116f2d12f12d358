package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// Adapters wrap these with %w so callers can classify with errors.Is.
var (
	// ErrConfigMissing indicates a required credential or endpoint is absent.
	// It is fatal at startup: nothing may be served or ingested.
	ErrConfigMissing = errors.New("configuration missing")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Remote storage errors.

	// ErrSourceUnavailable indicates a network, auth or provider failure
	// while listing or fetching. Recoverable per file during ingestion.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrNotFound indicates the remote file no longer exists.
	ErrNotFound = errors.New("not found")

	// ErrAuthInvalid indicates the storage credentials were rejected.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrContentTooLarge indicates a file exceeds the configured download limit.
	ErrContentTooLarge = errors.New("content too large")

	// Extraction errors.

	// ErrUnsupportedFormat indicates no extractor handles the file extension.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// Search engine errors.

	// ErrIndexWrite indicates a document could not be written to the index,
	// including validation failures detected before any network call.
	ErrIndexWrite = errors.New("index write failed")

	// ErrConnection indicates the search engine could not be reached or
	// answered with a failure. Fatal for the query path.
	ErrConnection = errors.New("search engine connection failed")

	// ErrInvalidQuery indicates a term the engine cannot express.
	ErrInvalidQuery = errors.New("invalid query")
)

// UnsupportedFormatError carries the extension that could not be extracted.
type UnsupportedFormatError struct {
	Ext string
}

// Error implements the error interface.
func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("%s: file has no extension", ErrUnsupportedFormat)
	}
	return fmt.Sprintf("%s: %s", ErrUnsupportedFormat, e.Ext)
}

// Is reports whether target is ErrUnsupportedFormat.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}
