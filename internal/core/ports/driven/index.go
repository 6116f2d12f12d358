package driven

import (
	"context"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

// Index field names shared by every SearchIndex implementation.
const (
	FieldFilename = "filename"
	FieldContent  = "content"
	FieldSourceID = "sourceId"
)

// SearchIndex owns the search engine connection and the document schema.
// A single instance is opened at startup, shared by the ingestion pipeline
// and the query path, and closed at shutdown. Implementations must accept
// concurrent Upsert calls.
type SearchIndex interface {
	// EnsureSchema creates the index with the fixed three-field schema
	// if it is absent. Safe to call on every start.
	EnsureSchema(ctx context.Context) error

	// Upsert writes or replaces the document keyed by doc.SourceID.
	// Invalid documents are rejected with domain.ErrIndexWrite before any
	// network call.
	Upsert(ctx context.Context, doc domain.IndexedDocument) error

	// Search returns documents whose content contains term as a literal
	// substring. An empty term matches every document.
	// Failures wrap domain.ErrConnection; no matches is an empty slice.
	Search(ctx context.Context, term string) ([]domain.IndexHit, error)

	// Delete removes the document keyed by sourceID. Deleting a missing
	// document is not an error.
	Delete(ctx context.Context, sourceID string) error

	// ListIDs returns the key of every indexed document.
	ListIDs(ctx context.Context) ([]string, error)

	// Count returns the number of indexed documents.
	Count(ctx context.Context) (int, error)

	// HealthCheck verifies connectivity, wrapping domain.ErrConnection.
	HealthCheck(ctx context.Context) error

	// Close releases the connection.
	Close() error
}
