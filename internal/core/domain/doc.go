// Package domain defines the core business entities for docsearch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RemoteFileRef: A file listed from remote storage
//   - ExtractedDocument: Plain text pulled out of one file
//   - IndexedDocument: The document as persisted in the search index
//   - SearchHit: A client-facing result with a download URL
//   - RunReport: The outcome of one ingestion run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
