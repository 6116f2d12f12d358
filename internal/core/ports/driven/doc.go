// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - FileSource: Lists and downloads files from remote storage (Dropbox)
//   - ExtractorRegistry: Selects a text extractor by file extension
//   - SearchIndex: Schema, upsert and substring search (Elasticsearch or Bleve)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Ingestion run history. Without it, reports are only logged.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or extractor package
package driven
