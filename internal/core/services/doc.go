// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
//   - Ingestor: lists the remote source, fetches, extracts and upserts
//     every file through a bounded worker pool, then records a RunReport
//   - SearchService: runs substring queries and maps hits to download URLs
//   - URLBuilder: formats {base}/{sourceId}/{filename}{suffix}
//
// Services are pure Go with no CGO or external dependencies.
package services
