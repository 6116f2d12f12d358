// Package extractors provides implementations of the Extractor interface
// for various file formats. Each extractor knows how to pull plain text
// out of the raw bytes of a specific set of file extensions.
//
// Extractors are registered with the Registry at startup, which dispatches
// on the lowercased file extension.
package extractors
