// Package memory provides in-process implementations of driven ports,
// used when no data directory is configured and in tests.
package memory
