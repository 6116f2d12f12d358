// Package driving defines the interfaces external actors use to call INTO core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// The CLI, HTTP, MCP and TUI adapters depend on these interfaces.
package driving
