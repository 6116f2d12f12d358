// Package config resolves docsearch configuration.
//
// Values come from three layers, later layers winning:
//
//  1. ~/.docsearch/config.toml (or the --config path)
//  2. a .env file in the working directory
//  3. the process environment
//
// A .env entry never replaces a variable already set in the environment.
// Validate reports every missing value at once, joined into one error
// that matches domain.ErrConfigMissing.
package config
