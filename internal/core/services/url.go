package services

import (
	"net/url"
	"strings"
)

// Default download URL parts, matching the shared-link form
// https://www.dropbox.com/s/{id}/{filename}?dl=0.
const (
	DefaultURLBase   = "https://www.dropbox.com/s"
	DefaultURLSuffix = "?dl=0"
)

// URLBuilder maps an index hit to a client-facing download URL.
type URLBuilder struct {
	base   string
	suffix string
}

// NewURLBuilder creates a builder. An empty base uses DefaultURLBase.
// The suffix is appended verbatim and may be empty.
func NewURLBuilder(base, suffix string) URLBuilder {
	if base == "" {
		base = DefaultURLBase
	}
	return URLBuilder{base: strings.TrimRight(base, "/"), suffix: suffix}
}

// Build returns {base}/{sourceID}/{filename}{suffix}, each segment escaped.
func (b URLBuilder) Build(sourceID, filename string) string {
	return b.base + "/" + url.PathEscape(sourceID) + "/" + url.PathEscape(filename) + b.suffix
}
