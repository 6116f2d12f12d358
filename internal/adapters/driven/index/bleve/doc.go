// Package bleve implements driven.SearchIndex over an embedded Bleve
// index, either on disk or memory-only.
//
// The mapping mirrors the Elasticsearch adapter: filename and sourceId are
// analysed text, content is a single keyword term. Substring search is a
// regexp query that must match the whole content term, so the pattern is
// wrapped as (?s).*<term>.* with the term quoted.
package bleve
