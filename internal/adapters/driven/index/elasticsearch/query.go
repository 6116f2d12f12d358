package elasticsearch

import (
	"strings"

	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driven"
)

// mapping is the index body sent on creation.
func mapping() map[string]any {
	return map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				driven.FieldFilename: map[string]any{"type": "text"},
				driven.FieldContent:  map[string]any{"type": "keyword"},
				driven.FieldSourceID: map[string]any{"type": "text"},
			},
		},
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// escapeWildcard makes the wildcard metacharacters in term match literally.
func escapeWildcard(term string) string {
	return wildcardEscaper.Replace(term)
}

// searchBody builds the query for term. An empty term matches everything.
func searchBody(term string, size int) map[string]any {
	var query map[string]any
	if term == "" {
		query = map[string]any{"match_all": map[string]any{}}
	} else {
		query = map[string]any{
			"wildcard": map[string]any{
				driven.FieldContent: map[string]any{
					"value": "*" + escapeWildcard(term) + "*",
				},
			},
		}
	}

	return map[string]any{
		"size":    size,
		"_source": []string{driven.FieldFilename, driven.FieldSourceID},
		"query":   query,
	}
}

// document is the stored form of an IndexedDocument.
type document struct {
	Filename string `json:"filename"`
	Content  string `json:"content,omitempty"`
	SourceID string `json:"sourceId"`
}

type searchResponse struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []struct {
			ID     string   `json:"_id"`
			Source document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type countResponse struct {
	Count int `json:"count"`
}

type errorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}
