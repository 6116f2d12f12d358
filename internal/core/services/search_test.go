package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

func TestSearchService_Search_MapsHitsToURLs(t *testing.T) {
	index := newMockIndex()
	index.docs["id:1"] = domain.IndexedDocument{SourceID: "id:1", Filename: "fox.txt", Content: "the quick brown fox"}
	svc := NewSearchService(index, NewURLBuilder("https://example.com/files", "?dl=0"))

	hits, err := svc.Search(context.Background(), "quick")

	require.NoError(t, err)
	assert.Equal(t, []domain.SearchHit{
		{Filename: "fox.txt", URL: "https://example.com/files/id:1/fox.txt?dl=0"},
	}, hits)
}

func TestSearchService_Search_NoResults(t *testing.T) {
	index := newMockIndex()
	index.docs["id:1"] = domain.IndexedDocument{SourceID: "id:1", Filename: "fox.txt", Content: "the quick brown fox"}
	svc := NewSearchService(index, NewURLBuilder("", ""))

	hits, err := svc.Search(context.Background(), "zzz")

	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestSearchService_Search_BlankTermMatchesAll(t *testing.T) {
	index := newMockIndex()
	index.docs["id:1"] = domain.IndexedDocument{SourceID: "id:1", Filename: "a.txt", Content: "alpha"}
	index.docs["id:2"] = domain.IndexedDocument{SourceID: "id:2", Filename: "b.txt", Content: "beta"}
	svc := NewSearchService(index, NewURLBuilder("", ""))

	hits, err := svc.Search(context.Background(), "   ")

	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearchService_Search_KeepsSurroundingSpaces(t *testing.T) {
	index := newMockIndex()
	index.docs["id:1"] = domain.IndexedDocument{SourceID: "id:1", Filename: "a.txt", Content: "brown fox"}
	index.docs["id:2"] = domain.IndexedDocument{SourceID: "id:2", Filename: "b.txt", Content: "brownfox"}
	svc := NewSearchService(index, NewURLBuilder("", ""))

	hits, err := svc.Search(context.Background(), "n f")

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a.txt", hits[0].Filename)
}

func TestSearchService_Search_PreservesOrder(t *testing.T) {
	index := newMockIndex()
	for _, id := range []string{"id:c", "id:a", "id:b"} {
		index.docs[id] = domain.IndexedDocument{SourceID: id, Filename: id + ".txt", Content: "shared"}
	}
	svc := NewSearchService(index, NewURLBuilder("", ""))

	hits, err := svc.Search(context.Background(), "shared")

	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, []string{"id:a.txt", "id:b.txt", "id:c.txt"}, []string{hits[0].Filename, hits[1].Filename, hits[2].Filename})
}

func TestSearchService_Search_PropagatesConnectionError(t *testing.T) {
	index := newMockIndex()
	index.searchErr = fmt.Errorf("%w: search: 503 Service Unavailable", domain.ErrConnection)
	svc := NewSearchService(index, NewURLBuilder("", ""))

	hits, err := svc.Search(context.Background(), "quick")

	assert.Nil(t, hits)
	assert.ErrorIs(t, err, domain.ErrConnection)
}

func TestSearchService_Search_WrapsUnclassifiedError(t *testing.T) {
	index := newMockIndex()
	index.searchErr = context.DeadlineExceeded
	svc := NewSearchService(index, NewURLBuilder("", ""))

	_, err := svc.Search(context.Background(), "quick")

	assert.ErrorIs(t, err, domain.ErrConnection)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSearchService_Search_RejectsInexpressibleTerms(t *testing.T) {
	tests := []struct {
		name string
		term string
	}{
		{"invalid utf-8", "caf\xe9"},
		{"over limit", strings.Repeat("a", MaxTermBytes+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := newMockIndex()
			index.searchErr = errors.New("index must not be queried")
			svc := NewSearchService(index, NewURLBuilder("", ""))

			hits, err := svc.Search(context.Background(), tt.term)

			assert.Nil(t, hits)
			assert.ErrorIs(t, err, domain.ErrInvalidQuery)
			assert.NotErrorIs(t, err, domain.ErrConnection)
		})
	}
}

func TestSearchService_Search_AcceptsTermAtLimit(t *testing.T) {
	index := newMockIndex()
	svc := NewSearchService(index, NewURLBuilder("", ""))

	_, err := svc.Search(context.Background(), strings.Repeat("a", MaxTermBytes))

	assert.NoError(t, err)
}

func TestSearchService_Search_KeepsEngineQueryRejection(t *testing.T) {
	index := newMockIndex()
	index.searchErr = fmt.Errorf("%w: search: 400 Bad Request", domain.ErrInvalidQuery)
	svc := NewSearchService(index, NewURLBuilder("", ""))

	_, err := svc.Search(context.Background(), "quick")

	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
	assert.NotErrorIs(t, err, domain.ErrConnection)
}

func TestSearchService_HealthCheck(t *testing.T) {
	index := newMockIndex()
	svc := NewSearchService(index, NewURLBuilder("", ""))
	require.NoError(t, svc.HealthCheck(context.Background()))

	index.healthErr = fmt.Errorf("%w: ping", domain.ErrConnection)
	err := svc.HealthCheck(context.Background())
	assert.True(t, errors.Is(err, domain.ErrConnection))
}
