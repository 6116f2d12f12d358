package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

// mockSource serves a fixed listing and per-id content.
type mockSource struct {
	mu sync.Mutex

	refs    []domain.RemoteFileRef
	content map[string][]byte
	listErr error

	// fetchErrs holds errors returned for an id, consumed in order.
	fetchErrs map[string][]error
	// block makes FetchBytes wait for ctx cancellation for these ids.
	block map[string]bool

	fetches map[string]int
}

func newMockSource(files map[string]string) *mockSource {
	s := &mockSource{
		content:   make(map[string][]byte),
		fetchErrs: make(map[string][]error),
		block:     make(map[string]bool),
		fetches:   make(map[string]int),
	}
	ids := make([]string, 0, len(files))
	for name := range files {
		ids = append(ids, name)
	}
	sort.Strings(ids)
	for _, name := range ids {
		id := "id:" + name
		s.refs = append(s.refs, domain.RemoteFileRef{ID: id, Name: name, Path: "/" + name})
		s.content[id] = []byte(files[name])
	}
	return s
}

func (s *mockSource) ListFiles(_ context.Context, _ string, _ domain.ListOptions) ([]domain.RemoteFileRef, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]domain.RemoteFileRef(nil), s.refs...), nil
}

func (s *mockSource) FetchBytes(ctx context.Context, ref domain.RemoteFileRef) ([]byte, error) {
	s.mu.Lock()
	s.fetches[ref.ID]++
	block := s.block[ref.ID]
	var err error
	if errs := s.fetchErrs[ref.ID]; len(errs) > 0 {
		err, s.fetchErrs[ref.ID] = errs[0], errs[1:]
	}
	data, ok := s.content[ref.ID]
	s.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

func (s *mockSource) fetchCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[id]
}

// mockIndex is an in-memory SearchIndex with literal substring search.
type mockIndex struct {
	mu   sync.Mutex
	docs map[string]domain.IndexedDocument

	upsertErr map[string]error
	searchErr error
	listErr   error
	healthErr error
	upserts   int
	deleted   []string
}

func newMockIndex() *mockIndex {
	return &mockIndex{
		docs:      make(map[string]domain.IndexedDocument),
		upsertErr: make(map[string]error),
	}
}

func (m *mockIndex) EnsureSchema(context.Context) error { return nil }

func (m *mockIndex) Upsert(_ context.Context, doc domain.IndexedDocument) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if err := m.upsertErr[doc.SourceID]; err != nil {
		return err
	}
	m.docs[doc.SourceID] = doc
	return nil
}

func (m *mockIndex) Search(_ context.Context, term string) ([]domain.IndexHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	hits := []domain.IndexHit{}
	for _, id := range m.sortedIDs() {
		doc := m.docs[id]
		if strings.Contains(doc.Content, term) {
			hits = append(hits, domain.IndexHit{Filename: doc.Filename, SourceID: doc.SourceID})
		}
	}
	return hits, nil
}

func (m *mockIndex) Delete(_ context.Context, sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, sourceID)
	m.deleted = append(m.deleted, sourceID)
	return nil
}

func (m *mockIndex) ListIDs(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sortedIDs(), nil
}

func (m *mockIndex) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs), nil
}

func (m *mockIndex) HealthCheck(context.Context) error { return m.healthErr }

func (m *mockIndex) Close() error { return nil }

func (m *mockIndex) sortedIDs() []string {
	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// failingRunStore rejects every save.
type failingRunStore struct{}

func (failingRunStore) Save(context.Context, domain.RunReport) error {
	return errors.New("disk full")
}

func (failingRunStore) Latest(context.Context) (*domain.RunReport, error) {
	return nil, domain.ErrNotFound
}

func (failingRunStore) List(context.Context, int) ([]domain.RunReport, error) {
	return nil, nil
}
