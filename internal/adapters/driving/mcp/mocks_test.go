package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	hits     []domain.SearchHit
	err      error
	lastTerm string
}

func (m *mockSearchService) Search(_ context.Context, term string) ([]domain.SearchHit, error) {
	m.lastTerm = term
	return m.hits, m.err
}

func (m *mockSearchService) HealthCheck(context.Context) error {
	return m.err
}

// mockRunHistory is a mock implementation of driving.RunHistory.
type mockRunHistory struct {
	reports []domain.RunReport
	err     error
}

func (m *mockRunHistory) Latest(context.Context) (*domain.RunReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.reports) == 0 {
		return nil, domain.ErrNotFound
	}
	r := m.reports[0]
	return &r, nil
}

func (m *mockRunHistory) List(_ context.Context, limit int) ([]domain.RunReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && limit < len(m.reports) {
		return m.reports[:limit], nil
	}
	return m.reports, nil
}
