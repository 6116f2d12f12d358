package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.RunReport
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.RunReport),
	}
}

// Save stores or replaces a report.
func (s *RunStore) Save(_ context.Context, report domain.RunReport) error {
	if report.ID == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	report.Failures = append([]domain.FileFailure(nil), report.Failures...)
	s.runs[report.ID] = report
	return nil
}

// Latest returns the most recently started run.
func (s *RunStore) Latest(ctx context.Context) (*domain.RunReport, error) {
	runs, err := s.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, domain.ErrNotFound
	}
	return &runs[0], nil
}

// List returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *RunStore) List(_ context.Context, limit int) ([]domain.RunReport, error) {
	s.mu.RLock()
	runs := make([]domain.RunReport, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	s.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
