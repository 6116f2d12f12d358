package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driven"
)

// RunStore implements driven.RunStore.
type RunStore struct {
	store *Store
}

var _ driven.RunStore = (*RunStore)(nil)

const runColumns = `id, root, started_at, finished_at, listed, indexed, skipped, failed, pruned, cancelled, failures`

// Save stores or replaces a run report.
func (s *RunStore) Save(ctx context.Context, report domain.RunReport) error {
	if report.ID == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}

	failures := report.Failures
	if failures == nil {
		failures = []domain.FileFailure{}
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("marshalling failures: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			root = excluded.root,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			listed = excluded.listed,
			indexed = excluded.indexed,
			skipped = excluded.skipped,
			failed = excluded.failed,
			pruned = excluded.pruned,
			cancelled = excluded.cancelled,
			failures = excluded.failures
	`, report.ID, report.Root, toUnixNano(report.StartedAt), toUnixNano(report.FinishedAt),
		report.Listed, report.Indexed, report.Skipped, report.Failed, report.Pruned,
		boolToInt(report.Cancelled), string(failuresJSON))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// Latest returns the most recently started run.
func (s *RunStore) Latest(ctx context.Context) (*domain.RunReport, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT 1
	`)
	report, err := scanRun(row)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// List returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *RunStore) List(ctx context.Context, limit int) ([]domain.RunReport, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var reports []domain.RunReport //nolint:prealloc // size unknown from query
	for rows.Next() {
		report, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return reports, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.RunReport, error) {
	var (
		r                 domain.RunReport
		started, finished int64
		cancelled         int
		failuresJSON      string
	)
	err := row.Scan(&r.ID, &r.Root, &started, &finished,
		&r.Listed, &r.Indexed, &r.Skipped, &r.Failed, &r.Pruned,
		&cancelled, &failuresJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	r.StartedAt = fromUnixNano(started)
	r.FinishedAt = fromUnixNano(finished)
	r.Cancelled = cancelled != 0

	if err := json.Unmarshal([]byte(failuresJSON), &r.Failures); err != nil {
		return nil, fmt.Errorf("unmarshalling failures: %w", err)
	}
	if len(r.Failures) == 0 {
		r.Failures = nil
	}
	return &r, nil
}

func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
