package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store
}

func testReport(id string, started time.Time) domain.RunReport {
	return domain.RunReport{
		ID:         id,
		Root:       "/Docs",
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Listed:     3,
		Indexed:    2,
		Failed:     1,
		Failures: []domain.FileFailure{
			{SourceID: "id:2", Name: "b.pdf", Stage: domain.StageFetching, Error: "source unavailable"},
		},
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "runs.db"), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_MigrationsRecorded(t *testing.T) {
	store := setupTestStore(t)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestNewStore_ReopenIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.RunStore().Save(context.Background(), testReport("run-1", time.Now())))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	runs, err := second.RunStore().List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRunStore_SaveAndLatest(t *testing.T) {
	store := setupTestStore(t).RunStore()
	ctx := context.Background()
	started := time.Date(2024, 1, 15, 12, 0, 0, 123, time.UTC)

	require.NoError(t, store.Save(ctx, testReport("run-1", started)))

	got, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, testReport("run-1", started), *got)
}

func TestRunStore_Latest_Empty(t *testing.T) {
	store := setupTestStore(t).RunStore()

	_, err := store.Latest(context.Background())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_Save_Upserts(t *testing.T) {
	store := setupTestStore(t).RunStore()
	ctx := context.Background()
	report := testReport("run-1", time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))

	require.NoError(t, store.Save(ctx, report))
	report.Indexed = 3
	report.Failed = 0
	report.Failures = nil
	report.Cancelled = true
	require.NoError(t, store.Save(ctx, report))

	runs, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Indexed)
	assert.True(t, runs[0].Cancelled)
	assert.Nil(t, runs[0].Failures)
}

func TestRunStore_Save_RequiresID(t *testing.T) {
	store := setupTestStore(t).RunStore()

	err := store.Save(context.Background(), domain.RunReport{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunStore_List_NewestFirst(t *testing.T) {
	store := setupTestStore(t).RunStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, testReport("run-a", base)))
	require.NoError(t, store.Save(ctx, testReport("run-c", base.Add(2*time.Hour))))
	require.NoError(t, store.Save(ctx, testReport("run-b", base.Add(time.Hour))))

	runs, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].ID)
	assert.Equal(t, "run-b", runs[1].ID)

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRunStore_UnfinishedRun(t *testing.T) {
	store := setupTestStore(t).RunStore()
	ctx := context.Background()

	report := domain.RunReport{ID: "run-1", StartedAt: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)}
	require.NoError(t, store.Save(ctx, report))

	got, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.True(t, got.FinishedAt.IsZero())
	assert.Zero(t, got.Duration())
}
