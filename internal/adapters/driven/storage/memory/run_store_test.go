package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

func TestNewRunStore(t *testing.T) {
	store := NewRunStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.runs)
}

func TestRunStore_Latest_Empty(t *testing.T) {
	_, err := NewRunStore().Latest(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_SaveAndList(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, domain.RunReport{ID: "a", StartedAt: base}))
	require.NoError(t, store.Save(ctx, domain.RunReport{ID: "b", StartedAt: base.Add(time.Minute)}))
	require.NoError(t, store.Save(ctx, domain.RunReport{ID: "c", StartedAt: base.Add(-time.Minute)}))

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", latest.ID)

	limited, err := store.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRunStore_Save_Replaces(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.RunReport{ID: "a", Indexed: 1}))
	require.NoError(t, store.Save(ctx, domain.RunReport{ID: "a", Indexed: 5}))

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 5, runs[0].Indexed)
}

func TestRunStore_Save_CopiesFailures(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	failures := []domain.FileFailure{{Name: "a.txt"}}

	require.NoError(t, store.Save(ctx, domain.RunReport{ID: "a", Failures: failures}))
	failures[0].Name = "mutated"

	got, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", got.Failures[0].Name)
}

func TestRunStore_Save_RequiresID(t *testing.T) {
	err := NewRunStore().Save(context.Background(), domain.RunReport{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunStore_ConcurrentSave(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Save(ctx, domain.RunReport{ID: string(rune('a' + i%26)), Indexed: i})
		}(i)
	}
	wg.Wait()

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 26)
}
