package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRun(id string, startedAt time.Time) *domain.RunRecord {
	return &domain.RunRecord{
		ID:            id,
		BatchID:       "batch-" + id,
		BatchName:     "serpcluster-" + id,
		State:         domain.RunSucceeded,
		KeywordCount:  120,
		LocationCount: 120,
		ClusterCount:  14,
		WarningCount:  2,
		StartedAt:     startedAt,
		FinishedAt:    startedAt.Add(3 * time.Minute),
	}
}

func TestRunStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	runs := store.RunStore()

	want := testRun("run-1", time.Now().Truncate(time.Second))
	require.NoError(t, runs.Save(context.Background(), want))

	got, err := runs.Get(context.Background(), "run-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.BatchID, got.BatchID)
	assert.Equal(t, want.BatchName, got.BatchName)
	assert.Equal(t, domain.RunSucceeded, got.State)
	assert.Equal(t, want.KeywordCount, got.KeywordCount)
	assert.Equal(t, want.LocationCount, got.LocationCount)
	assert.Equal(t, want.ClusterCount, got.ClusterCount)
	assert.Equal(t, want.WarningCount, got.WarningCount)
	assert.True(t, got.StartedAt.Equal(want.StartedAt.UTC()))
}

func TestRunStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.RunStore().Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRunStore_SaveUpsert(t *testing.T) {
	store := newTestStore(t)
	runs := store.RunStore()

	run := testRun("run-1", time.Now())
	require.NoError(t, runs.Save(context.Background(), run))

	run.State = domain.RunFailed
	run.Error = "create batch: boom"
	require.NoError(t, runs.Save(context.Background(), run))

	got, err := runs.Get(context.Background(), "run-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.RunFailed, got.State)
	assert.Equal(t, "create batch: boom", got.Error)

	all, err := runs.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRunStore_SaveRequiresID(t *testing.T) {
	store := newTestStore(t)

	err := store.RunStore().Save(context.Background(), &domain.RunRecord{})
	assert.Error(t, err)
}

func TestRunStore_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	runs := store.RunStore()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"run-old", "run-mid", "run-new"} {
		require.NoError(t, runs.Save(context.Background(), testRun(id, base.Add(time.Duration(i)*time.Minute))))
	}

	got, err := runs.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "run-new", got[0].ID)
	assert.Equal(t, "run-old", got[2].ID)
}

func TestRunStore_ListLimit(t *testing.T) {
	store := newTestStore(t)
	runs := store.RunStore()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		run := testRun(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, runs.Save(context.Background(), run))
	}

	got, err := runs.List(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStore_MigrateIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.RunStore().Save(context.Background(), testRun("run-1", time.Now())))
	require.NoError(t, store.Close())

	// Reopening the same directory re-runs the migration loop over an
	// already-migrated database.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.RunStore().Get(context.Background(), "run-1")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
