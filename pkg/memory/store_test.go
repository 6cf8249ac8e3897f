package memory

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to the database named by TEST_DATABASE_URL. Tests in
// this file are skipped when no test database is available.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool := NewPool(PoolConfig{URL: url, Logger: zerolog.Nop()})
	require.NoError(t, pool.Initialize(ctx))
	t.Cleanup(pool.Close)

	store, err := NewStore(ctx, pool, zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestStoreInsertAndQueryRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := "it-" + time.Now().UTC().Format("20060102150405.000")

	rec := &Record{
		UserID:   userID,
		Category: "work_career",
		Content:  "integration test memory about a deadline",
		Metadata: map[string]any{"urgent": true},
	}
	require.NoError(t, store.Insert(ctx, rec))
	assert.NotEmpty(t, rec.ID)

	got, err := store.QueryByCategory(ctx, userID, "work_career", QueryFilters{}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.Content, got[0].Content)
	assert.Equal(t, true, got[0].Metadata["urgent"])

	yes := true
	filtered, err := store.QueryByCategory(ctx, userID, "work_career", QueryFilters{Urgent: &yes}, 10)
	require.NoError(t, err)
	assert.Len(t, filtered, 1)
}

func TestStoreRecordAccess(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := "it-access-" + time.Now().UTC().Format("20060102150405.000")

	rec := &Record{UserID: userID, Category: "daily_life", Content: "access tracking check"}
	require.NoError(t, store.Insert(ctx, rec))

	require.NoError(t, store.RecordAccess(ctx, rec.ID))

	got, err := store.QueryByCategory(ctx, userID, "daily_life", QueryFilters{}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].UsageFrequency)

	assert.ErrorIs(t, store.RecordAccess(ctx, "00000000-0000-0000-0000-000000000000"), ErrNotFound)
}

func TestStoreStatsAndPrune(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := "it-stats-" + time.Now().UTC().Format("20060102150405.000")

	require.NoError(t, store.Insert(ctx, &Record{UserID: userID, Category: "health", Content: "a"}))
	require.NoError(t, store.Insert(ctx, &Record{UserID: userID, Category: "health", Content: "b"}))

	stats, err := store.Stats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats["health"])

	// Fresh records survive an aggressive prune window.
	removed, err := store.PruneStale(ctx, time.Hour, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, int64(0))

	after, err := store.Stats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, after["health"])
}

func TestStoreDurable(t *testing.T) {
	store := &Store{}
	assert.True(t, store.Durable())
}
