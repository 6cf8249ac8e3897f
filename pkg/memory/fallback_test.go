package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFallback() *FallbackStore {
	return NewFallbackStore(0, zerolog.Nop())
}

func TestFallbackInsertAssignsDefaults(t *testing.T) {
	s := newFallback()
	ctx := context.Background()

	rec := &Record{UserID: "u1", Category: "daily_life", Content: "walked the dog this morning"}
	require.NoError(t, s.Insert(ctx, rec))

	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Equal(t, EstimateTokens(rec.Content), rec.TokenCount)
	assert.Equal(t, fallbackRelevance, rec.RelevanceScore)
}

func TestFallbackQueryByCategory(t *testing.T) {
	s := newFallback()
	ctx := context.Background()

	for i, content := range []string{"work note one", "work note two"} {
		require.NoError(t, s.Insert(ctx, &Record{
			UserID:   "u1",
			Category: "work_career",
			Content:  fmt.Sprintf("%s %d", content, i),
		}))
	}
	require.NoError(t, s.Insert(ctx, &Record{UserID: "u1", Category: "health", Content: "gym session"}))
	require.NoError(t, s.Insert(ctx, &Record{UserID: "u2", Category: "work_career", Content: "other user"}))

	got, err := s.QueryByCategory(ctx, "u1", "work_career", QueryFilters{}, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, rec := range got {
		assert.Equal(t, "u1", rec.UserID)
		assert.Equal(t, "work_career", rec.Category)
	}
}

func TestFallbackQueryFilters(t *testing.T) {
	s := newFallback()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, &Record{
		UserID: "u1", Category: "health", Content: "anxious about the surgery",
		Metadata: map[string]any{"emotional_content": true, "urgent": true},
	}))
	require.NoError(t, s.Insert(ctx, &Record{
		UserID: "u1", Category: "health", Content: "routine checkup scheduled",
	}))

	yes := true
	got, err := s.QueryByCategory(ctx, "u1", "health", QueryFilters{EmotionalContent: &yes}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Content, "surgery")

	got, err = s.QueryByCategory(ctx, "u1", "health", QueryFilters{Urgent: &yes}, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.QueryByCategory(ctx, "u1", "health", QueryFilters{PersonalContext: "checkup"}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Content, "checkup")
}

func TestFallbackQueryRelatedCategories(t *testing.T) {
	s := newFallback()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, &Record{UserID: "u1", Category: "work_career", Content: "deadline"}))
	require.NoError(t, s.Insert(ctx, &Record{UserID: "u1", Category: "finances", Content: "budget"}))
	require.NoError(t, s.Insert(ctx, &Record{UserID: "u1", Category: "health", Content: "gym"}))

	got, err := s.QueryRelatedCategories(ctx, "u1", []string{"work_career", "finances"}, 5)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFallbackRecordAccess(t *testing.T) {
	s := newFallback()
	ctx := context.Background()

	rec := &Record{UserID: "u1", Category: "daily_life", Content: "note"}
	require.NoError(t, s.Insert(ctx, rec))

	require.NoError(t, s.RecordAccess(ctx, rec.ID))
	require.NoError(t, s.RecordAccess(ctx, rec.ID))

	got, err := s.QueryByCategory(ctx, "u1", "daily_life", QueryFilters{}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].UsageFrequency)

	assert.ErrorIs(t, s.RecordAccess(ctx, "missing-id"), ErrNotFound)
}

func TestFallbackOrderingPrefersUsageAndRecency(t *testing.T) {
	s := newFallback()
	ctx := context.Background()

	cold := &Record{UserID: "u1", Category: "daily_life", Content: "cold"}
	hot := &Record{UserID: "u1", Category: "daily_life", Content: "hot"}
	require.NoError(t, s.Insert(ctx, cold))
	require.NoError(t, s.Insert(ctx, hot))

	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordAccess(ctx, hot.ID))
	}

	got, err := s.QueryByCategory(ctx, "u1", "daily_life", QueryFilters{}, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "hot", got[0].Content)
}

func TestFallbackPruneStale(t *testing.T) {
	s := newFallback()
	ctx := context.Background()

	old := &Record{
		UserID: "u1", Category: "daily_life", Content: "ancient",
		CreatedAt: time.Now().UTC().Add(-400 * 24 * time.Hour),
	}
	fresh := &Record{UserID: "u1", Category: "daily_life", Content: "recent"}
	require.NoError(t, s.Insert(ctx, old))
	require.NoError(t, s.Insert(ctx, fresh))

	removed, err := s.PruneStale(ctx, 180*24*time.Hour, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	got, err := s.QueryByCategory(ctx, "u1", "daily_life", QueryFilters{}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "recent", got[0].Content)
}

func TestFallbackPruneSparesUsedRecords(t *testing.T) {
	s := newFallback()
	ctx := context.Background()

	used := &Record{
		UserID: "u1", Category: "daily_life", Content: "old but loved",
		CreatedAt: time.Now().UTC().Add(-400 * 24 * time.Hour),
	}
	require.NoError(t, s.Insert(ctx, used))
	require.NoError(t, s.RecordAccess(ctx, used.ID))

	removed, err := s.PruneStale(ctx, 180*24*time.Hour, 0)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestFallbackStats(t *testing.T) {
	s := newFallback()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, &Record{UserID: "u1", Category: "work_career", Content: "a"}))
	require.NoError(t, s.Insert(ctx, &Record{UserID: "u1", Category: "work_career", Content: "b"}))
	require.NoError(t, s.Insert(ctx, &Record{UserID: "u1", Category: "health", Content: "c"}))

	stats, err := s.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"work_career": 2, "health": 1}, stats)
}

func TestFallbackMaxPerUserBound(t *testing.T) {
	s := NewFallbackStore(3, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Insert(ctx, &Record{
			UserID: "u1", Category: "daily_life",
			Content: fmt.Sprintf("note %d", i),
		}))
	}

	stats, err := s.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats["daily_life"])

	// Oldest entries were dropped, newest survive.
	got, err := s.QueryByCategory(ctx, "u1", "daily_life", QueryFilters{}, 10)
	require.NoError(t, err)
	for _, rec := range got {
		assert.NotEqual(t, "note 0", rec.Content)
	}
}

func TestFallbackNotDurable(t *testing.T) {
	s := newFallback()
	assert.False(t, s.Durable())
}
