package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// fallbackRelevance is the reduced base relevance of records stored while
// degraded. Retrieval quality drops to substring containment, so scores must
// not compete with durable-store relevance.
const fallbackRelevance = 0.3

// FallbackStore is the in-memory degraded Backend. It keeps the store/retrieve
// contract alive when no durable store is configured, at reduced relevance and
// without persistence.
type FallbackStore struct {
	mu      sync.RWMutex
	byUser  map[string][]*Record
	logger  zerolog.Logger
	maxSize int
}

// NewFallbackStore creates the degraded backend. maxPerUser bounds per-user
// growth; oldest records are dropped on overflow.
func NewFallbackStore(maxPerUser int, logger zerolog.Logger) *FallbackStore {
	if maxPerUser <= 0 {
		maxPerUser = 500
	}
	return &FallbackStore{
		byUser:  make(map[string][]*Record),
		logger:  logger,
		maxSize: maxPerUser,
	}
}

// Insert stores the record in process memory.
func (s *FallbackStore) Insert(_ context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.LastAccessedAt = rec.CreatedAt
	rec.TokenCount = EstimateTokens(rec.Content)
	if rec.RelevanceScore == 0 {
		rec.RelevanceScore = fallbackRelevance
	}

	clone := *rec

	s.mu.Lock()
	defer s.mu.Unlock()
	records := append(s.byUser[rec.UserID], &clone)
	if len(records) > s.maxSize {
		records = records[len(records)-s.maxSize:]
	}
	s.byUser[rec.UserID] = records
	return nil
}

// QueryByCategory filters the user's records by category and the conjunctive
// filters, ranked the same way the durable store ranks.
func (s *FallbackStore) QueryByCategory(_ context.Context, userID, category string, f QueryFilters, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 15
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, rec := range s.byUser[userID] {
		if rec.Category != category || !matchFilters(rec, f) {
			continue
		}
		out = append(out, *rec)
	}

	sortCandidates(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// QueryRelatedCategories returns supplemental candidates per adjacent category.
func (s *FallbackStore) QueryRelatedCategories(_ context.Context, userID string, categories []string, perCategory int) ([]Record, error) {
	if perCategory <= 0 {
		perCategory = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, category := range categories {
		var batch []Record
		for _, rec := range s.byUser[userID] {
			if rec.Category == category {
				batch = append(batch, *rec)
			}
		}
		sortCandidates(batch)
		if len(batch) > perCategory {
			batch = batch[:perCategory]
		}
		out = append(out, batch...)
	}
	return out, nil
}

// RecordAccess bumps usage counters in place.
func (s *FallbackStore) RecordAccess(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, records := range s.byUser {
		for _, rec := range records {
			if rec.ID == id {
				rec.UsageFrequency++
				rec.LastAccessedAt = time.Now().UTC()
				return nil
			}
		}
	}
	return ErrNotFound
}

// PruneStale removes old, unused records.
func (s *FallbackStore) PruneStale(_ context.Context, maxAge time.Duration, maxUsage int) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for userID, records := range s.byUser {
		kept := records[:0]
		for _, rec := range records {
			if rec.CreatedAt.Before(cutoff) && rec.UsageFrequency <= maxUsage {
				removed++
				continue
			}
			kept = append(kept, rec)
		}
		s.byUser[userID] = kept
	}
	return removed, nil
}

// Stats counts records per category for a user.
func (s *FallbackStore) Stats(_ context.Context, userID string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]int)
	for _, rec := range s.byUser[userID] {
		stats[rec.Category]++
	}
	return stats, nil
}

// Durable reports that nothing survives a restart.
func (s *FallbackStore) Durable() bool { return false }

// Close drops all records.
func (s *FallbackStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser = make(map[string][]*Record)
}

func matchFilters(rec *Record, f QueryFilters) bool {
	if f.EmotionalContent != nil && metadataFlag(rec, "emotional_content") != *f.EmotionalContent {
		return false
	}
	if f.PersonalContext != "" &&
		!strings.Contains(strings.ToLower(rec.Content), strings.ToLower(f.PersonalContext)) {
		return false
	}
	if f.Urgent != nil && metadataFlag(rec, "urgent") != *f.Urgent {
		return false
	}
	return true
}

func metadataFlag(rec *Record, key string) bool {
	if rec.Metadata == nil {
		return false
	}
	switch v := rec.Metadata[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// sortCandidates mirrors the durable store's candidate ordering.
func sortCandidates(records []Record) {
	recentCutoff := time.Now().UTC().Add(-7 * 24 * time.Hour)
	sort.SliceStable(records, func(i, j int) bool {
		bi := records[i].RelevanceScore + usageBoost(records[i].UsageFrequency)
		bj := records[j].RelevanceScore + usageBoost(records[j].UsageFrequency)
		if bi != bj {
			return bi > bj
		}
		ri := records[i].LastAccessedAt.After(recentCutoff)
		rj := records[j].LastAccessedAt.After(recentCutoff)
		if ri != rj {
			return ri
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}

func usageBoost(usage int) float64 {
	if usage > 10 {
		usage = 10
	}
	return float64(usage) * 0.02
}

var _ Backend = (*FallbackStore)(nil)
