package memory

import (
	"context"
	"time"
)

// Record is one stored memory fragment. Content is immutable after insert;
// UsageFrequency and LastAccessedAt mutate only through RecordAccess.
type Record struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	Category       string         `json:"category"`
	Subcategory    string         `json:"subcategory,omitempty"`
	Content        string         `json:"content"`
	TokenCount     int            `json:"token_count"`
	RelevanceScore float64        `json:"relevance_score"`
	UsageFrequency int            `json:"usage_frequency"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// QueryFilters narrow a category query. Filters compose conjunctively; nil or
// zero values are ignored.
type QueryFilters struct {
	EmotionalContent *bool
	PersonalContext  string
	Urgent           *bool
}

// ScoredMemory pairs a record with its composite relevance score.
// Ephemeral, discarded after assembly.
type ScoredMemory struct {
	Record    Record
	Score     float64
	Breakdown ScoreBreakdown
}

// ScoreBreakdown records the per-factor contributions of a composite score.
type ScoreBreakdown struct {
	Base               float64 `json:"base"`
	TextSimilarity     float64 `json:"text_similarity"`
	IntentAlignment    float64 `json:"intent_alignment"`
	EmotionalAlignment float64 `json:"emotional_alignment"`
	RecencyUsage       float64 `json:"recency_usage"`
	ConfidenceBoost    float64 `json:"confidence_boost"`
	ReferenceBoost     float64 `json:"reference_boost"`
}

// StoreResult is the structured outcome of Service.Store.
type StoreResult struct {
	Success  bool   `json:"success"`
	ID       string `json:"id,omitempty"`
	Category string `json:"category,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RetrieveResult is the structured outcome of Service.Retrieve. Memories is a
// single human-readable block, one memory per paragraph, each prefixed with a
// relative-age annotation.
type RetrieveResult struct {
	ContextFound bool   `json:"context_found"`
	Memories     string `json:"memories"`
	MemoryCount  int    `json:"memory_count"`
	TotalTokens  int    `json:"total_tokens"`
	Category     string `json:"category,omitempty"`
	Degraded     bool   `json:"degraded,omitempty"`
}

// PoolStats is a snapshot of connection pool usage.
type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
}

// HealthStatus is the outcome of Service.Health.
type HealthStatus struct {
	Status      string     `json:"status"` // healthy, degraded, unhealthy
	Initialized bool       `json:"initialized"`
	Degraded    bool       `json:"degraded"`
	Pool        *PoolStats `json:"pool,omitempty"`
}

// Backend is the storage contract shared by the durable Postgres store and the
// in-memory degraded fallback. The variant is selected at construction time,
// never discovered at call time.
type Backend interface {
	// Insert stores a new record, assigning ID, timestamps and token count.
	Insert(ctx context.Context, rec *Record) error

	// QueryByCategory returns up to limit candidates for one category,
	// ordered by usage-boosted relevance, then recent access, then age.
	QueryByCategory(ctx context.Context, userID, category string, f QueryFilters, limit int) ([]Record, error)

	// QueryRelatedCategories returns supplemental candidates from adjacent
	// categories, up to perCategory each.
	QueryRelatedCategories(ctx context.Context, userID string, categories []string, perCategory int) ([]Record, error)

	// RecordAccess bumps usage_frequency and refreshes last_accessed_at.
	RecordAccess(ctx context.Context, id string) error

	// PruneStale deletes records older than maxAge with usage at or below
	// maxUsage, returning the number removed.
	PruneStale(ctx context.Context, maxAge time.Duration, maxUsage int) (int64, error)

	// Stats returns per-category record counts for a user.
	Stats(ctx context.Context, userID string) (map[string]int, error)

	// Durable reports whether records survive process restart.
	Durable() bool

	Close()
}

// EstimateTokens approximates the token cost of content as len/4, with a floor
// of one token for non-empty content.
func EstimateTokens(content string) int {
	if content == "" {
		return 0
	}
	n := len(content) / 4
	if n < 1 {
		n = 1
	}
	return n
}
