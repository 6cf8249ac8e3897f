package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const schema = `
	CREATE TABLE IF NOT EXISTS memories (
		id               UUID PRIMARY KEY,
		user_id          TEXT NOT NULL,
		category         TEXT NOT NULL,
		subcategory      TEXT NOT NULL DEFAULT '',
		content          TEXT NOT NULL,
		token_count      INTEGER NOT NULL CHECK (token_count >= 0),
		relevance_score  DOUBLE PRECISION NOT NULL DEFAULT 0.5,
		usage_frequency  INTEGER NOT NULL DEFAULT 0 CHECK (usage_frequency >= 0),
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_accessed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		metadata         JSONB NOT NULL DEFAULT '{}'::jsonb
	);
	CREATE INDEX IF NOT EXISTS idx_memories_user_category
		ON memories (user_id, category);
	CREATE INDEX IF NOT EXISTS idx_memories_created
		ON memories (created_at);
`

const selectColumns = `id, user_id, category, subcategory, content, token_count,
	relevance_score, usage_frequency, created_at, last_accessed_at, metadata`

// candidateOrder ranks candidates by usage-boosted relevance, then a
// recent-access bonus, then recency of creation. Usage contribution saturates
// so heavily-reused memories cannot drown out base relevance entirely.
const candidateOrder = `
	ORDER BY relevance_score + LEAST(usage_frequency, 10) * 0.02 DESC,
	         (last_accessed_at > now() - interval '7 days')::int DESC,
	         created_at DESC`

// Store is the durable Postgres-backed Backend.
type Store struct {
	pool   *Pool
	logger zerolog.Logger
}

// NewStore creates the durable backend over an initialized pool and ensures
// the schema exists.
func NewStore(ctx context.Context, pool *Pool, logger zerolog.Logger) (*Store, error) {
	s := &Store{pool: pool, logger: logger}

	if err := pool.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, schema)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return s, nil
}

// Insert stores a new record inside a transaction. Failures propagate to the
// caller; the service surfaces them as a failed store result.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.LastAccessedAt = rec.CreatedAt
	rec.TokenCount = EstimateTokens(rec.Content)
	if rec.RelevanceScore == 0 {
		rec.RelevanceScore = 0.5
	}
	if rec.Metadata == nil {
		rec.Metadata = map[string]any{}
	}

	return s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO memories (id, user_id, category, subcategory, content,
				token_count, relevance_score, usage_frequency, created_at,
				last_accessed_at, metadata)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			rec.ID, rec.UserID, rec.Category, rec.Subcategory, rec.Content,
			rec.TokenCount, rec.RelevanceScore, rec.UsageFrequency,
			rec.CreatedAt, rec.LastAccessedAt, rec.Metadata,
		)
		if err != nil {
			return fmt.Errorf("failed to insert memory: %w", err)
		}
		return nil
	})
}

// QueryByCategory returns ranked candidates for one category with the filters
// composed conjunctively.
func (s *Store) QueryByCategory(ctx context.Context, userID, category string, f QueryFilters, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 15
	}

	query := `SELECT ` + selectColumns + ` FROM memories WHERE user_id = $1 AND category = $2`
	args := []any{userID, category}

	if f.EmotionalContent != nil {
		args = append(args, *f.EmotionalContent)
		query += fmt.Sprintf(` AND COALESCE((metadata->>'emotional_content')::boolean, false) = $%d`, len(args))
	}
	if f.PersonalContext != "" {
		args = append(args, "%"+f.PersonalContext+"%")
		query += fmt.Sprintf(` AND content ILIKE $%d`, len(args))
	}
	if f.Urgent != nil {
		args = append(args, *f.Urgent)
		query += fmt.Sprintf(` AND COALESCE((metadata->>'urgent')::boolean, false) = $%d`, len(args))
	}

	args = append(args, limit)
	query += candidateOrder + fmt.Sprintf(` LIMIT $%d`, len(args))

	return s.queryRecords(ctx, query, args...)
}

// QueryRelatedCategories pulls supplemental candidates from adjacent
// categories, up to perCategory from each, preserving the category order of
// the adjacency table.
func (s *Store) QueryRelatedCategories(ctx context.Context, userID string, categories []string, perCategory int) ([]Record, error) {
	if perCategory <= 0 {
		perCategory = 5
	}

	var out []Record
	for _, category := range categories {
		records, err := s.queryRecords(ctx,
			`SELECT `+selectColumns+` FROM memories WHERE user_id = $1 AND category = $2`+
				candidateOrder+` LIMIT $3`,
			userID, category, perCategory,
		)
		if err != nil {
			// A failing category degrades to empty for that category only.
			s.logger.Warn().Err(err).Str("category", category).Msg("Related category query failed")
			continue
		}
		out = append(out, records...)
	}
	return out, nil
}

// RecordAccess increments usage_frequency and refreshes last_accessed_at.
// Best-effort by contract: callers log and swallow failures.
func (s *Store) RecordAccess(ctx context.Context, id string) error {
	conn, err := s.pool.AcquireRead(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
		UPDATE memories
		SET usage_frequency = usage_frequency + 1, last_accessed_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to record access: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// PruneStale deletes records older than maxAge whose usage never exceeded
// maxUsage. Used by the retention sweeper.
func (s *Store) PruneStale(ctx context.Context, maxAge time.Duration, maxUsage int) (int64, error) {
	var removed int64
	err := s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM memories
			WHERE created_at < now() - $1::interval AND usage_frequency <= $2`,
			fmt.Sprintf("%d seconds", int64(maxAge.Seconds())), maxUsage,
		)
		if err != nil {
			return fmt.Errorf("failed to prune memories: %w", err)
		}
		removed = tag.RowsAffected()
		return nil
	})
	return removed, err
}

// Stats returns per-category record counts for a user.
func (s *Store) Stats(ctx context.Context, userID string) (map[string]int, error) {
	conn, err := s.pool.AcquireRead(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx,
		`SELECT category, COUNT(*) FROM memories WHERE user_id = $1 GROUP BY category`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
		stats[category] = count
	}
	return stats, rows.Err()
}

// Durable reports that records survive restarts.
func (s *Store) Durable() bool { return true }

// Close is a no-op; the injected pool owns the connections.
func (s *Store) Close() {}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	conn, err := s.pool.AcquireRead(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(rows pgx.Rows) (Record, error) {
	var rec Record
	err := rows.Scan(
		&rec.ID, &rec.UserID, &rec.Category, &rec.Subcategory, &rec.Content,
		&rec.TokenCount, &rec.RelevanceScore, &rec.UsageFrequency,
		&rec.CreatedAt, &rec.LastAccessedAt, &rec.Metadata,
	)
	return rec, err
}

var _ Backend = (*Store)(nil)
