package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/quietmind/recall/internal/observability"
	"github.com/quietmind/recall/pkg/routing"
	"github.com/quietmind/recall/pkg/semantic"
	"github.com/quietmind/recall/pkg/taxonomy"
)

// Retrieval defaults. Tunable.
const (
	defaultCandidateLimit     = 15
	defaultMinPrimaryResults  = 10
	defaultRelatedPerCategory = 5
)

// ServiceConfig configures the memory service.
type ServiceConfig struct {
	// Pool is the durable-store handle. When nil, a pool is constructed from
	// the environment; if no connection string resolves, the service starts
	// in degraded mode instead of failing.
	Pool     *Pool
	Taxonomy *taxonomy.Taxonomy
	Logger   zerolog.Logger

	CandidateLimit     int
	MinPrimaryResults  int
	RelatedPerCategory int
	FallbackMaxPerUser int
}

// Service is the public facade over the memory core. All operations return
// structured results; no internal error escapes unhandled.
type Service struct {
	backend  Backend
	pool     *Pool
	ownPool  bool
	router   *routing.Router
	tax      *taxonomy.Taxonomy
	logger   zerolog.Logger
	degraded bool

	candidateLimit     int
	minPrimaryResults  int
	relatedPerCategory int
}

// NewService builds the service, selecting the durable or degraded backend at
// construction time. A missing connection string or failed store bootstrap
// switches to the in-memory fallback; the capability is reported through the
// Degraded flags on every result.
func NewService(ctx context.Context, cfg ServiceConfig) (*Service, error) {
	observability.EnsureRegistered()

	tax := cfg.Taxonomy
	if tax == nil {
		tax = taxonomy.Default()
	}

	s := &Service{
		pool:               cfg.Pool,
		router:             routing.New(routing.Config{Taxonomy: tax, Logger: cfg.Logger}),
		tax:                tax,
		logger:             cfg.Logger,
		candidateLimit:     orDefault(cfg.CandidateLimit, defaultCandidateLimit),
		minPrimaryResults:  orDefault(cfg.MinPrimaryResults, defaultMinPrimaryResults),
		relatedPerCategory: orDefault(cfg.RelatedPerCategory, defaultRelatedPerCategory),
	}

	if s.pool == nil {
		s.pool = NewPool(PoolConfig{Logger: cfg.Logger})
		s.ownPool = true
	}

	if err := s.pool.Initialize(ctx); err != nil {
		if !errors.Is(err, ErrNoConnString) {
			s.logger.Error().Err(err).Msg("Durable store unavailable")
		}
		return s.enterDegraded(cfg, err), nil
	}

	store, err := NewStore(ctx, s.pool, cfg.Logger)
	if err != nil {
		s.logger.Error().Err(err).Msg("Store bootstrap failed")
		return s.enterDegraded(cfg, err), nil
	}

	s.backend = store
	observability.SetDegradedMode(false)
	s.logger.Info().Msg("Memory service initialized with durable store")
	return s, nil
}

func (s *Service) enterDegraded(cfg ServiceConfig, cause error) *Service {
	s.logger.Warn().Err(cause).Msg("Entering degraded mode with in-memory fallback")
	s.backend = NewFallbackStore(cfg.FallbackMaxPerUser, cfg.Logger)
	s.degraded = true
	observability.SetDegradedMode(true)
	return s
}

// Degraded reports whether the service runs on the in-memory fallback.
func (s *Service) Degraded() bool { return s.degraded }

// Store classifies content into a category and persists it. Called by the
// conversation handler after each exchange.
func (s *Service) Store(ctx context.Context, userID, content string, metadata map[string]any) StoreResult {
	start := time.Now()

	if strings.TrimSpace(userID) == "" {
		return s.storeFailure(start, "user id is required")
	}
	if strings.TrimSpace(content) == "" {
		return s.storeFailure(start, "content is required")
	}

	analysis := semantic.Analyze(content)
	route := s.router.Route(content, userID, analysis)
	observability.RecordRoute(route.Category)

	rec := &Record{
		UserID:      userID,
		Category:    route.Category,
		Subcategory: route.Subcategory,
		Content:     content,
		Metadata:    enrichMetadata(metadata, analysis),
	}

	if err := s.backend.Insert(ctx, rec); err != nil {
		s.logger.Error().Err(err).Str("user", userID).Msg("Memory insert failed")
		return s.storeFailure(start, "failed to store memory")
	}

	observability.RecordStore(time.Since(start), true)
	s.logger.Debug().
		Str("user", userID).
		Str("category", route.Category).
		Str("id", rec.ID).
		Msg("Memory stored")

	return StoreResult{
		Success:  true,
		ID:       rec.ID,
		Category: route.Category,
		Degraded: s.degraded,
	}
}

// Retrieve classifies the query, gathers and ranks candidates, and assembles a
// context block that never exceeds maxTokens. Called by the prompt
// construction layer before each model call.
func (s *Service) Retrieve(ctx context.Context, userID, query string, maxTokens int) RetrieveResult {
	start := time.Now()
	if maxTokens <= 0 {
		maxTokens = DefaultTokenCeiling
	}

	result := RetrieveResult{Degraded: s.degraded}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(query) == "" {
		observability.RecordRetrieve(time.Since(start), 0, false)
		return result
	}

	analysis := semantic.Analyze(query)
	route := s.router.Route(query, userID, analysis)
	observability.RecordRoute(route.Category)
	result.Category = route.Category

	candidates := s.gatherCandidates(ctx, userID, route)
	if len(candidates) == 0 {
		observability.RecordRetrieve(time.Since(start), 0, true)
		return result
	}

	ranked := ScoreCandidates(query, analysis, route, candidates, time.Now().UTC())
	assembly := Assemble(ranked, maxTokens)
	if len(assembly.Items) == 0 {
		observability.RecordRetrieve(time.Since(start), 0, true)
		return result
	}

	s.trackAccess(ctx, assembly)
	s.publishPoolStats()

	result.ContextFound = true
	result.Memories = formatContextBlock(assembly, time.Now().UTC())
	result.MemoryCount = len(assembly.Items)
	result.TotalTokens = assembly.TotalTokens

	observability.RecordRetrieve(time.Since(start), assembly.TotalTokens, true)
	s.logger.Debug().
		Str("user", userID).
		Str("category", route.Category).
		Int("memories", result.MemoryCount).
		Int("tokens", result.TotalTokens).
		Msg("Context assembled")
	return result
}

// gatherCandidates queries the primary category and supplements from adjacent
// categories when the primary yield is sparse. Read-side failures degrade to
// an empty result for the affected category only.
func (s *Service) gatherCandidates(ctx context.Context, userID string, route routing.Result) []Record {
	primary, err := s.backend.QueryByCategory(ctx, userID, route.Category, QueryFilters{}, s.candidateLimit)
	if err != nil {
		s.noteReadFailure(err, route.Category)
		primary = nil
	}

	candidates := primary
	if len(primary) < s.minPrimaryResults {
		related := s.tax.Related(route.Category)
		if len(related) > 0 {
			supplemental, err := s.backend.QueryRelatedCategories(ctx, userID, related, s.relatedPerCategory)
			if err != nil {
				s.noteReadFailure(err, strings.Join(related, ","))
			} else {
				candidates = append(candidates, supplemental...)
			}
		}
	}

	return dedupeByID(candidates)
}

func (s *Service) noteReadFailure(err error, category string) {
	if errors.Is(err, ErrPoolTimeout) {
		observability.RecordPoolTimeout()
	}
	s.logger.Warn().Err(err).Str("category", category).Msg("Candidate query failed, treating as empty")
}

// trackAccess bumps usage counters for admitted, non-truncated items.
// Best-effort: failures are logged and swallowed.
func (s *Service) trackAccess(ctx context.Context, assembly Assembly) {
	for _, item := range assembly.Items {
		if item.Truncated {
			continue
		}
		if err := s.backend.RecordAccess(ctx, item.Record.ID); err != nil {
			observability.RecordAccessUpdate(false)
			s.logger.Warn().Err(err).Str("id", item.Record.ID).Msg("Access tracking failed")
			continue
		}
		observability.RecordAccessUpdate(true)
	}
}

// Health reports service status for the operational status endpoint.
func (s *Service) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Initialized: s.pool != nil && s.pool.Initialized(),
		Degraded:    s.degraded,
	}

	if s.degraded {
		status.Status = "degraded"
		return status
	}

	status.Pool = s.pool.Stat()
	if err := s.pool.Health(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Health check failed")
		status.Status = "unhealthy"
		return status
	}
	status.Status = "healthy"
	return status
}

// Stats returns per-category memory counts for a user.
func (s *Service) Stats(ctx context.Context, userID string) (map[string]int, error) {
	return s.backend.Stats(ctx, userID)
}

// Prune removes stale low-usage records. Exposed for the retention sweeper.
func (s *Service) Prune(ctx context.Context, maxAge time.Duration, maxUsage int) (int64, error) {
	removed, err := s.backend.PruneStale(ctx, maxAge, maxUsage)
	if err == nil && removed > 0 {
		observability.RecordPruned(removed)
	}
	return removed, err
}

// Close releases the backend and, when owned, the pool.
func (s *Service) Close() {
	s.backend.Close()
	if s.ownPool && s.pool != nil {
		s.pool.Close()
	}
}

func (s *Service) storeFailure(start time.Time, msg string) StoreResult {
	observability.RecordStore(time.Since(start), false)
	return StoreResult{Degraded: s.degraded, Error: msg}
}

func (s *Service) publishPoolStats() {
	if s.pool == nil {
		return
	}
	if st := s.pool.Stat(); st != nil {
		observability.SetPoolStats(st.AcquiredConns, st.IdleConns)
	}
}

// enrichMetadata copies caller metadata and fills derived flags without
// overwriting explicit values.
func enrichMetadata(metadata map[string]any, analysis semantic.Analysis) map[string]any {
	out := make(map[string]any, len(metadata)+2)
	for k, v := range metadata {
		out[k] = v
	}
	if _, ok := out["emotional_content"]; !ok && analysis.EmotionalWeight >= 0.5 {
		out["emotional_content"] = true
	}
	if _, ok := out["urgent"]; !ok && analysis.Urgency {
		out["urgent"] = true
	}
	return out
}

// formatContextBlock renders admitted memories as one paragraph each,
// prefixed with a relative-age annotation.
func formatContextBlock(assembly Assembly, now time.Time) string {
	paragraphs := make([]string, 0, len(assembly.Items))
	for _, item := range assembly.Items {
		age := humanize.RelTime(item.Record.CreatedAt, now, "ago", "from now")
		paragraphs = append(paragraphs, fmt.Sprintf("[%s] %s", age, item.Text))
	}
	return strings.Join(paragraphs, "\n\n")
}

func dedupeByID(records []Record) []Record {
	seen := make(map[string]bool, len(records))
	out := records[:0]
	for _, rec := range records {
		if seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		out = append(out, rec)
	}
	return out
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
