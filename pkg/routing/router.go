// Package routing classifies queries into memory categories.
//
// Classification is a lexical scoring pass over the category taxonomy plus
// semantic boosts from the feature extractor, followed by a deterministic
// override chain. The router never returns an error: any internal failure
// collapses to a fixed fallback category at low confidence.
package routing

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quietmind/recall/internal/observability"
	"github.com/quietmind/recall/pkg/semantic"
	"github.com/quietmind/recall/pkg/taxonomy"
)

// Result is the routing outcome for one query. Ephemeral, produced per request.
type Result struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory,omitempty"`
	Confidence  float64 `json:"confidence"`
	Alternate   string  `json:"alternate,omitempty"`
	Tertiary    string  `json:"tertiary,omitempty"`
	Reasoning   string  `json:"reasoning"`
}

// Scoring weights. Tunable defaults, not load-bearing invariants.
const (
	keywordWeight     = 1.0
	patternWeight     = 2.0
	entityBoost       = 0.75
	contextClueBoost  = 0.25
	densityBonus      = 0.5
	fallbackConfident = 0.3

	minConfidence = 0.2
	maxConfidence = 1.0

	defaultCacheSize = 256
	cacheKeyPrefix   = 80
)

// intentAffinity maps detected intent to category score boosts.
var intentAffinity = map[semantic.Intent]map[string]float64{
	semantic.IntentEmotionalSupport: {
		"emotional_wellbeing": 1.5,
		"relationships":       0.5,
	},
	semantic.IntentPlanning: {
		"goals_plans": 1.5,
		"work_career": 0.5,
	},
	semantic.IntentTaskRequest: {
		"daily_life":  0.5,
		"goals_plans": 0.5,
	},
	semantic.IntentInformationSharing: {
		"preferences": 0.5,
		"daily_life":  0.25,
	},
	semantic.IntentMemoryRecall: {
		// Recall queries lean on entity alignment rather than intent.
	},
}

// entityCategory maps extracted topic entities to their home category.
var entityCategory = map[string]string{
	"work":    "work_career",
	"family":  "relationships",
	"partner": "relationships",
	"friends": "relationships",
	"health":  "health",
	"money":   "finances",
	"school":  "goals_plans",
	"home":    "daily_life",
	"travel":  "daily_life",
	"hobby":   "preferences",
}

var (
	pastTimeframe   = regexp.MustCompile(`\b(yesterday|last (week|month|night|year)|earlier|a while ago|the other day)\b`)
	futureTimeframe = regexp.MustCompile(`\b(tomorrow|next (week|month|year)|soon|upcoming|later this)\b`)
)

// Config holds router construction options.
type Config struct {
	Taxonomy  *taxonomy.Taxonomy
	Logger    zerolog.Logger
	CacheSize int
}

// Router classifies queries. Safe for concurrent use.
type Router struct {
	tax    *taxonomy.Taxonomy
	cache  *resultCache
	logger zerolog.Logger
}

// New creates a router over the given taxonomy.
func New(cfg Config) *Router {
	tax := cfg.Taxonomy
	if tax == nil {
		tax = taxonomy.Default()
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	return &Router{
		tax:    tax,
		cache:  newResultCache(size),
		logger: cfg.Logger,
	}
}

// Route classifies a query. analysis must come from semantic.Analyze on the
// same query; the caller computes it once and shares it with the scorer.
// Route never panics past its boundary: internal failures produce the fixed
// fallback category.
func (r *Router) Route(query, userID string, analysis semantic.Analysis) (result Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Interface("panic", rec).Str("user", userID).Msg("Routing failed, using fallback")
			result = fallbackResult(fmt.Sprintf("internal error: %v", rec))
		}
	}()

	text := strings.ToLower(strings.TrimSpace(query))
	if text == "" {
		return fallbackResult("empty query")
	}

	key := cacheKey(text, userID)
	if cached, ok := r.cache.get(key); ok {
		observability.RecordRouteCache(true)
		return cached
	}
	observability.RecordRouteCache(false)

	result = r.classify(text, analysis)
	result = applyOverrides(text, analysis, result)

	r.cache.put(key, result)
	return result
}

// classify runs the scoring pass and confidence calculation.
func (r *Router) classify(text string, analysis semantic.Analysis) Result {
	words := semantic.MeaningfulWords(text)
	stats := r.tax.Match(text, words)
	if len(stats) == 0 {
		return fallbackResult("no categories loaded")
	}

	type scored struct {
		taxonomy.MatchStats
		score float64
	}

	ranked := make([]scored, 0, len(stats))
	for _, st := range stats {
		s := float64(st.KeywordHits)*keywordWeight + float64(st.PatternHits)*patternWeight
		s += intentAffinity[analysis.Intent][st.Category]
		s += emotionalAffinity(st.Category, analysis)
		s += urgencyAffinity(st.Category, analysis)
		s += timeframeAffinity(st.Category, text)
		s += entityAlignment(st.Category, analysis.Entities)
		if analysis.PersonalContext && st.Priority >= 2 {
			s += contextClueBoost
		}
		if st.KeywordHits >= 3 {
			s += densityBonus * float64(st.KeywordHits-2)
		}
		ranked = append(ranked, scored{MatchStats: st, score: s})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].Priority > ranked[j].Priority
	})

	best := ranked[0]
	if best.score <= 0 {
		return fallbackResult("no lexical signal")
	}

	var second float64
	result := Result{
		Category:    best.Category,
		Subcategory: best.Subcategory,
	}
	if len(ranked) > 1 {
		second = ranked[1].score
		if second > 0 {
			result.Alternate = ranked[1].Category
		}
	}
	if len(ranked) > 2 && ranked[2].score > 0 {
		result.Tertiary = ranked[2].Category
	}

	result.Confidence = confidence(best.score, second, analysis)
	result.Reasoning = fmt.Sprintf(
		"category=%s score=%.2f keywords=%d patterns=%d intent=%s separation=%.2f",
		best.Category, best.score, best.KeywordHits, best.PatternHits, analysis.Intent, best.score-second,
	)
	return result
}

// confidence normalizes the winning score and layers on the separation,
// extractor and feature bonuses, clamped to [0.2, 1.0]. Every term is
// non-decreasing in the winning score, so adding keyword matches for the
// winning category never lowers confidence.
func confidence(best, second float64, analysis semantic.Analysis) float64 {
	normalized := best / (best + 6.0)

	separation := best - second
	sepBonus := separation / 4.0
	if sepBonus > 0.10 {
		sepBonus = 0.10
	}
	if sepBonus < 0 {
		sepBonus = 0
	}

	entities := float64(len(analysis.Entities))
	if entities > 3 {
		entities = 3
	}

	conf := 0.25 +
		0.45*normalized +
		sepBonus +
		0.05*analysis.IntentConfidence +
		0.02*entities +
		0.05*analysis.Complexity +
		0.05*analysis.EmotionalWeight
	if analysis.PersonalContext {
		conf += 0.03
	}

	return clampConfidence(conf)
}

func emotionalAffinity(category string, analysis semantic.Analysis) float64 {
	if analysis.EmotionalWeight == 0 {
		return 0
	}
	switch category {
	case "emotional_wellbeing":
		return 2.0 * analysis.EmotionalWeight
	case "relationships", "health":
		return 0.5 * analysis.EmotionalWeight
	}
	return 0
}

func urgencyAffinity(category string, analysis semantic.Analysis) float64 {
	if !analysis.Urgency {
		return 0
	}
	switch category {
	case "work_career", "health", "emotional_wellbeing":
		return 0.5
	}
	return 0
}

func timeframeAffinity(category string, text string) float64 {
	switch category {
	case "daily_life":
		if pastTimeframe.MatchString(text) {
			return 0.5
		}
	case "goals_plans":
		if futureTimeframe.MatchString(text) {
			return 0.5
		}
	}
	return 0
}

func entityAlignment(category string, entities []string) float64 {
	var boost float64
	for _, e := range entities {
		if entityCategory[e] == category {
			boost += entityBoost
		}
	}
	return boost
}

func fallbackResult(reason string) Result {
	return Result{
		Category:   taxonomy.FallbackCategory,
		Confidence: fallbackConfident,
		Reasoning:  "fallback: " + reason,
	}
}

func clampConfidence(v float64) float64 {
	if v < minConfidence {
		return minConfidence
	}
	if v > maxConfidence {
		return maxConfidence
	}
	return v
}

func cacheKey(text, userID string) string {
	if len(text) > cacheKeyPrefix {
		text = text[:cacheKeyPrefix]
	}
	return text + "|" + userID
}

// CacheLen reports the number of cached routing results.
func (r *Router) CacheLen() int {
	return r.cache.len()
}
