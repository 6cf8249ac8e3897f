package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietmind/recall/pkg/routing"
	"github.com/quietmind/recall/pkg/semantic"
)

var scoreNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func candidate(id, category, content string, usage int, age time.Duration) Record {
	created := scoreNow.Add(-age)
	return Record{
		ID:             id,
		UserID:         "user-1",
		Category:       category,
		Content:        content,
		RelevanceScore: 0.5,
		UsageFrequency: usage,
		CreatedAt:      created,
		LastAccessedAt: created,
	}
}

func TestScoreCandidatesRankedBestFirst(t *testing.T) {
	query := "I'm worried about my project deadline"
	analysis := semantic.Analyze(query)
	route := routing.Result{Category: "work_career", Confidence: 0.7}

	candidates := []Record{
		candidate("off-topic", "daily_life", "made pasta for dinner last night", 0, 60*24*time.Hour),
		candidate("on-topic", "work_career", "the project deadline is next friday and I'm worried", 3, 2*24*time.Hour),
	}

	ranked := ScoreCandidates(query, analysis, route, candidates, scoreNow)

	require.Len(t, ranked, 2)
	assert.Equal(t, "on-topic", ranked[0].Record.ID)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestScoreCandidatesClamped(t *testing.T) {
	query := "remember what I said about my boss and the deadline at work"
	analysis := semantic.Analyze(query)
	route := routing.Result{Category: "work_career", Confidence: 1.0}

	hot := candidate("hot", "work_career", "remember what I said about my boss and the deadline at work", 20, time.Hour)
	hot.RelevanceScore = 1.0
	cold := candidate("cold", "preferences", "xqz", 0, 365*24*time.Hour)
	cold.RelevanceScore = 0.0

	ranked := ScoreCandidates(query, analysis, route, []Record{hot, cold}, scoreNow)

	for _, sm := range ranked {
		assert.GreaterOrEqual(t, sm.Score, 0.1)
		assert.LessOrEqual(t, sm.Score, 1.0)
	}
	assert.Equal(t, 1.0, ranked[0].Score)
}

func TestScoreCandidatesPure(t *testing.T) {
	query := "how is my sister doing"
	analysis := semantic.Analyze(query)
	route := routing.Result{Category: "relationships", Confidence: 0.6}
	candidates := []Record{
		candidate("a", "relationships", "my sister started a new job", 1, 24*time.Hour),
		candidate("b", "relationships", "argument with my sister about money", 2, 48*time.Hour),
	}

	first := ScoreCandidates(query, analysis, route, candidates, scoreNow)
	second := ScoreCandidates(query, analysis, route, candidates, scoreNow)

	assert.Equal(t, first, second)
}

func TestUsageFrequencyMonotone(t *testing.T) {
	query := "thinking about work"
	analysis := semantic.Analyze(query)
	route := routing.Result{Category: "work_career", Confidence: 0.5}

	// Identical except usage frequency.
	prev := -1.0
	for _, usage := range []int{0, 1, 2, 5, 10, 50} {
		rec := candidate("u", "work_career", "busy week at work", usage, 10*24*time.Hour)
		ranked := ScoreCandidates(query, analysis, route, []Record{rec}, scoreNow)
		require.Len(t, ranked, 1)
		assert.GreaterOrEqual(t, ranked[0].Score, prev, "usage %d", usage)
		prev = ranked[0].Score
	}
}

func TestCategoryMatchConfidenceBoost(t *testing.T) {
	query := "thinking about work stuff"
	analysis := semantic.Analyze(query)
	content := "busy week at work"

	matching := candidate("m", "work_career", content, 0, 10*24*time.Hour)
	other := candidate("o", "daily_life", content, 0, 10*24*time.Hour)

	route := routing.Result{Category: "work_career", Confidence: 0.8}
	ranked := ScoreCandidates(query, analysis, route, []Record{matching, other}, scoreNow)

	require.Equal(t, "m", ranked[0].Record.ID)
	assert.InDelta(t, 0.08, ranked[0].Breakdown.ConfidenceBoost, 0.001)
	assert.Zero(t, ranked[1].Breakdown.ConfidenceBoost)
}

func TestMemoryReferenceBoost(t *testing.T) {
	query := "remember what I told you about my landlord"
	analysis := semantic.Analyze(query)
	require.True(t, analysis.MemoryReference)

	rec := candidate("r", "daily_life", "my landlord is raising the rent", 0, 24*time.Hour)
	ranked := ScoreCandidates(query, analysis, routing.Result{Category: "daily_life"}, []Record{rec}, scoreNow)

	assert.InDelta(t, 0.1, ranked[0].Breakdown.ReferenceBoost, 0.001)
}

func TestEmotionalAlignmentBands(t *testing.T) {
	emotional := semantic.Analyze("I'm so stressed and overwhelmed")
	require.GreaterOrEqual(t, emotional.EmotionalWeight, 0.5)

	neutral := semantic.Analyze("grocery list for the weekend")
	require.Less(t, neutral.EmotionalWeight, 0.2)

	emotionalRec := candidate("e", "emotional_wellbeing", "feeling anxious and overwhelmed lately", 0, time.Hour)
	neutralRec := candidate("n", "daily_life", "bought groceries on the way home", 0, time.Hour)

	// Both emotional: highest band.
	high := emotionalAlignment(emotional, emotionalRec)
	assert.GreaterOrEqual(t, high, 0.9)

	// Both neutral: middle band.
	mid := emotionalAlignment(neutral, neutralRec)
	assert.Equal(t, 0.5, mid)

	// Divergent: below both.
	low := emotionalAlignment(emotional, neutralRec)
	assert.Less(t, low, mid)
	assert.GreaterOrEqual(t, low, 0.2)
}

func TestEmotionalMetadataLiftsMemoryWeight(t *testing.T) {
	emotional := semantic.Analyze("I'm so stressed and overwhelmed")

	rec := candidate("f", "daily_life", "that conversation after the funeral", 0, time.Hour)
	rec.Metadata = map[string]any{"emotional_content": true}

	aligned := emotionalAlignment(emotional, rec)
	assert.GreaterOrEqual(t, aligned, 0.9)
}

func TestTextSimilaritySubstringBonus(t *testing.T) {
	queryWords := semantic.MeaningfulWords("project deadline")

	exact := textSimilarity("project deadline", queryWords, "the project deadline moved again")
	partial := textSimilarity("project deadline", queryWords, "deadline for the other project review cycle update")

	assert.Greater(t, exact, partial)
	assert.LessOrEqual(t, exact, 1.0)
}

func TestRecencyUsageBuckets(t *testing.T) {
	fresh := candidate("f", "daily_life", "x", 0, time.Hour)
	old := candidate("o", "daily_life", "x", 0, 200*24*time.Hour)

	assert.Greater(t, recencyUsage(fresh, scoreNow), recencyUsage(old, scoreNow))
	assert.Zero(t, recencyUsage(old, scoreNow))
	assert.LessOrEqual(t, recencyUsage(candidate("m", "daily_life", "x", 50, time.Minute), scoreNow), 1.0)
}
