package memory

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/quietmind/recall/pkg/routing"
	"github.com/quietmind/recall/pkg/semantic"
)

// Composite scoring weights. Heuristic constants carried as tunable defaults.
const (
	textSimilarityWeight     = 0.35
	intentAlignmentWeight    = 0.25
	emotionalAlignmentWeight = 0.20
	recencyUsageWeight       = 0.15
	confidenceBoostFactor    = 0.10
	referenceBoost           = 0.10

	minScore = 0.1
	maxScore = 1.0
)

// intentBase is the intent→alignment lookup table.
var intentBase = map[semantic.Intent]float64{
	semantic.IntentMemoryRecall:       0.6,
	semantic.IntentQuestion:           0.55,
	semantic.IntentEmotionalSupport:   0.6,
	semantic.IntentTaskRequest:        0.45,
	semantic.IntentPlanning:           0.5,
	semantic.IntentInformationSharing: 0.4,
	semantic.IntentGeneral:            0.4,
}

// intentCues are content words that signal a memory is literal to an intent.
var intentCues = map[semantic.Intent][]string{
	semantic.IntentMemoryRecall:     {"remember", "mentioned", "told", "said"},
	semantic.IntentEmotionalSupport: {"feel", "feeling", "stressed", "anxious", "overwhelmed", "sad", "worried"},
	semantic.IntentPlanning:         {"plan", "goal", "want to", "going to"},
	semantic.IntentTaskRequest:      {"remind", "need to", "have to"},
}

// ScoreCandidates computes composite relevance for every candidate and returns
// them ranked best-first. Pure function of its inputs: identical arguments
// always produce identical output.
func ScoreCandidates(query string, analysis semantic.Analysis, route routing.Result, candidates []Record, now time.Time) []ScoredMemory {
	queryWords := semantic.MeaningfulWords(query)
	queryLower := strings.ToLower(strings.TrimSpace(query))

	scored := make([]ScoredMemory, 0, len(candidates))
	for _, rec := range candidates {
		b := ScoreBreakdown{
			Base:               rec.RelevanceScore,
			TextSimilarity:     textSimilarity(queryLower, queryWords, rec.Content),
			IntentAlignment:    intentAlignment(analysis.Intent, rec.Content),
			EmotionalAlignment: emotionalAlignment(analysis, rec),
			RecencyUsage:       recencyUsage(rec, now),
		}
		if rec.Category == route.Category {
			b.ConfidenceBoost = route.Confidence * confidenceBoostFactor
		}
		if analysis.MemoryReference || (analysis.Urgency && metadataFlag(&rec, "urgent")) {
			b.ReferenceBoost = referenceBoost
		}

		score := b.Base +
			textSimilarityWeight*b.TextSimilarity +
			intentAlignmentWeight*b.IntentAlignment +
			emotionalAlignmentWeight*b.EmotionalAlignment +
			recencyUsageWeight*b.RecencyUsage +
			b.ConfidenceBoost +
			b.ReferenceBoost

		scored = append(scored, ScoredMemory{
			Record:    rec,
			Score:     clampScore(score),
			Breakdown: b,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// textSimilarity blends Jaccard overlap, a cosine-like overlap approximation
// and a literal-substring bonus, all over stop-word-filtered words.
func textSimilarity(queryLower string, queryWords []string, content string) float64 {
	contentWords := semantic.MeaningfulWords(content)
	if len(queryWords) == 0 || len(contentWords) == 0 {
		return 0
	}

	querySet := toSet(queryWords)
	contentSet := toSet(contentWords)

	overlap := 0
	for w := range querySet {
		if contentSet[w] {
			overlap++
		}
	}

	union := len(querySet) + len(contentSet) - overlap
	jaccard := float64(overlap) / float64(union)
	cosine := float64(overlap) / math.Sqrt(float64(len(querySet))*float64(len(contentSet)))

	similarity := 0.5*jaccard + 0.4*cosine
	if queryLower != "" && strings.Contains(strings.ToLower(content), queryLower) {
		similarity += 0.25
	}
	if similarity > 1 {
		similarity = 1
	}
	return similarity
}

// intentAlignment starts from the lookup table and boosts when the memory
// contains cues literal to the detected intent.
func intentAlignment(intent semantic.Intent, content string) float64 {
	alignment := intentBase[intent]

	lower := strings.ToLower(content)
	for _, cue := range intentCues[intent] {
		if strings.Contains(lower, cue) {
			alignment += 0.3
			break
		}
	}
	if alignment > 1 {
		alignment = 1
	}
	return alignment
}

// emotionalAlignment compares the query's emotional weight to the memory's.
// Mutual high weight scores highest; divergence scores lowest.
func emotionalAlignment(analysis semantic.Analysis, rec Record) float64 {
	memWeight := contentEmotionalWeight(rec.Content)
	if metadataFlag(&rec, "emotional_content") && memWeight < 0.5 {
		memWeight = 0.5
	}

	qw := analysis.EmotionalWeight
	switch {
	case qw >= 0.5 && memWeight >= 0.5:
		return 0.9 + 0.1*math.Min(qw, memWeight)
	case qw < 0.2 && memWeight < 0.2:
		return 0.5
	default:
		diff := math.Abs(qw - memWeight)
		return math.Max(0.2, 0.6-0.4*diff)
	}
}

// contentEmotionalWeight runs the extractor's emotion detection over memory
// content, reusing the same keyword table as query analysis.
func contentEmotionalWeight(content string) float64 {
	return semantic.Analyze(content).EmotionalWeight
}

// recencyUsage sums bucketed bonuses for creation age, last-access age and
// usage tier. Monotonically non-decreasing in usage frequency.
func recencyUsage(rec Record, now time.Time) float64 {
	var v float64

	age := now.Sub(rec.CreatedAt)
	switch {
	case age < 24*time.Hour:
		v += 0.4
	case age < 7*24*time.Hour:
		v += 0.3
	case age < 30*24*time.Hour:
		v += 0.2
	case age < 90*24*time.Hour:
		v += 0.1
	}

	accessAge := now.Sub(rec.LastAccessedAt)
	switch {
	case accessAge < 24*time.Hour:
		v += 0.2
	case accessAge < 7*24*time.Hour:
		v += 0.1
	}

	switch {
	case rec.UsageFrequency >= 10:
		v += 0.4
	case rec.UsageFrequency >= 5:
		v += 0.3
	case rec.UsageFrequency >= 2:
		v += 0.2
	case rec.UsageFrequency >= 1:
		v += 0.1
	}

	if v > 1 {
		v = 1
	}
	return v
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func clampScore(v float64) float64 {
	if v < minScore {
		return minScore
	}
	if v > maxScore {
		return maxScore
	}
	return v
}
