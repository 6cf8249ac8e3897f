// Package semantic extracts lightweight lexical features from query text.
//
// Analyze is a pure function: no I/O, deterministic for identical input. The
// resulting Analysis is consumed by the category router (classification boosts)
// and the relevance scorer (intent and emotional alignment).
package semantic

import (
	"sort"
	"strings"
)

// Analysis is the per-query feature bundle. It is ephemeral: produced for one
// request and discarded after context assembly.
type Analysis struct {
	Intent           Intent   `json:"intent"`
	IntentConfidence float64  `json:"intent_confidence"`
	EmotionalWeight  float64  `json:"emotional_weight"`
	Tone             Tone     `json:"tone"`
	PersonalContext  bool     `json:"personal_context"`
	MemoryReference  bool     `json:"memory_reference"`
	Urgency          bool     `json:"urgency"`
	Entities         []string `json:"entities"`
	Complexity       float64  `json:"complexity"`
}

// Analyze extracts semantic features from a query using lexical pattern
// matching only. Input is lowercased internally; callers may pass raw text.
func Analyze(query string) Analysis {
	text := strings.ToLower(strings.TrimSpace(query))

	a := Analysis{
		Intent: IntentGeneral,
		Tone:   ToneNeutral,
	}
	if text == "" {
		return a
	}

	a.Intent, a.IntentConfidence = detectIntent(text)
	a.EmotionalWeight, a.Tone = detectEmotion(text)
	a.PersonalContext = possessivePattern.MatchString(text)
	a.MemoryReference = memoryRefPattern.MatchString(text)
	a.Urgency = urgencyPattern.MatchString(text)
	a.Entities = detectEntities(text)
	a.Complexity = vocabularyDiversity(text)

	return a
}

// detectIntent scores each intent by pattern hits; ties resolve by intentOrder.
func detectIntent(text string) (Intent, float64) {
	best := IntentGeneral
	bestHits := 0

	for _, intent := range intentOrder {
		hits := 0
		for _, p := range intentPatterns[intent] {
			if p.MatchString(text) {
				hits++
			}
		}
		if hits > bestHits {
			best = intent
			bestHits = hits
		}
	}

	if bestHits == 0 {
		return IntentGeneral, 0.3
	}

	// More corroborating patterns mean higher confidence.
	confidence := 0.5 + 0.2*float64(bestHits)
	if confidence > 0.95 {
		confidence = 0.95
	}
	return best, confidence
}

// detectEmotion sums keyword weights and derives a coarse tone. Weight
// saturates at 1.0; tone follows whichever polarity contributed more.
func detectEmotion(text string) (float64, Tone) {
	var weight, positive, negative float64

	for _, word := range wordPattern.FindAllString(text, -1) {
		w, ok := emotionalKeywords[word]
		if !ok {
			continue
		}
		weight += w
		if positiveTones[word] {
			positive += w
		} else {
			negative += w
		}
	}

	if weight > 1.0 {
		weight = 1.0
	}

	tone := ToneNeutral
	switch {
	case negative > positive && negative > 0:
		tone = ToneNegative
	case positive > negative && positive > 0:
		tone = TonePositive
	}
	return weight, tone
}

func detectEntities(text string) []string {
	var entities []string
	for name, p := range entityPatterns {
		if p.MatchString(text) {
			entities = append(entities, name)
		}
	}
	sort.Strings(entities)
	return entities
}

// vocabularyDiversity is the ratio of distinct meaningful words to total
// meaningful words, dampened for very short queries.
func vocabularyDiversity(text string) float64 {
	words := MeaningfulWords(text)
	if len(words) == 0 {
		return 0
	}

	unique := make(map[string]bool, len(words))
	for _, w := range words {
		unique[w] = true
	}

	diversity := float64(len(unique)) / float64(len(words))

	// Short queries carry little signal regardless of uniqueness.
	if len(words) < 4 {
		diversity *= float64(len(words)) / 4.0
	}
	return diversity
}

// MeaningfulWords lowercases, tokenizes and stop-word-filters text. Shared by
// the relevance scorer's text-similarity computation.
func MeaningfulWords(text string) []string {
	raw := wordPattern.FindAllString(strings.ToLower(text), -1)
	words := make([]string, 0, len(raw))
	for _, w := range raw {
		if len(w) < 3 || stopWords[w] {
			continue
		}
		words = append(words, w)
	}
	return words
}
