package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeEmotionalSupport(t *testing.T) {
	a := Analyze("I'm stressed about my job and my boss's deadline")

	assert.Equal(t, IntentEmotionalSupport, a.Intent)
	assert.Greater(t, a.IntentConfidence, 0.5)
	assert.Greater(t, a.EmotionalWeight, 0.5)
	assert.Equal(t, ToneNegative, a.Tone)
	assert.True(t, a.PersonalContext)
	assert.Contains(t, a.Entities, "work")
}

func TestAnalyzeMemoryRecall(t *testing.T) {
	a := Analyze("Remember what I told you about my sister?")

	assert.Equal(t, IntentMemoryRecall, a.Intent)
	assert.True(t, a.MemoryReference)
	assert.Contains(t, a.Entities, "family")
}

func TestAnalyzePlanning(t *testing.T) {
	a := Analyze("I want to start planning my goals for next year")

	assert.Equal(t, IntentPlanning, a.Intent)
	assert.False(t, a.Urgency)
}

func TestAnalyzeQuestion(t *testing.T) {
	a := Analyze("What should I cook for dinner tonight?")

	assert.Equal(t, IntentQuestion, a.Intent)
	assert.Equal(t, ToneNeutral, a.Tone)
	assert.Zero(t, a.EmotionalWeight)
}

func TestAnalyzeUrgency(t *testing.T) {
	a := Analyze("I need help right now, this is an emergency")
	assert.True(t, a.Urgency)

	calm := Analyze("thinking about dinner plans for the weekend")
	assert.False(t, calm.Urgency)
}

func TestAnalyzePositiveTone(t *testing.T) {
	a := Analyze("I'm so happy and excited about the wedding")

	assert.Equal(t, TonePositive, a.Tone)
	assert.Greater(t, a.EmotionalWeight, 0.0)
}

func TestAnalyzeEmptyQuery(t *testing.T) {
	a := Analyze("   ")

	assert.Equal(t, IntentGeneral, a.Intent)
	assert.Equal(t, ToneNeutral, a.Tone)
	assert.Zero(t, a.EmotionalWeight)
	assert.Empty(t, a.Entities)
	assert.False(t, a.PersonalContext)
}

func TestAnalyzeDeterministic(t *testing.T) {
	query := "my boss scheduled a meeting about my promotion and I'm anxious"

	first := Analyze(query)
	second := Analyze(query)

	assert.Equal(t, first, second)
}

func TestAnalyzeEntitiesSorted(t *testing.T) {
	a := Analyze("my wife and my boss argued about money")

	// Sorted order makes downstream override selection deterministic.
	assert.Equal(t, []string{"money", "partner", "work"}, a.Entities)
}

func TestEmotionalWeightSaturates(t *testing.T) {
	a := Analyze("depressed anxious overwhelmed panic scared lonely crying")

	assert.Equal(t, 1.0, a.EmotionalWeight)
}

func TestMeaningfulWords(t *testing.T) {
	words := MeaningfulWords("The deadline for my project is stressful")

	assert.Equal(t, []string{"deadline", "project", "stressful"}, words)
}

func TestMeaningfulWordsFiltersShortAndStop(t *testing.T) {
	words := MeaningfulWords("I am so in it")
	assert.Empty(t, words)
}

func TestVocabularyDiversityDampensShortQueries(t *testing.T) {
	short := Analyze("coffee")
	long := Analyze("balancing career growth savings therapy exercise friendships hobbies travel")

	assert.Less(t, short.Complexity, long.Complexity)
}
