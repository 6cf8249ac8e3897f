package routing

import (
	"fmt"
	"regexp"

	"github.com/quietmind/recall/pkg/semantic"
)

// Override rules run after scoring and can force a category irrespective of
// score. Rules are pure functions of (query, analysis, current result). They
// are grouped into ordered families; within a family the first matching rule
// wins and the rest are skipped.

type overrideRule struct {
	name  string
	apply func(text string, analysis semantic.Analysis, r Result) (Result, bool)
}

type overrideFamily struct {
	name  string
	rules []overrideRule
}

var (
	selfHarmPattern      = regexp.MustCompile(`\b(hurt (myself|me)|self.?harm|suicidal|suicide|end it all|can't go on)\b`)
	crisisPattern        = regexp.MustCompile(`\b(crisis|emergency|panic attack|breakdown|falling apart|can't cope)\b`)
	medicalUrgentPattern = regexp.MustCompile(`\b(chest pain|can't breathe|severe pain|passed out|bleeding)\b`)
)

var overrideFamilies = []overrideFamily{
	{
		name: "crisis",
		rules: []overrideRule{
			{
				name: "self_harm",
				apply: func(text string, _ semantic.Analysis, r Result) (Result, bool) {
					if !selfHarmPattern.MatchString(text) {
						return r, false
					}
					return force(r, "emotional_wellbeing", 0.95, "self-harm language"), true
				},
			},
			{
				name: "urgent_medical",
				apply: func(text string, analysis semantic.Analysis, r Result) (Result, bool) {
					if !analysis.Urgency || !medicalUrgentPattern.MatchString(text) {
						return r, false
					}
					return force(r, "health", 0.9, "urgent medical language"), true
				},
			},
			{
				name: "urgent_crisis",
				apply: func(text string, analysis semantic.Analysis, r Result) (Result, bool) {
					if !analysis.Urgency || !crisisPattern.MatchString(text) {
						return r, false
					}
					return force(r, "emotional_wellbeing", 0.9, "urgency with crisis language"), true
				},
			},
		},
	},
	{
		name: "low_confidence",
		rules: []overrideRule{
			{
				name: "entity_fallback",
				apply: func(_ string, analysis semantic.Analysis, r Result) (Result, bool) {
					if r.Confidence >= 0.35 || len(analysis.Entities) == 0 {
						return r, false
					}
					// Entities are sorted; the first with a category mapping is
					// the most prominent deterministic choice.
					for _, e := range analysis.Entities {
						if cat, ok := entityCategory[e]; ok {
							return force(r, cat, 0.4, fmt.Sprintf("low confidence, entity %q", e)), true
						}
					}
					return r, false
				},
			},
		},
	},
}

// applyOverrides runs every override family in order against the result.
func applyOverrides(text string, analysis semantic.Analysis, r Result) Result {
	for _, family := range overrideFamilies {
		for _, rule := range family.rules {
			next, matched := rule.apply(text, analysis, r)
			if matched {
				r = next
				break
			}
		}
	}
	return r
}

func force(r Result, category string, confidence float64, reason string) Result {
	if r.Category != category {
		r.Alternate = r.Category
		r.Subcategory = ""
	}
	r.Category = category
	if confidence > r.Confidence {
		r.Confidence = confidence
	}
	r.Reasoning += "; override: " + reason
	return r
}
