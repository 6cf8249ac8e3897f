package memory

import "strings"

// Assembler defaults. Tunable, not load-bearing.
const (
	DefaultTokenCeiling = 2400

	reserveFraction    = 0.15
	highValueThreshold = 0.8
	minViableTokens    = 40
)

// AssembledItem is one admitted memory in the final context block.
type AssembledItem struct {
	Record    Record
	Text      string
	Tokens    int
	Truncated bool
}

// Assembly is the budget-constrained selection produced from ranked
// candidates. TotalTokens never exceeds the ceiling passed to Assemble.
type Assembly struct {
	Items       []AssembledItem
	TotalTokens int
}

// Assemble greedily admits ranked candidates under the ceiling, holding a
// reserve fraction back for high-value candidates missed by the main pass.
// If the last high-value candidate does not fit but the remaining reserve is
// still viable, exactly one item is truncated at a text boundary.
func Assemble(ranked []ScoredMemory, ceiling int) Assembly {
	if ceiling <= 0 {
		ceiling = DefaultTokenCeiling
	}

	reserve := int(float64(ceiling) * reserveFraction)
	mainBudget := ceiling - reserve

	var out Assembly
	admitted := make(map[string]bool, len(ranked))

	// Main pass: greedy within the reduced budget.
	for _, sm := range ranked {
		tokens := EstimateTokens(sm.Record.Content)
		if out.TotalTokens+tokens > mainBudget {
			continue
		}
		out.Items = append(out.Items, AssembledItem{
			Record: sm.Record,
			Text:   sm.Record.Content,
			Tokens: tokens,
		})
		out.TotalTokens += tokens
		admitted[sm.Record.ID] = true
	}

	// Reserve pass: admit skipped high-value candidates that fit whole; when
	// one does not fit, truncate it into the remaining reserve and stop.
	for _, sm := range ranked {
		if admitted[sm.Record.ID] || sm.Score < highValueThreshold {
			continue
		}
		remaining := ceiling - out.TotalTokens
		if remaining <= 0 {
			break
		}

		tokens := EstimateTokens(sm.Record.Content)
		if tokens <= remaining {
			out.Items = append(out.Items, AssembledItem{
				Record: sm.Record,
				Text:   sm.Record.Content,
				Tokens: tokens,
			})
			out.TotalTokens += tokens
			admitted[sm.Record.ID] = true
			continue
		}

		if remaining >= minViableTokens {
			text, truncated := TruncateToBudget(sm.Record.Content, remaining)
			if truncated && text != "" {
				out.Items = append(out.Items, AssembledItem{
					Record:    sm.Record,
					Text:      text,
					Tokens:    EstimateTokens(text),
					Truncated: true,
				})
				out.TotalTokens += EstimateTokens(text)
			}
		}
		break
	}

	return out
}

// TruncateToBudget cuts content down to at most budget tokens, preferring a
// sentence-boundary cut and falling back to a word-boundary cut. The result is
// always a prefix of the original content.
func TruncateToBudget(content string, budget int) (string, bool) {
	if budget <= 0 {
		return "", true
	}
	if EstimateTokens(content) <= budget {
		return content, false
	}

	// Token estimate is len/4, so budget*4 bytes is the hard character limit.
	limit := budget * 4
	if limit >= len(content) {
		return content, false
	}
	slice := content[:limit]

	// Prefer the last sentence boundary in the back half of the slice.
	if cut := lastBoundary(slice, ".!?"); cut >= limit/2 {
		return strings.TrimSpace(slice[:cut+1]), true
	}

	// Fall back to the last word boundary.
	if cut := strings.LastIndexByte(slice, ' '); cut > 0 {
		return strings.TrimSpace(slice[:cut]), true
	}

	return strings.TrimSpace(slice), true
}

// lastBoundary returns the index of the last occurrence of any byte in chars.
func lastBoundary(s, chars string) int {
	best := -1
	for i := 0; i < len(chars); i++ {
		if idx := strings.LastIndexByte(s, chars[i]); idx > best {
			best = idx
		}
	}
	return best
}
