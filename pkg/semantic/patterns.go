package semantic

import "regexp"

// Intent classifies what the user is trying to do with a query.
type Intent string

const (
	IntentQuestion           Intent = "question"
	IntentMemoryRecall       Intent = "memory_recall"
	IntentEmotionalSupport   Intent = "emotional_support"
	IntentTaskRequest        Intent = "task_request"
	IntentPlanning           Intent = "planning"
	IntentInformationSharing Intent = "information_sharing"
	IntentGeneral            Intent = "general"
)

// Tone is the coarse emotional polarity of a query.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneNeutral  Tone = "neutral"
)

// intentPatterns maps each intent to the lexical patterns that signal it.
// Order matters for tie-breaking: earlier intents win on equal scores.
var intentOrder = []Intent{
	IntentMemoryRecall,
	IntentEmotionalSupport,
	IntentTaskRequest,
	IntentPlanning,
	IntentQuestion,
	IntentInformationSharing,
}

var intentPatterns = map[Intent][]*regexp.Regexp{
	IntentMemoryRecall: {
		regexp.MustCompile(`\b(remember|recall|remind me what)\b`),
		regexp.MustCompile(`\bwhat did (i|we|you)\b`),
		regexp.MustCompile(`\b(did i (tell|mention|say)|you (said|mentioned)|we (talked|discussed|spoke))\b`),
		regexp.MustCompile(`\blast time\b`),
	},
	IntentEmotionalSupport: {
		regexp.MustCompile(`\bi('m| am| feel| felt|'ve been feeling)\b.*\b(stressed|anxious|overwhelmed|sad|depressed|worried|scared|lonely|upset|angry|frustrated|exhausted)\b`),
		regexp.MustCompile(`\b(stressed|anxious|overwhelmed|struggling|can't cope|falling apart)\b`),
		regexp.MustCompile(`\b(need (someone|to talk)|feeling (down|low|off))\b`),
	},
	IntentTaskRequest: {
		regexp.MustCompile(`^(please|can you|could you|would you|will you)\b`),
		regexp.MustCompile(`\b(help me|remind me to|set up|make sure)\b`),
	},
	IntentPlanning: {
		regexp.MustCompile(`\b(plan|planning|schedule|goal|goals|upcoming|next (week|month|year))\b`),
		regexp.MustCompile(`\b(want to|going to|intend to|hoping to)\b.*\b(start|finish|build|learn|change)\b`),
	},
	IntentQuestion: {
		regexp.MustCompile(`^(what|who|when|where|why|how|is|are|do|does|should|could)\b`),
		regexp.MustCompile(`\?`),
	},
	IntentInformationSharing: {
		regexp.MustCompile(`^(i|my|we|our)\b`),
		regexp.MustCompile(`\b(just (wanted|thought)|fyi|by the way)\b`),
	},
}

// emotionalKeywords maps emotion words to their weight contribution.
var emotionalKeywords = map[string]float64{
	"stressed":    0.9,
	"anxious":     0.9,
	"anxiety":     0.9,
	"depressed":   1.0,
	"depression":  1.0,
	"overwhelmed": 0.85,
	"panic":       0.95,
	"scared":      0.85,
	"afraid":      0.85,
	"lonely":      0.85,
	"angry":       0.8,
	"sad":         0.8,
	"worried":     0.8,
	"worry":       0.75,
	"upset":       0.75,
	"frustrated":  0.75,
	"hurt":        0.7,
	"crying":      0.85,
	"exhausted":   0.6,
	"tired":       0.5,
	"happy":       0.6,
	"excited":     0.6,
	"love":        0.7,
	"grateful":    0.5,
	"proud":       0.5,
	"hopeful":     0.5,
	"relieved":    0.5,
}

var positiveTones = map[string]bool{
	"happy": true, "excited": true, "love": true, "grateful": true,
	"proud": true, "hopeful": true, "relieved": true,
}

var (
	possessivePattern = regexp.MustCompile(`\b(my|mine|our|i'm|i am|i've|i feel|i felt|i was|i have)\b`)
	memoryRefPattern  = regexp.MustCompile(`\b(remember|recall|last time|you said|you mentioned|we talked|we discussed|told you|mentioned before)\b`)
	urgencyPattern    = regexp.MustCompile(`\b(urgent|urgently|asap|right now|immediately|emergency|crisis|can't wait|running out of time)\b|!{2,}`)
	wordPattern       = regexp.MustCompile(`[a-z']+`)
)

// entityPatterns detect coarse topic entities in a query. The entity names
// line up with taxonomy category hints used by the router's fallback override.
var entityPatterns = map[string]*regexp.Regexp{
	"work":    regexp.MustCompile(`\b(job|work|boss|career|office|deadline|project|meeting|coworker|colleague|interview|promotion|client)\b`),
	"family":  regexp.MustCompile(`\b(mom|dad|mother|father|sister|brother|family|parents?|kids?|children|son|daughter|grandma|grandpa)\b`),
	"partner": regexp.MustCompile(`\b(wife|husband|partner|girlfriend|boyfriend|spouse|marriage|dating)\b`),
	"friends": regexp.MustCompile(`\b(friends?|friendship|roommate)\b`),
	"health":  regexp.MustCompile(`\b(doctor|health|sick|illness|pain|sleep|insomnia|gym|exercise|workout|diet|therapy|therapist|medication)\b`),
	"money":   regexp.MustCompile(`\b(money|rent|salary|paycheck|debt|budget|bills?|savings?|loan|invest(ing|ment)?)\b`),
	"school":  regexp.MustCompile(`\b(school|class|classes|exam|test|study|studying|college|university|degree|homework|teacher|professor)\b`),
	"home":    regexp.MustCompile(`\b(home|house|apartment|moving|lease|landlord|neighborhood)\b`),
	"travel":  regexp.MustCompile(`\b(trip|travel|vacation|flight|visit(ing)?)\b`),
	"hobby":   regexp.MustCompile(`\b(hobby|hobbies|guitar|painting|reading|gaming|cooking|hiking|running)\b`),
}

// stopWords are filtered before similarity and diversity computations.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "get": true,
	"has": true, "had": true, "his": true, "how": true, "its": true,
	"may": true, "new": true, "now": true, "old": true, "see": true,
	"two": true, "way": true, "who": true, "did": true, "him": true,
	"she": true, "too": true, "use": true, "that": true, "with": true,
	"have": true, "this": true, "will": true, "your": true, "from": true,
	"they": true, "been": true, "were": true, "said": true, "each": true,
	"which": true, "their": true, "would": true, "there": true, "what": true,
	"about": true, "when": true, "just": true, "some": true, "into": true,
	"them": true, "then": true, "than": true, "also": true, "really": true,
	"very": true, "much": true, "more": true, "like": true, "want": true,
	"know": true, "think": true, "going": true, "could": true, "should": true,
	"because": true, "being": true, "doing": true, "thing": true, "things": true,
}
