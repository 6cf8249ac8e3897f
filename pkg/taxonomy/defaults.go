package taxonomy

// defaultProfiles is the built-in category set. Weights live in the router;
// this table only declares the lexical surface of each category.
var defaultProfiles = []Profile{
	{
		Name: "work_career",
		Keywords: []string{
			"job", "work", "boss", "career", "office", "deadline", "project",
			"meeting", "coworker", "colleague", "interview", "promotion",
			"client", "manager", "salary", "resume", "workload",
		},
		Patterns: []string{
			`\b(at work|my (job|boss|manager|team)|work(ing)? (on|late|from home))\b`,
			`\b(got (promoted|fired|hired)|quit my job|job (offer|search|hunt))\b`,
		},
		Priority: 2,
		Subcategories: map[string][]string{
			"workplace_stress": {"deadline", "pressure", "overtime", "workload", "burnout"},
			"career_growth":    {"promotion", "interview", "resume", "raise", "opportunity"},
			"colleagues":       {"boss", "coworker", "colleague", "manager", "team"},
		},
	},
	{
		Name: "relationships",
		Keywords: []string{
			"wife", "husband", "partner", "girlfriend", "boyfriend", "spouse",
			"mom", "dad", "mother", "father", "sister", "brother", "family",
			"friend", "friends", "parents", "kids", "children", "marriage",
			"dating", "roommate",
		},
		Patterns: []string{
			`\bmy (wife|husband|partner|girlfriend|boyfriend|mom|dad|sister|brother|friend|family)\b`,
			`\b(broke up|getting married|had a fight|argument with)\b`,
		},
		Priority: 2,
		Subcategories: map[string][]string{
			"romantic": {"wife", "husband", "partner", "girlfriend", "boyfriend", "dating", "marriage"},
			"family":   {"mom", "dad", "mother", "father", "sister", "brother", "parents", "kids", "children"},
			"friends":  {"friend", "friends", "roommate"},
		},
	},
	{
		Name: "emotional_wellbeing",
		Keywords: []string{
			"stressed", "stress", "anxious", "anxiety", "depressed", "depression",
			"overwhelmed", "sad", "lonely", "angry", "frustrated", "worried",
			"scared", "panic", "crying", "upset", "mood", "therapy", "therapist",
			"happy", "excited", "grateful", "proud",
		},
		Patterns: []string{
			`\bi('m| am| feel| felt) (so |really |very )?(stressed|anxious|overwhelmed|sad|depressed|lonely|angry|down)\b`,
			`\b(mental health|panic attack|can't (sleep|cope)|falling apart)\b`,
		},
		Priority: 3,
		Subcategories: map[string][]string{
			"stress_anxiety": {"stressed", "stress", "anxious", "anxiety", "overwhelmed", "panic"},
			"low_mood":       {"sad", "depressed", "depression", "lonely", "crying", "down"},
			"positive":       {"happy", "excited", "grateful", "proud"},
		},
	},
	{
		Name: "health",
		Keywords: []string{
			"doctor", "health", "sick", "illness", "pain", "sleep", "insomnia",
			"gym", "exercise", "workout", "diet", "weight", "medication",
			"appointment", "symptoms", "injury", "headache",
		},
		Patterns: []string{
			`\b(doctor('s)? appointment|not feeling well|under the weather)\b`,
			`\b(working out|going to the gym|trouble sleeping)\b`,
		},
		Priority: 2,
		Subcategories: map[string][]string{
			"medical": {"doctor", "sick", "illness", "medication", "symptoms", "appointment"},
			"fitness": {"gym", "exercise", "workout", "diet", "weight"},
			"sleep":   {"sleep", "insomnia", "tired"},
		},
	},
	{
		Name: "finances",
		Keywords: []string{
			"money", "rent", "paycheck", "debt", "budget", "bills", "savings",
			"loan", "mortgage", "expenses", "afford", "broke", "invest",
			"investment", "spending",
		},
		Patterns: []string{
			`\b(can't afford|short on (money|cash)|paycheck to paycheck)\b`,
			`\b(pay(ing)? (off|down) (debt|loans?)|saving (up|for))\b`,
		},
		Priority: 2,
		Subcategories: map[string][]string{
			"debt_bills": {"debt", "bills", "loan", "mortgage", "rent"},
			"saving":     {"savings", "budget", "invest", "investment"},
		},
	},
	{
		Name: "goals_plans",
		Keywords: []string{
			"goal", "goals", "plan", "plans", "planning", "dream", "future",
			"schedule", "project", "learn", "learning", "habit", "resolution",
			"milestone", "progress",
		},
		Patterns: []string{
			`\b(want to (start|learn|build|finish)|working towards?|my goal)\b`,
			`\b(next (week|month|year)|this (weekend|summer)|long.?term)\b`,
		},
		Priority: 1,
		Subcategories: map[string][]string{
			"learning": {"learn", "learning", "course", "skill"},
			"habits":   {"habit", "routine", "resolution"},
		},
	},
	{
		Name: "preferences",
		Keywords: []string{
			"favorite", "love", "hate", "prefer", "enjoy", "like", "dislike",
			"hobby", "hobbies", "music", "movie", "movies", "book", "books",
			"food", "cooking", "coffee", "game", "games",
		},
		Patterns: []string{
			`\bmy favorite\b`,
			`\bi (love|hate|prefer|enjoy|really like|can't stand)\b`,
		},
		Priority: 1,
		Subcategories: map[string][]string{
			"entertainment": {"music", "movie", "movies", "book", "books", "game", "games"},
			"food_drink":    {"food", "cooking", "coffee", "restaurant"},
		},
	},
	{
		Name: "daily_life",
		Keywords: []string{
			"today", "yesterday", "tomorrow", "morning", "evening", "weekend",
			"home", "house", "apartment", "errands", "shopping", "weather",
			"commute", "dinner", "lunch", "trip", "vacation",
		},
		Patterns: []string{
			`\b(this (morning|afternoon|evening)|ran errands|grocery shopping)\b`,
		},
		Priority: 0,
		Subcategories: map[string][]string{
			"household": {"home", "house", "apartment", "errands", "shopping"},
			"travel":    {"trip", "vacation", "flight", "visit"},
		},
	},
}

// defaultAdjacency is the static category-adjacency table used to supplement
// sparse primary-category results during retrieval.
var defaultAdjacency = map[string][]string{
	"work_career":         {"emotional_wellbeing", "goals_plans", "finances"},
	"relationships":       {"emotional_wellbeing", "daily_life"},
	"emotional_wellbeing": {"work_career", "relationships", "health"},
	"health":              {"emotional_wellbeing", "daily_life"},
	"finances":            {"work_career", "goals_plans"},
	"goals_plans":         {"work_career", "preferences"},
	"preferences":         {"daily_life", "goals_plans"},
	"daily_life":          {"preferences", "relationships"},
}
