// Package taxonomy holds the fixed set of topic categories that partition a
// user's stored memories. The taxonomy is configuration, not code: it ships
// with built-in defaults and can be replaced by an external JSON file, so
// keyword and pattern variations are a config change rather than a code fork.
package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Profile is the static, read-only configuration for one category.
type Profile struct {
	Name          string              `json:"name"`
	Keywords      []string            `json:"keywords"`
	Patterns      []string            `json:"patterns"`
	Priority      int                 `json:"priority"`
	Subcategories map[string][]string `json:"subcategories,omitempty"`
}

// compiled pairs a profile with its precompiled pattern set.
type compiled struct {
	Profile
	patterns    []*regexp.Regexp
	keywordSet  map[string]bool
	subKeywords map[string]map[string]bool
}

// Taxonomy is the loaded category set plus the static adjacency table used to
// supplement sparse primary-category results. Safe for concurrent readers;
// Replace swaps the whole set atomically.
type Taxonomy struct {
	mu        sync.RWMutex
	profiles  map[string]*compiled
	order     []string
	adjacency map[string][]string
}

// FallbackCategory is forced when routing fails internally.
const FallbackCategory = "daily_life"

// document is the on-disk shape of an external taxonomy file.
type document struct {
	Categories []Profile           `json:"categories"`
	Adjacency  map[string][]string `json:"adjacency,omitempty"`
}

const schemaJSON = `{
	"type": "object",
	"required": ["categories"],
	"properties": {
		"categories": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name", "keywords"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"keywords": {"type": "array", "items": {"type": "string"}},
					"patterns": {"type": "array", "items": {"type": "string"}},
					"priority": {"type": "integer", "minimum": 0},
					"subcategories": {
						"type": "object",
						"additionalProperties": {"type": "array", "items": {"type": "string"}}
					}
				}
			}
		},
		"adjacency": {
			"type": "object",
			"additionalProperties": {"type": "array", "items": {"type": "string"}}
		}
	}
}`

// New builds a taxonomy from profiles and an adjacency table, compiling all
// regex patterns up front. Invalid patterns fail loudly at load time.
func New(profiles []Profile, adjacency map[string][]string) (*Taxonomy, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("taxonomy requires at least one category")
	}

	t := &Taxonomy{
		profiles:  make(map[string]*compiled, len(profiles)),
		adjacency: adjacency,
	}
	if t.adjacency == nil {
		t.adjacency = map[string][]string{}
	}

	for _, p := range profiles {
		c := &compiled{
			Profile:     p,
			keywordSet:  make(map[string]bool, len(p.Keywords)),
			subKeywords: make(map[string]map[string]bool, len(p.Subcategories)),
		}
		for _, kw := range p.Keywords {
			c.keywordSet[kw] = true
		}
		for _, pat := range p.Patterns {
			re, err := regexp.Compile(pat)
			if err != nil {
				return nil, fmt.Errorf("category %q: invalid pattern %q: %w", p.Name, pat, err)
			}
			c.patterns = append(c.patterns, re)
		}
		for sub, kws := range p.Subcategories {
			set := make(map[string]bool, len(kws))
			for _, kw := range kws {
				set[kw] = true
			}
			c.subKeywords[sub] = set
		}
		t.profiles[p.Name] = c
		t.order = append(t.order, p.Name)
	}
	sort.Strings(t.order)

	return t, nil
}

// Default returns the built-in taxonomy.
func Default() *Taxonomy {
	t, err := New(defaultProfiles, defaultAdjacency)
	if err != nil {
		// Built-in tables are compile-time constants; a failure here is a bug.
		panic(fmt.Sprintf("built-in taxonomy invalid: %v", err))
	}
	return t
}

// LoadFile reads and validates an external taxonomy JSON file.
func LoadFile(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate taxonomy file: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("invalid taxonomy file: %s", result.Errors()[0].String())
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy file: %w", err)
	}

	return New(doc.Categories, doc.Adjacency)
}

// Replace swaps in the profiles and adjacency of another taxonomy. Used by the
// file watcher for hot reload; concurrent routes see either the old or the new
// set, never a mix.
func (t *Taxonomy) Replace(other *Taxonomy) {
	other.mu.RLock()
	profiles, order, adjacency := other.profiles, other.order, other.adjacency
	other.mu.RUnlock()

	t.mu.Lock()
	t.profiles = profiles
	t.order = order
	t.adjacency = adjacency
	t.mu.Unlock()
}

// Categories returns all category names in stable order.
func (t *Taxonomy) Categories() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Related returns the adjacent categories for a category, in table order.
func (t *Taxonomy) Related(category string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	related := t.adjacency[category]
	out := make([]string, len(related))
	copy(out, related)
	return out
}

// Has reports whether a category exists.
func (t *Taxonomy) Has(category string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.profiles[category]
	return ok
}

// MatchStats is the lexical match summary of one category against a query.
type MatchStats struct {
	Category    string
	Priority    int
	KeywordHits int
	PatternHits int
	Subcategory string
}

// Match evaluates every category against the query text and its pre-tokenized
// word list, returning per-category hit counts in stable order.
func (t *Taxonomy) Match(text string, words []string) []MatchStats {
	var stats []MatchStats
	t.visit(func(c *compiled) {
		stats = append(stats, MatchStats{
			Category:    c.Name,
			Priority:    c.Priority,
			KeywordHits: c.matchKeywords(words),
			PatternHits: c.matchPatterns(text),
			Subcategory: c.bestSubcategory(words),
		})
	})
	return stats
}

// visit iterates profiles under the read lock.
func (t *Taxonomy) visit(fn func(*compiled)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, name := range t.order {
		fn(t.profiles[name])
	}
}

// MatchKeywords counts keyword hits of the word set against a category.
func (c *compiled) matchKeywords(words []string) int {
	hits := 0
	for _, w := range words {
		if c.keywordSet[w] {
			hits++
		}
	}
	return hits
}

// matchPatterns counts regex pattern matches against the full query text.
func (c *compiled) matchPatterns(text string) int {
	hits := 0
	for _, re := range c.patterns {
		if re.MatchString(text) {
			hits++
		}
	}
	return hits
}

// bestSubcategory picks the subcategory with the most keyword hits.
func (c *compiled) bestSubcategory(words []string) string {
	best := ""
	bestHits := 0
	subs := make([]string, 0, len(c.subKeywords))
	for sub := range c.subKeywords {
		subs = append(subs, sub)
	}
	sort.Strings(subs)
	for _, sub := range subs {
		hits := 0
		for _, w := range words {
			if c.subKeywords[sub][w] {
				hits++
			}
		}
		if hits > bestHits {
			best = sub
			bestHits = hits
		}
	}
	return best
}
