// Package match defines the record-matching capability the search
// scheduler is generic over. The core never inspects record contents
// except through a Matcher.
package match

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Matcher reports whether a record's search text matches a query.
// Implementations must be safe for concurrent use: background workers
// call Match against immutable record snapshots.
type Matcher interface {
	Match(text, query string) bool
}

// Substring matches case-insensitively on containment. The empty query
// matches everything.
type Substring struct{}

// Match implements Matcher.
func (Substring) Match(text, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(query))
}

// Fuzzy matches when the fuzzy score reaches Threshold. Scores come from
// sahilm/fuzzy, the same matcher the bubbles list component uses, so
// widget behavior lines up with the rest of the charm ecosystem.
type Fuzzy struct {
	// Threshold is the minimum score for a match. The fuzzy scorer
	// rewards consecutive runs and word-boundary hits and penalizes
	// leading gaps, so useful thresholds are small integers around zero.
	Threshold int
}

// Match implements Matcher.
func (f Fuzzy) Match(text, query string) bool {
	if query == "" {
		return true
	}
	matches := fuzzy.Find(query, []string{text})
	return len(matches) > 0 && matches[0].Score >= f.Threshold
}

// Func adapts a plain function to the Matcher interface, for hosts that
// bring their own matching rule.
type Func func(text, query string) bool

// Match implements Matcher.
func (f Func) Match(text, query string) bool {
	return f(text, query)
}

// ForKind returns the built-in matcher for a config kind string.
// Unknown kinds fall back to Substring.
func ForKind(kind string, fuzzyThreshold int) Matcher {
	switch kind {
	case "fuzzy":
		return Fuzzy{Threshold: fuzzyThreshold}
	default:
		return Substring{}
	}
}

// Refiner is the optional capability of knowing when one query can only
// match a subset of another's results. The scheduler uses it to retest
// only currently-visible records: hidden records stay hidden under a
// refinement, so they need no retest.
type Refiner interface {
	Refines(prev, next string) bool
}

// Refines reports substring refinement: extending the query can only
// shrink the match set.
func (Substring) Refines(prev, next string) bool {
	return strings.Contains(strings.ToLower(next), strings.ToLower(prev))
}

// IsRefinement reports whether next refines prev under m. Matchers that
// do not implement Refiner (fuzzy scoring, custom functions) never
// qualify, so every query change retests the full collection.
func IsRefinement(m Matcher, prev, next string) bool {
	r, ok := m.(Refiner)
	return ok && r.Refines(prev, next)
}
