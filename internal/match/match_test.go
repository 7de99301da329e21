package match

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstring_CaseInsensitive(t *testing.T) {
	m := Substring{}

	tests := []struct {
		text  string
		query string
		want  bool
	}{
		{"Banana Bread", "ban", true},
		{"Banana Bread", "BREAD", true},
		{"Banana Bread", "banana bread", true},
		{"Banana Bread", "cherry", false},
		{"Banana Bread", "", true},
		{"", "x", false},
		{"", "", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Match(tt.text, tt.query),
			"Match(%q, %q)", tt.text, tt.query)
	}
}

func TestFuzzy_ThresholdGates(t *testing.T) {
	// Given: a permissive threshold
	loose := Fuzzy{Threshold: -1000}
	assert.True(t, loose.Match("banana", "bnn"))
	assert.True(t, loose.Match("banana", ""))
	assert.False(t, loose.Match("banana", "xyz"))

	// Given: an impossible threshold
	strict := Fuzzy{Threshold: 1 << 20}
	assert.False(t, strict.Match("banana", "banana-ish"))
}

func TestFunc_Adapts(t *testing.T) {
	m := Func(func(text, query string) bool {
		return strings.HasPrefix(text, query)
	})

	assert.True(t, m.Match("banana", "ban"))
	assert.False(t, m.Match("banana", "ana"))
}

func TestForKind(t *testing.T) {
	assert.IsType(t, Fuzzy{}, ForKind("fuzzy", 5))
	assert.IsType(t, Substring{}, ForKind("substring", 0))
	assert.IsType(t, Substring{}, ForKind("bogus", 0))
	assert.Equal(t, 5, ForKind("fuzzy", 5).(Fuzzy).Threshold)
}

func TestIsRefinement(t *testing.T) {
	sub := Substring{}

	tests := []struct {
		name string
		m    Matcher
		prev string
		next string
		want bool
	}{
		{"extension refines", sub, "ban", "banana", true},
		{"case-insensitive refinement", sub, "BAN", "banana", true},
		{"identical query refines", sub, "ban", "ban", true},
		{"shortened query broadens", sub, "banana", "ban", false},
		{"disjoint query broadens", sub, "ban", "cherry", false},
		{"cleared query broadens", sub, "ban", "", false},
		{"fuzzy never refines", Fuzzy{}, "ban", "banana", false},
		{"custom never refines", Func(func(string, string) bool { return true }), "ban", "banana", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRefinement(tt.m, tt.prev, tt.next))
		})
	}
}
