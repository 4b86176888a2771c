package contract

import (
	"strings"
	"testing"
)

// FuzzMatchesAny fuzzes MatchesAny with random names and comma separated patterns.
func FuzzMatchesAny(f *testing.F) {
	seeds := []struct {
		name     string
		patterns string
	}{
		{"Sleep", "sleep*"},
		{"health/steps", "health*"},
		{"Mood 1", "mood ?"},
		{"", ""},
		{"Weight", "[w"},
	}
	for _, seed := range seeds {
		f.Add(seed.name, seed.patterns)
	}

	f.Fuzz(func(t *testing.T, name string, patterns string) {
		list := SplitList(patterns)
		_ = MatchesAny(name, list)
		for _, p := range list {
			if strings.ToLower(p) == strings.ToLower(name) && !strings.ContainsAny(p, "*?[") && !MatchesAny(name, list) {
				t.Errorf("expected %q to match its own pattern", name)
			}
		}
	})
}

// FuzzParseInputBindings checks that parsing never panics.
func FuzzParseInputBindings(f *testing.F) {
	f.Add("sleep=1,steps=2")
	f.Add("=")
	f.Add("a=99999999999999999999")
	f.Fuzz(func(_ *testing.T, input string) {
		_, _ = ParseInputBindings(strings.Split(input, ","))
	})
}
