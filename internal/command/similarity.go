package command

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// chars splits s into one string per rune, the sequence form difflib
// compares.
func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// ratio is the Ratcliff/Obershelp similarity of two rune sequences:
// twice the matched characters over the total length, in [0,1].
func ratio(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	return difflib.NewMatcher(a, b).Ratio()
}

// wordSet returns the distinct whitespace-separated words of s.
func wordSet(s string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		words[w] = struct{}{}
	}
	return words
}

// firstRunes returns the first n runes of s, or s itself when shorter.
func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
