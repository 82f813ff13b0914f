package command

import (
	"fmt"
	"strings"
)

// Suggestion pairs a command with the phrase that scored it (score is
// similarity plus bonus, higher is better).
type Suggestion struct {
	Command string  `json:"command"`
	Phrase  string  `json:"phrase"`
	Score   float64 `json:"score"`
}

// String formats the suggestion as "command (phrase)".
func (s Suggestion) String() string {
	return fmt.Sprintf("%s (%s)", s.Command, s.Phrase)
}

// Suggestions ranks every phrase against input and returns up to max
// distinct commands scoring above the suggestion threshold. A max of zero
// or less uses Options.MaxSuggestions.
func (m *Matcher) Suggestions(input string, max int) []Suggestion {
	if max <= 0 {
		max = m.opts.MaxSuggestions
	}
	norm := strings.ToLower(strings.TrimSpace(input))
	in := chars(norm)
	var head string
	if len(in) >= 2 {
		head = firstRunes(norm, 2)
	}

	scored := make([]Suggestion, 0, len(m.table.entries))
	for _, e := range m.table.entries {
		score := ratio(in, e.chars)
		if head != "" && strings.HasPrefix(e.phrase, head) {
			score += suggestPrefixBonus
		}
		scored = append(scored, Suggestion{Command: e.command, Phrase: e.phrase, Score: score})
	}
	sortByScore(scored)

	var out []Suggestion
	seen := make(map[string]bool)
	for _, s := range scored {
		if len(out) >= max {
			break
		}
		if seen[s.Command] || s.Score <= m.opts.SuggestThreshold {
			continue
		}
		seen[s.Command] = true
		out = append(out, s)
	}
	return out
}

// Suggest returns Suggestions formatted as "command (phrase)".
func (m *Matcher) Suggest(input string, max int) []string {
	sugs := m.Suggestions(input, max)
	out := make([]string, len(sugs))
	for i, s := range sugs {
		out[i] = s.String()
	}
	return out
}

// sortByScore sorts suggestions by score descending using insertion sort
// (sufficient for small result sets). Equal scores keep table order.
func sortByScore(s []Suggestion) {
	for i := 1; i < len(s); i++ {
		key := s[i]
		j := i - 1
		for j >= 0 && s[j].Score < key.Score {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = key
	}
}
