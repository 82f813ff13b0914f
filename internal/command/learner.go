package command

import (
	"slices"
	"sort"
	"strings"
	"time"
)

// HistoryEntry is one successfully parsed line. Input is kept exactly as
// typed.
type HistoryEntry struct {
	Input     string    `json:"input"`
	Command   string    `json:"command"`
	Timestamp time.Time `json:"timestamp"`
}

// Learner wraps a Parser and records every successful parse. History is
// append-only; per-command patterns are normalized and deduplicated.
// A Learner belongs to one session and is not safe for concurrent use.
type Learner struct {
	parser   Parser
	top      int
	now      func() time.Time
	history  []HistoryEntry
	patterns map[string][]string
}

// NewLearner wraps p. FrequencyRanking returns at most top commands; top
// <= 0 uses the default.
func NewLearner(p Parser, top int) *Learner {
	if top <= 0 {
		top = DefaultOptions().TopCommands
	}
	return &Learner{
		parser:   p,
		top:      top,
		now:      time.Now,
		patterns: make(map[string][]string),
	}
}

// Parse delegates to the wrapped parser and records the result on success.
func (l *Learner) Parse(input string) (Parsed, bool) {
	p, ok := l.parser.Parse(input)
	if ok {
		l.Record(input, p.Command)
	}
	return p, ok
}

// Suggest forwards to the wrapped parser when it can suggest.
func (l *Learner) Suggest(input string, max int) []string {
	if s, ok := l.parser.(Suggester); ok {
		return s.Suggest(input, max)
	}
	return nil
}

// Record appends input to the history and adds its normalized form to the
// command's patterns if not already present.
func (l *Learner) Record(input, command string) {
	norm := strings.ToLower(strings.TrimSpace(input))
	if !slices.Contains(l.patterns[command], norm) {
		l.patterns[command] = append(l.patterns[command], norm)
	}
	l.history = append(l.history, HistoryEntry{
		Input:     input,
		Command:   command,
		Timestamp: l.now(),
	})
}

// History returns a copy of the recorded entries, oldest first.
func (l *Learner) History() []HistoryEntry {
	return slices.Clone(l.history)
}

// FrequencyRanking returns the most used commands, most frequent first.
// Commands with equal counts keep the order they were first used.
func (l *Learner) FrequencyRanking() []string {
	counts := l.UsageCounts()
	var order []string
	for _, h := range l.history {
		if !slices.Contains(order, h.Command) {
			order = append(order, h.Command)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > l.top {
		order = order[:l.top]
	}
	return order
}

// PatternsFor returns the distinct normalized inputs seen for command, in
// first-seen order.
func (l *Learner) PatternsFor(command string) []string {
	return slices.Clone(l.patterns[command])
}

// UsageCounts returns how many times each command was parsed.
func (l *Learner) UsageCounts() map[string]int {
	counts := make(map[string]int)
	for _, h := range l.history {
		counts[h.Command]++
	}
	return counts
}

// Clear forgets all history and patterns.
func (l *Learner) Clear() {
	l.history = nil
	l.patterns = make(map[string][]string)
}
