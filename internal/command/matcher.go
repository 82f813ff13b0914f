package command

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/TiredRebel/personal-assistant/internal/cmdparse"
)

// Scoring weights added on top of the similarity ratio.
const (
	prefixBonus        = 0.2 // input starts with the phrase
	overlapWeight      = 0.3 // times the share of phrase words present in the input
	suggestPrefixBonus = 0.2 // first two characters agree
)

// Options tunes the matcher.
type Options struct {
	// FuzzyThreshold is the score a fuzzy match must exceed.
	FuzzyThreshold float64 `json:"fuzzy_threshold"`
	// SuggestThreshold is the score a suggestion must exceed.
	SuggestThreshold float64 `json:"suggest_threshold"`
	// IntentConfidence is reported for intent-pattern matches.
	IntentConfidence float64 `json:"intent_confidence"`
	// MaxSuggestions caps Suggest when the caller passes max <= 0.
	MaxSuggestions int `json:"max_suggestions"`
	// TopCommands caps Learner.FrequencyRanking.
	TopCommands int `json:"top_commands"`
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		FuzzyThreshold:   0.7,
		SuggestThreshold: 0.4,
		IntentConfidence: 0.85,
		MaxSuggestions:   3,
		TopCommands:      5,
	}
}

// Parsed is an interpreted command line. Confidence is nil for exact
// phrase matches.
type Parsed struct {
	Command    string        `json:"command"`
	Args       cmdparse.Args `json:"args"`
	Confidence *float64      `json:"confidence,omitempty"`
}

// Parser interprets one line of input. The boolean is false when nothing
// matched; that is a normal outcome, not an error.
type Parser interface {
	Parse(input string) (Parsed, bool)
}

// Suggester proposes commands for input that did not parse.
type Suggester interface {
	Suggest(input string, max int) []string
}

type intentPattern struct {
	command string
	re      *regexp.Regexp
}

// Matcher is the stateless three-tier parser over a Table.
type Matcher struct {
	table   *Table
	opts    Options
	intents []intentPattern
	logger  *slog.Logger
}

// NewMatcher compiles the table's intent patterns. Patterns that fail to
// compile are logged and skipped. A nil logger discards output.
func NewMatcher(table *Table, opts Options, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Matcher{table: table, opts: opts, logger: logger}
	for _, c := range table.commands {
		for _, expr := range c.Intents {
			re, err := regexp.Compile("(?i)" + expr)
			if err != nil {
				logger.Warn("skipping intent pattern", "command", c.Name, "pattern", expr, "err", err)
				continue
			}
			m.intents = append(m.intents, intentPattern{command: c.Name, re: re})
		}
	}
	return m
}

// Table returns the vocabulary the matcher was built with.
func (m *Matcher) Table() *Table { return m.table }

// Options returns the matcher's tuning.
func (m *Matcher) Options() Options { return m.opts }

// Parse interprets input: exact phrase, then fuzzy phrase, then intent
// patterns. Arguments are only extracted on the fuzzy tier, from the
// trimmed input with its original case.
func (m *Matcher) Parse(input string) (Parsed, bool) {
	original := strings.TrimSpace(input)
	lower := strings.ToLower(original)

	if cmd, ok := m.table.Lookup(lower); ok {
		observeParse(tierExact)
		return Parsed{Command: cmd, Args: cmdparse.Args{}}, true
	}

	if cmd, score := m.fuzzy(lower); cmd != "" && score > m.opts.FuzzyThreshold {
		observeParse(tierFuzzy)
		return Parsed{
			Command:    cmd,
			Args:       cmdparse.Extract(original, m.table.keywords),
			Confidence: &score,
		}, true
	}

	if p, ok := m.intent(lower); ok {
		observeParse(tierIntent)
		return p, true
	}

	observeParse(tierNone)
	return Parsed{}, false
}

// fuzzy returns the best-scoring command for input. Ties keep the phrase
// found first.
func (m *Matcher) fuzzy(input string) (string, float64) {
	in := chars(input)
	inWords := wordSet(input)

	best, bestScore := "", 0.0
	for _, e := range m.table.entries {
		score := ratio(in, e.chars)
		if strings.HasPrefix(input, e.phrase) {
			score += prefixBonus
		}
		if len(e.words) > 0 {
			overlap := 0
			for w := range e.words {
				if _, ok := inWords[w]; ok {
					overlap++
				}
			}
			score += float64(overlap) / float64(len(e.words)) * overlapWeight
		}
		if score > bestScore {
			best, bestScore = e.command, score
		}
	}
	return best, bestScore
}

// intent runs the intent patterns in table order; the first hit wins.
func (m *Matcher) intent(input string) (Parsed, bool) {
	for _, ip := range m.intents {
		sub := ip.re.FindStringSubmatch(input)
		if sub == nil {
			continue
		}
		args := cmdparse.Args{}
		if len(sub) > 2 {
			if q := strings.TrimSpace(sub[2]); q != "" {
				args[cmdparse.QueryKey] = cmdparse.Text(q)
			}
		}
		conf := m.opts.IntentConfidence
		return Parsed{Command: ip.command, Args: args, Confidence: &conf}, true
	}
	return Parsed{}, false
}
