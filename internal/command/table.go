// Package command interprets a free-form line of user text as one of the
// assistant's canonical commands. Interpretation is tiered: exact phrase
// lookup, fuzzy phrase scoring, then regular-expression intent patterns.
// Unmatched input can be turned into "did you mean" suggestions, and a
// Learner records what each user actually types.
package command

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/TiredRebel/personal-assistant/internal/cmdparse"
	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var patternsYAML []byte

// Command describes one canonical command and the ways to say it.
type Command struct {
	Name    string   `yaml:"name" json:"name"`
	Summary string   `yaml:"summary" json:"summary"`
	Usage   string   `yaml:"usage" json:"usage"`
	Phrases []string `yaml:"phrases" json:"phrases"`
	Intents []string `yaml:"intents,omitempty" json:"intents,omitempty"`
}

// entry is one flattened phrase of the table, precomputed for scoring.
type entry struct {
	phrase  string
	command string
	chars   []string
	words   map[string]struct{}
}

// Table is an immutable command vocabulary with its phrase index.
type Table struct {
	commands []Command
	byName   map[string]int
	entries  []entry
	index    map[string]string
	keywords cmdparse.Keywords
}

// LoadTable decodes a YAML vocabulary document from r.
func LoadTable(r io.Reader) (*Table, error) {
	var doc struct {
		Commands []Command `yaml:"commands"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode command table: %w", err)
	}
	return NewTable(doc.Commands)
}

// NewTable builds a table from commands in the given order. Phrases are
// trimmed and lowercased. It fails if a command has no name or no phrases,
// if a name repeats, or if one phrase is claimed by two commands.
func NewTable(commands []Command) (*Table, error) {
	t := &Table{
		byName: make(map[string]int, len(commands)),
		index:  make(map[string]string),
	}
	var all []string
	for _, c := range commands {
		if c.Name == "" {
			return nil, fmt.Errorf("command table: command with empty name")
		}
		if _, dup := t.byName[c.Name]; dup {
			return nil, fmt.Errorf("command table: duplicate command %q", c.Name)
		}
		phrases := make([]string, 0, len(c.Phrases))
		for _, p := range c.Phrases {
			p = strings.ToLower(strings.TrimSpace(p))
			if p == "" {
				continue
			}
			if owner, ok := t.index[p]; ok {
				if owner != c.Name {
					return nil, fmt.Errorf("command table: phrase %q claimed by both %q and %q", p, owner, c.Name)
				}
				continue
			}
			t.index[p] = c.Name
			t.entries = append(t.entries, newEntry(p, c.Name))
			phrases = append(phrases, p)
		}
		if len(phrases) == 0 {
			return nil, fmt.Errorf("command table: command %q has no phrases", c.Name)
		}
		c.Phrases = phrases
		t.byName[c.Name] = len(t.commands)
		t.commands = append(t.commands, c)
		all = append(all, phrases...)
	}
	t.keywords = cmdparse.NewKeywords(all)
	return t, nil
}

func newEntry(phrase, command string) entry {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(phrase) {
		words[w] = struct{}{}
	}
	return entry{
		phrase:  phrase,
		command: command,
		chars:   chars(phrase),
		words:   words,
	}
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := LoadTable(bytes.NewReader(patternsYAML))
	if err != nil {
		panic(err)
	}
	return t
})

// DefaultTable returns the built-in vocabulary.
func DefaultTable() *Table {
	return defaultTable()
}

// Lookup returns the command registered for an exact (already normalized)
// phrase.
func (t *Table) Lookup(phrase string) (string, bool) {
	c, ok := t.index[phrase]
	return c, ok
}

// Command returns the definition of a canonical command.
func (t *Table) Command(name string) (Command, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Command{}, false
	}
	return t.commands[i], true
}

// Commands returns all commands in table order.
func (t *Table) Commands() []Command {
	out := make([]Command, len(t.commands))
	copy(out, t.commands)
	return out
}

// Names returns the canonical command names in table order.
func (t *Table) Names() []string {
	out := make([]string, len(t.commands))
	for i, c := range t.commands {
		out[i] = c.Name
	}
	return out
}

// Keywords returns the set of words used by any phrase.
func (t *Table) Keywords() cmdparse.Keywords {
	return t.keywords
}
