package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/TiredRebel/personal-assistant/internal/cmdparse"
	"github.com/TiredRebel/personal-assistant/internal/command"
	"github.com/TiredRebel/personal-assistant/internal/service"
)

var (
	// errCancelled stops a handler when input ends while it is prompting.
	errCancelled = errors.New("cancelled")
	// errNotRecognized is returned by Execute for lines that did not parse.
	errNotRecognized = errors.New("command not recognized")
)

// handlerFunc runs one command. line is the trimmed input as typed.
type handlerFunc func(ctx context.Context, args cmdparse.Args, line string) error

// SessionConfig wires a Session.
type SessionConfig struct {
	In             io.Reader
	Out            io.Writer
	Learner        *command.Learner
	Contacts       *service.Contacts
	Notes          *service.Notes
	Color          bool
	JSON           bool
	Interactive    bool
	BirthdayDays   int
	MaxSuggestions int
}

// Session reads command lines, interprets them and runs the matching
// handler until exit or end of input. Prompts read from the same input.
type Session struct {
	in             *bufio.Scanner
	out            io.Writer
	ui             *ui
	learner        *command.Learner
	table          *command.Table
	contacts       *service.Contacts
	notes          *service.Notes
	json           bool
	interactive    bool
	birthdayDays   int
	maxSuggestions int
	now            func() time.Time
	handlers       map[string]handlerFunc
	done           bool
}

// NewSession returns a session over cfg.
func NewSession(cfg SessionConfig) *Session {
	s := &Session{
		in:             bufio.NewScanner(cfg.In),
		out:            cfg.Out,
		ui:             newUI(cfg.Out, cfg.Color),
		learner:        cfg.Learner,
		table:          command.DefaultTable(),
		contacts:       cfg.Contacts,
		notes:          cfg.Notes,
		json:           cfg.JSON,
		interactive:    cfg.Interactive,
		birthdayDays:   cfg.BirthdayDays,
		maxSuggestions: cfg.MaxSuggestions,
		now:            time.Now,
	}
	s.handlers = map[string]handlerFunc{
		"add-contact":    s.addContact,
		"search-contact": s.searchContact,
		"list-contacts":  s.listContacts,
		"edit-contact":   s.editContact,
		"delete-contact": s.deleteContact,
		"birthdays":      s.birthdays,
		"add-note":       s.addNote,
		"search-note":    s.searchNote,
		"list-notes":     s.listNotes,
		"edit-note":      s.editNote,
		"delete-note":    s.deleteNote,
		"search-by-tag":  s.searchByTag,
		"list-tags":      s.listTags,
		"add-tag":        s.addTag,
		"remove-tag":     s.removeTag,
		"help":           s.help,
		"stats":          s.stats,
		"clear":          s.clear,
		"exit":           s.exit,
	}
	return s
}

// Run processes lines until exit or end of input.
func (s *Session) Run(ctx context.Context) error {
	if s.interactive {
		s.welcome()
	}
	for !s.done {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.interactive {
			s.ui.Prompt("\nEnter command: ")
		}
		line, ok := s.readLine()
		if !ok {
			break
		}
		s.Execute(ctx, line)
	}
	if s.interactive && !s.done {
		fmt.Fprintln(s.out, "\nGoodbye!")
	}
	return s.in.Err()
}

// Done reports whether the exit command ran.
func (s *Session) Done() bool {
	return s.done
}

func (s *Session) welcome() {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(s.out, rule)
	fmt.Fprintln(s.out, "  Personal Assistant")
	fmt.Fprintln(s.out, "  Manage your contacts and notes efficiently")
	fmt.Fprintln(s.out, rule)
	fmt.Fprintln(s.out, "Type 'help' for available commands.")
}

// Execute interprets one line and runs its handler. Errors are printed
// before being returned; blank lines are ignored.
func (s *Session) Execute(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if name, ok := s.helpTarget(line); ok {
		return s.usage(name)
	}

	p, ok := s.learner.Parse(line)
	if !ok {
		s.notRecognized(line)
		return errNotRecognized
	}
	if wantsHelp(line) {
		return s.usage(p.Command)
	}

	h, ok := s.handlers[p.Command]
	if !ok {
		s.ui.Error("No handler for command '%s'", p.Command)
		return fmt.Errorf("no handler for %s", p.Command)
	}
	err := h(ctx, p.Args, line)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errCancelled):
		s.ui.Warn("Cancelled")
		return err
	default:
		s.ui.Error("%v", err)
		return err
	}
}

func (s *Session) notRecognized(line string) {
	fmt.Fprintln(s.out)
	s.ui.Error("Command not recognized: '%s'", line)
	suggestions := s.learner.Suggest(line, s.maxSuggestions)
	if len(suggestions) == 0 {
		fmt.Fprintln(s.out, "Type 'help' for available commands")
		return
	}
	fmt.Fprintln(s.out, "\nDid you mean:")
	for _, sug := range suggestions {
		fmt.Fprintf(s.out, "  • %s\n", sug)
	}
}

// wantsHelp reports whether line asks for a command's usage.
func wantsHelp(line string) bool {
	for _, tok := range cmdparse.Tokens(line) {
		if tok == "--help" {
			return true
		}
	}
	return false
}

// helpTarget resolves "help <command>" lines. The rest of the line may be
// a command id or any registered phrase.
func (s *Session) helpTarget(line string) (string, bool) {
	lower := strings.ToLower(line)
	rest, ok := strings.CutPrefix(lower, "help ")
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if cmd, ok := s.table.Command(rest); ok {
		return cmd.Name, true
	}
	if name, ok := s.table.Lookup(rest); ok {
		return name, true
	}
	return "", false
}

func (s *Session) usage(name string) error {
	cmd, ok := s.table.Command(name)
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}
	fmt.Fprintf(s.out, "\n%s - %s\n", cmd.Name, cmd.Summary)
	fmt.Fprintf(s.out, "Usage: %s\n", cmd.Usage)
	if len(cmd.Phrases) > 1 {
		fmt.Fprintf(s.out, "Also: %s\n", strings.Join(cmd.Phrases[1:], ", "))
	}
	return nil
}

// readLine returns the next input line, or false at end of input.
func (s *Session) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

// ask prompts and returns the trimmed answer. End of input cancels.
func (s *Session) ask(prompt string) (string, error) {
	s.ui.Prompt(prompt)
	line, ok := s.readLine()
	if !ok {
		fmt.Fprintln(s.out)
		return "", errCancelled
	}
	return strings.TrimSpace(line), nil
}

// askDefault prompts showing current; an empty answer keeps it and is
// returned as "".
func (s *Session) askDefault(label, current string) (string, error) {
	return s.ask(fmt.Sprintf("%s [%s]: ", label, current))
}

// confirm asks a yes/no question; only "yes" or "y" confirm.
func (s *Session) confirm(question string) (bool, error) {
	answer, err := s.ask(fmt.Sprintf("\n%s (yes/no): ", question))
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "yes" || answer == "y", nil
}

// readContent reads lines until one containing only "." or end of input.
// With keepOnEmpty, an empty first line returns "" immediately.
func (s *Session) readContent(keepOnEmpty bool) string {
	var lines []string
	for {
		line, ok := s.readLine()
		if !ok || strings.TrimSpace(line) == "." {
			break
		}
		if keepOnEmpty && len(lines) == 0 && strings.TrimSpace(line) == "" {
			return ""
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// choose asks for a 1-based index into n items.
func (s *Session) choose(n int) (int, error) {
	answer, err := s.ask("\nEnter number: ")
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(answer)
	if err != nil || i < 1 || i > n {
		return 0, errors.New("invalid selection")
	}
	return i - 1, nil
}

func (s *Session) writeJSON(v any) error {
	enc := json.NewEncoder(s.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// plural formats n with "(s)" the way every listing footer does.
func plural(n int, noun string) string {
	return fmt.Sprintf("%d %s(s)", n, noun)
}
