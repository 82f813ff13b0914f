package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/TiredRebel/personal-assistant/internal/cmdparse"
	"github.com/TiredRebel/personal-assistant/internal/service"
)

func parsePositive(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("want a positive number, got %q", v)
	}
	return n, nil
}

func (s *Session) help(ctx context.Context, args cmdparse.Args, line string) error {
	s.ui.Heading("Personal Assistant Help")
	fmt.Fprintln(s.out, "\nAvailable Commands:")
	tbl := NewTable(s.out, s.ui.color)
	for _, c := range s.table.Commands() {
		tbl.Row("  "+c.Name, c.Summary)
	}
	if err := tbl.Flush(); err != nil {
		return err
	}

	if top := s.learner.FrequencyRanking(); len(top) > 0 {
		counts := s.learner.UsageCounts()
		fmt.Fprintln(s.out, "\nYour most used commands:")
		for _, name := range top {
			fmt.Fprintf(s.out, "  • %s (%d)\n", name, counts[name])
		}
	}
	fmt.Fprintln(s.out, "\nType '<command> --help' for usage. Commands can be typed loosely, e.g. 'new contact'.")
	return nil
}

// usageCount is one command's parse count in this session.
type usageCount struct {
	Command string `json:"command"`
	Count   int    `json:"count"`
}

// sessionStats is the stats command's JSON shape.
type sessionStats struct {
	Contacts int               `json:"contacts"`
	Notes    service.NoteStats `json:"notes"`
	Usage    []usageCount      `json:"usage"`
}

func (s *Session) usageCounts() []usageCount {
	counts := s.learner.UsageCounts()
	out := make([]usageCount, 0, len(counts))
	for cmd, n := range counts {
		out = append(out, usageCount{cmd, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Command < out[j].Command
	})
	return out
}

func (s *Session) stats(ctx context.Context, args cmdparse.Args, line string) error {
	st := sessionStats{
		Contacts: s.contacts.Count(),
		Notes:    s.notes.Stats(),
		Usage:    s.usageCounts(),
	}
	if s.json {
		return s.writeJSON(st)
	}

	s.ui.Heading("Statistics")
	fmt.Fprintf(s.out, "Contacts:  %d\n", st.Contacts)
	fmt.Fprintf(s.out, "Notes:     %d\n", st.Notes.TotalNotes)
	fmt.Fprintf(s.out, "Tags:      %d\n", st.Notes.TotalTags)
	if st.Notes.TotalNotes > 0 {
		fmt.Fprintf(s.out, "\nAverage tags per note: %.2f\n", st.Notes.AvgTagsPerNote)
		fmt.Fprintf(s.out, "Notes without tags:    %d\n", st.Notes.NotesWithoutTags)
		fmt.Fprintf(s.out, "Notes with a title:    %d\n", st.Notes.NotesWithTitle)
	}
	if len(st.Notes.MostUsedTags) > 0 {
		fmt.Fprintln(s.out, "\nMost used tags:")
		for _, tc := range st.Notes.MostUsedTags {
			fmt.Fprintf(s.out, "  • %s (%d)\n", tc.Tag, tc.Count)
		}
	}
	if len(st.Usage) > 0 {
		fmt.Fprintln(s.out, "\nCommands this session:")
		for _, u := range st.Usage {
			fmt.Fprintf(s.out, "  • %s (%d)\n", u.Command, u.Count)
		}
	}
	return nil
}

func (s *Session) clear(ctx context.Context, args cmdparse.Args, line string) error {
	fmt.Fprint(s.out, "\033[H\033[2J")
	return nil
}

func (s *Session) exit(ctx context.Context, args cmdparse.Args, line string) error {
	fmt.Fprintln(s.out, "\nThank you for using Personal Assistant!")
	fmt.Fprintln(s.out, "Goodbye!")
	s.done = true
	return nil
}
