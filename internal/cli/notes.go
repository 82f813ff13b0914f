package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/TiredRebel/personal-assistant/internal/cmdparse"
	"github.com/TiredRebel/personal-assistant/internal/model"
	"github.com/TiredRebel/personal-assistant/internal/service"
	"github.com/dustin/go-humanize"
)

const (
	contentPreview = 80
	contentDetail  = 100
)

// splitHashtags separates #tag values from the other positional values.
func splitHashtags(values []string) (words, tags []string) {
	for _, v := range values {
		if strings.HasPrefix(v, "#") && len(v) > 1 {
			tags = append(tags, v)
			continue
		}
		words = append(words, v)
	}
	return words, tags
}

func (s *Session) addNote(ctx context.Context, args cmdparse.Args, line string) error {
	s.ui.Heading("Add New Note")

	words, tags := splitHashtags(args.Values())
	title := strings.Join(words, " ")
	if v, ok := args.Text("title"); ok {
		title = v
	}
	tags = append(tags, model.SplitTags(args.String("tags"))...)
	content := args.String("content")

	prompted := false
	if content == "" {
		prompted = true
		var err error
		if title == "" {
			if title, err = s.ask("Title (optional): "); err != nil {
				return err
			}
		}
		fmt.Fprintln(s.out, "Content (finish with a line containing only '.'):")
		content = s.readContent(false)
	}
	if strings.TrimSpace(content) == "" {
		return errors.New("content cannot be empty")
	}

	if len(tags) == 0 {
		if suggested := service.SuggestTags(content, s.notes.Tags()); len(suggested) > 0 {
			fmt.Fprintf(s.out, "Suggested tags: %s\n", strings.Join(suggested, ", "))
		}
		if prompted {
			answer, err := s.ask("Tags (comma-separated, optional): ")
			if err != nil {
				return err
			}
			tags = model.SplitTags(answer)
		}
	}

	note, err := s.notes.Create(ctx, content, title, tags)
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	s.ui.Success("Note created successfully! (ID: %s)", note.ShortID())
	s.displayNote(note)
	return nil
}

func (s *Session) searchNote(ctx context.Context, args cmdparse.Args, line string) error {
	query := strings.Join(args.Values(), " ")
	if query == "" {
		query = args.String(cmdparse.QueryKey)
	}
	if query == "" {
		var err error
		if query, err = s.ask("Search query or ID: "); err != nil {
			return err
		}
	}
	if query == "" {
		return errors.New("search query cannot be empty")
	}

	if note, err := s.notes.Get(query); err == nil {
		if s.json {
			return s.writeJSON([]model.Note{note})
		}
		s.ui.Heading("Search Notes")
		s.ui.Success("Found note by ID:")
		s.notesList([]model.Note{note})
		return nil
	}

	results := s.notes.Search(query)
	if s.json {
		return s.writeJSON(nonNil(results))
	}
	s.ui.Heading("Search Notes")
	if len(results) == 0 {
		s.ui.Warn("No notes found matching '%s'", query)
		return nil
	}
	s.ui.Success("Found %s:", plural(len(results), "note"))
	s.notesList(results)
	return nil
}

// sortedNotes orders every note by the --sort option. Updated time, newest
// first, is the default.
func (s *Session) sortedNotes(order string) ([]model.Note, error) {
	switch strings.ToLower(order) {
	case "", "updated":
		return s.notes.All(), nil
	case "oldest":
		return s.notes.SortByCreated(true), nil
	case "newest":
		return s.notes.SortByCreated(false), nil
	case "tags":
		return s.notes.SortByTagCount(), nil
	}
	return nil, fmt.Errorf("unknown sort order %q (use updated, oldest, newest or tags)", order)
}

func (s *Session) listNotes(ctx context.Context, args cmdparse.Args, line string) error {
	all, err := s.sortedNotes(args.String("sort"))
	if err != nil {
		return err
	}
	if s.json {
		return s.writeJSON(all)
	}
	s.ui.Heading("All Notes")
	if len(all) == 0 {
		s.ui.Warn("No notes available")
		return nil
	}
	s.notesList(all)
	fmt.Fprintf(s.out, "\nTotal: %s\n", plural(len(all), "note"))
	return nil
}

// pickNote resolves ref as an id or id prefix, falling back to a text
// search. Several hits ask the user to choose.
func (s *Session) pickNote(ref string) (model.Note, error) {
	if ref == "" {
		var err error
		if ref, err = s.ask("Note ID (or search term): "); err != nil {
			return model.Note{}, err
		}
	}
	if ref == "" {
		return model.Note{}, errCancelled
	}
	if note, err := s.notes.Get(ref); err == nil {
		return note, nil
	}

	results := s.notes.Search(ref)
	switch len(results) {
	case 0:
		return model.Note{}, errors.New("note not found")
	case 1:
		return results[0], nil
	}
	s.ui.Warn("Multiple notes found. Please select one:")
	s.notesList(results)
	i, err := s.choose(len(results))
	if err != nil {
		return model.Note{}, err
	}
	return results[i], nil
}

func (s *Session) editNote(ctx context.Context, args cmdparse.Args, line string) error {
	s.ui.Heading("Edit Note")

	note, err := s.pickNote(strings.Join(args.Values(), " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "\nCurrent note:")
	s.displayNote(note)

	var u service.NoteUpdate
	if v, ok := args.Text("title"); ok && v != "" {
		u.Title = &v
	}
	if v, ok := args.Text("content"); ok && v != "" {
		u.Content = &v
	}
	if v, ok := args.Text("tags"); ok && v != "" {
		tags := model.SplitTags(v)
		u.Tags = &tags
	}

	if u.Title == nil && u.Content == nil && u.Tags == nil {
		fmt.Fprintln(s.out, "\nWhat would you like to edit?")
		fmt.Fprintln(s.out, "1. Title\n2. Content\n3. Tags\n4. All")
		choice, err := s.ask("\nChoice (1-4): ")
		if err != nil {
			return err
		}
		if choice == "1" || choice == "4" {
			v, err := s.askDefault("Title", note.Title)
			if err != nil {
				return err
			}
			if v != "" {
				u.Title = &v
			}
		}
		if choice == "2" || choice == "4" {
			fmt.Fprintln(s.out, "Content (finish with '.', or press Enter to keep current):")
			if v := s.readContent(true); v != "" {
				u.Content = &v
			}
		}
		if choice == "3" || choice == "4" {
			v, err := s.askDefault("Tags (comma-separated)", strings.Join(note.Tags, ", "))
			if err != nil {
				return err
			}
			if v != "" {
				tags := model.SplitTags(v)
				u.Tags = &tags
			}
		}
	}
	if u.Title == nil && u.Content == nil && u.Tags == nil {
		s.ui.Warn("Nothing to change")
		return nil
	}

	updated, err := s.notes.Edit(ctx, note.ID, u)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	s.ui.Success("Note updated successfully! (ID: %s)", updated.ShortID())
	s.displayNote(updated)
	return nil
}

func (s *Session) deleteNote(ctx context.Context, args cmdparse.Args, line string) error {
	s.ui.Heading("Delete Note")

	note, err := s.pickNote(strings.Join(args.Values(), " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "\nNote to delete:")
	s.displayNote(note)

	ok, err := s.confirm("Are you sure you want to delete this note?")
	if err != nil {
		return err
	}
	if !ok {
		s.ui.Warn("Deletion cancelled")
		return nil
	}
	if _, err := s.notes.Delete(ctx, note.ID); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	s.ui.Success("Note deleted successfully")
	return nil
}

func (s *Session) searchByTag(ctx context.Context, args cmdparse.Args, line string) error {
	raw := args.String("tags")
	if raw == "" {
		raw = strings.Join(args.Values(), ",")
	}
	if raw == "" {
		var err error
		if raw, err = s.ask("Tags (comma-separated): "); err != nil {
			return err
		}
	}
	match := strings.ToLower(args.String("match"))
	if match != "" && match != "all" && match != "any" {
		return fmt.Errorf("unknown match mode %q (use all or any)", match)
	}
	tags := model.SplitTags(raw)
	if len(tags) == 0 {
		return nil
	}

	var results []model.Note
	label := "tags"
	if match == "any" {
		results = s.notes.ByAnyTag(tags)
		label = "any of tags"
	} else {
		results = s.notes.ByTags(tags)
	}
	if s.json {
		return s.writeJSON(nonNil(results))
	}
	s.ui.Heading("Search by Tags")
	joined := strings.Join(tags, ", ")
	if len(results) == 0 {
		s.ui.Warn("No notes found with %s: %s", label, joined)
		return nil
	}
	s.ui.Success("Found %s with %s: %s", plural(len(results), "note"), label, joined)
	s.notesList(results)
	return nil
}

func (s *Session) listTags(ctx context.Context, args cmdparse.Args, line string) error {
	counts := s.notes.TagCounts()
	if s.json {
		return s.writeJSON(nonNil(counts))
	}
	s.ui.Heading("All Tags")
	if len(counts) == 0 {
		s.ui.Warn("No tags available")
		return nil
	}
	for _, tc := range counts {
		fmt.Fprintf(s.out, "  • %s (%d)\n", tc.Tag, tc.Count)
	}
	fmt.Fprintf(s.out, "\nTotal: %s\n", plural(len(counts), "tag"))
	return nil
}

// noteAndTag reads "<note> <tag>" arguments, prompting for what is missing.
func (s *Session) noteAndTag(args cmdparse.Args) (model.Note, string, error) {
	values := args.Values()
	var ref, tag string
	if len(values) > 0 {
		ref = values[0]
	}
	if len(values) > 1 {
		tag = values[len(values)-1]
		if len(values) > 2 {
			ref = strings.Join(values[:len(values)-1], " ")
		}
	}
	note, err := s.pickNote(ref)
	if err != nil {
		return model.Note{}, "", err
	}
	if tag == "" {
		if tag, err = s.ask("Tag: "); err != nil {
			return model.Note{}, "", err
		}
	}
	if tag == "" {
		return model.Note{}, "", errCancelled
	}
	return note, strings.TrimPrefix(tag, "#"), nil
}

func (s *Session) addTag(ctx context.Context, args cmdparse.Args, line string) error {
	note, tag, err := s.noteAndTag(args)
	if err != nil {
		return err
	}
	if note.HasTag(tag) {
		s.ui.Warn("Note %s already has tag '%s'", note.ShortID(), tag)
		return nil
	}
	updated, err := s.notes.AddTag(ctx, note.ID, tag)
	if err != nil {
		return fmt.Errorf("add tag: %w", err)
	}
	s.ui.Success("Tag '%s' added to note %s", strings.ToLower(tag), updated.ShortID())
	return nil
}

func (s *Session) removeTag(ctx context.Context, args cmdparse.Args, line string) error {
	note, tag, err := s.noteAndTag(args)
	if err != nil {
		return err
	}
	if !note.HasTag(tag) {
		s.ui.Warn("Note %s has no tag '%s'", note.ShortID(), tag)
		return nil
	}
	updated, err := s.notes.RemoveTag(ctx, note.ID, tag)
	if err != nil {
		return fmt.Errorf("remove tag: %w", err)
	}
	s.ui.Success("Tag '%s' removed from note %s", strings.ToLower(tag), updated.ShortID())
	return nil
}

func (s *Session) displayNote(n model.Note) {
	fmt.Fprintf(s.out, "\nID:       %s\n", n.ShortID())
	if n.Title != "" {
		fmt.Fprintf(s.out, "Title:    %s\n", n.Title)
	}
	fmt.Fprintf(s.out, "Content:  %s\n", truncate(n.Content, contentDetail))
	if len(n.Tags) > 0 {
		fmt.Fprintf(s.out, "Tags:     %s\n", strings.Join(n.Tags, ", "))
	}
	fmt.Fprintf(s.out, "Created:  %s\n", n.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(s.out, "Updated:  %s %s\n", n.UpdatedAt.Local().Format("2006-01-02 15:04"),
		s.ui.Faint("("+humanize.RelTime(n.UpdatedAt, s.now(), "ago", "from now")+")"))
}

func (s *Session) notesList(notes []model.Note) {
	for i, n := range notes {
		title := n.Title
		if title == "" {
			title = "(Untitled)"
		}
		fmt.Fprintf(s.out, "\n%d. [%s] %s\n", i+1, n.ShortID(), title)
		preview := strings.ReplaceAll(n.Content, "\n", " ")
		fmt.Fprintf(s.out, "   %s\n", truncate(preview, contentPreview))
		if len(n.Tags) > 0 {
			fmt.Fprintf(s.out, "   Tags: %s\n", strings.Join(n.Tags, ", "))
		}
	}
}
