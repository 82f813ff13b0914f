package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/TiredRebel/personal-assistant/internal/model"
	"github.com/TiredRebel/personal-assistant/internal/store"
	"github.com/TiredRebel/personal-assistant/internal/validate"
)

// MinPrefixLen is the shortest id prefix Notes.Get resolves.
const MinPrefixLen = 4

// Notes manages notes and their tags.
type Notes struct {
	store store.Store
	notes []model.Note
	now   func() time.Time
}

// NewNotes loads the stored notes.
func NewNotes(ctx context.Context, st store.Store) (*Notes, error) {
	notes, err := st.LoadNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	return &Notes{store: st, notes: notes, now: time.Now}, nil
}

func (n *Notes) commit(ctx context.Context, next []model.Note) error {
	if err := n.store.SaveNotes(ctx, next); err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	n.notes = next
	return nil
}

// Create stores a new note.
func (n *Notes) Create(ctx context.Context, content, title string, tags []string) (model.Note, error) {
	if err := validate.Text(content); err != nil {
		return model.Note{}, err
	}
	note, err := model.NewNote(strings.TrimSpace(content), validate.Sanitize(title), tags, n.now())
	if err != nil {
		return model.Note{}, err
	}
	next := append(slices.Clone(n.notes), note)
	if err := n.commit(ctx, next); err != nil {
		return model.Note{}, err
	}
	return note, nil
}

func (n *Notes) index(id string) (int, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return -1, fmt.Errorf("note %q: %w", id, ErrNotFound)
	}
	for i, note := range n.notes {
		if note.ID == id {
			return i, nil
		}
	}
	if len(id) < MinPrefixLen {
		return -1, fmt.Errorf("note %q: %w", id, ErrNotFound)
	}
	found := -1
	for i, note := range n.notes {
		if strings.HasPrefix(note.ID, id) {
			if found >= 0 {
				return -1, fmt.Errorf("note id prefix %q: %w", id, ErrAmbiguous)
			}
			found = i
		}
	}
	if found < 0 {
		return -1, fmt.Errorf("note %q: %w", id, ErrNotFound)
	}
	return found, nil
}

// Get returns the note with the given id or with a unique id prefix of at
// least MinPrefixLen characters.
func (n *Notes) Get(id string) (model.Note, error) {
	i, err := n.index(id)
	if err != nil {
		return model.Note{}, err
	}
	return n.notes[i], nil
}

func byUpdatedDesc(notes []model.Note) []model.Note {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
	return notes
}

// Search returns notes whose title or content contains query, ignoring
// case, most recently updated first.
func (n *Notes) Search(query string) []model.Note {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	var out []model.Note
	for _, note := range n.notes {
		if strings.Contains(strings.ToLower(note.Title), query) ||
			strings.Contains(strings.ToLower(note.Content), query) {
			out = append(out, note)
		}
	}
	return byUpdatedDesc(out)
}

// ByTags returns notes carrying every one of tags, most recently updated
// first. No tags matches nothing.
func (n *Notes) ByTags(tags []string) []model.Note {
	want := model.NormalizeTags(tags)
	if len(want) == 0 {
		return nil
	}
	var out []model.Note
	for _, note := range n.notes {
		if countTags(note, want) == len(want) {
			out = append(out, note)
		}
	}
	return byUpdatedDesc(out)
}

// ByAnyTag returns notes carrying at least one of tags, ordered by how
// many of them match, then by most recent update.
func (n *Notes) ByAnyTag(tags []string) []model.Note {
	want := model.NormalizeTags(tags)
	if len(want) == 0 {
		return nil
	}
	type hit struct {
		note model.Note
		n    int
	}
	var hits []hit
	for _, note := range n.notes {
		if c := countTags(note, want); c > 0 {
			hits = append(hits, hit{note, c})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].n != hits[j].n {
			return hits[i].n > hits[j].n
		}
		return hits[i].note.UpdatedAt.After(hits[j].note.UpdatedAt)
	})
	out := make([]model.Note, len(hits))
	for i, h := range hits {
		out[i] = h.note
	}
	return out
}

func countTags(note model.Note, tags []string) int {
	c := 0
	for _, t := range tags {
		if note.HasTag(t) {
			c++
		}
	}
	return c
}

// NoteUpdate holds the fields to change; nil fields are kept.
type NoteUpdate struct {
	Content *string
	Title   *string
	Tags    *[]string
}

// Edit applies u to the note identified by id (or id prefix).
func (n *Notes) Edit(ctx context.Context, id string, u NoteUpdate) (model.Note, error) {
	i, err := n.index(id)
	if err != nil {
		return model.Note{}, err
	}
	note := n.notes[i]
	if u.Content != nil {
		if err := validate.Text(*u.Content); err != nil {
			return model.Note{}, err
		}
		note.Content = strings.TrimSpace(*u.Content)
	}
	if u.Title != nil {
		note.Title = validate.Sanitize(*u.Title)
	}
	if u.Tags != nil {
		note.Tags = model.NormalizeTags(*u.Tags)
	}
	note.UpdatedAt = n.now()
	return note, n.replace(ctx, i, note)
}

func (n *Notes) replace(ctx context.Context, i int, note model.Note) error {
	next := slices.Clone(n.notes)
	next[i] = note
	return n.commit(ctx, next)
}

// Delete removes the note identified by id (or id prefix) and returns it.
func (n *Notes) Delete(ctx context.Context, id string) (model.Note, error) {
	i, err := n.index(id)
	if err != nil {
		return model.Note{}, err
	}
	note := n.notes[i]
	next := slices.Delete(slices.Clone(n.notes), i, i+1)
	return note, n.commit(ctx, next)
}

// AddTag attaches tag to a note. A leading '#' is ignored.
func (n *Notes) AddTag(ctx context.Context, id, tag string) (model.Note, error) {
	tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
	if err := validate.Tag(tag); err != nil {
		return model.Note{}, err
	}
	i, err := n.index(id)
	if err != nil {
		return model.Note{}, err
	}
	note := n.notes[i]
	note.Tags = slices.Clone(note.Tags)
	if !note.AddTag(tag, n.now()) {
		return note, nil
	}
	return note, n.replace(ctx, i, note)
}

// RemoveTag detaches tag from a note. Removing an absent tag is a no-op.
func (n *Notes) RemoveTag(ctx context.Context, id, tag string) (model.Note, error) {
	i, err := n.index(id)
	if err != nil {
		return model.Note{}, err
	}
	note := n.notes[i]
	note.Tags = slices.Clone(note.Tags)
	if !note.RemoveTag(tag, n.now()) {
		return note, nil
	}
	return note, n.replace(ctx, i, note)
}

// Tags returns every tag in use, sorted.
func (n *Notes) Tags() []string {
	seen := make(map[string]bool)
	var out []string
	for _, note := range n.notes {
		for _, t := range note.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	sort.Strings(out)
	return out
}

// TagCount pairs a tag with the number of notes carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagCounts returns every tag with its note count, most used first, ties
// alphabetical.
func (n *Notes) TagCounts() []TagCount {
	counts := tagCounts(n.notes)
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Tag < counts[j].Tag
	})
	return counts
}

// tagCounts counts tags in first-seen order.
func tagCounts(notes []model.Note) []TagCount {
	pos := make(map[string]int)
	var counts []TagCount
	for _, note := range notes {
		for _, t := range note.Tags {
			i, ok := pos[t]
			if !ok {
				i = len(counts)
				pos[t] = i
				counts = append(counts, TagCount{Tag: t})
			}
			counts[i].Count++
		}
	}
	return counts
}

// All returns every note, most recently updated first.
func (n *Notes) All() []model.Note {
	return byUpdatedDesc(slices.Clone(n.notes))
}

// Count returns the number of notes.
func (n *Notes) Count() int {
	return len(n.notes)
}

// SortByCreated returns every note ordered by creation time, oldest first
// when asc is true.
func (n *Notes) SortByCreated(asc bool) []model.Note {
	out := slices.Clone(n.notes)
	sort.SliceStable(out, func(i, j int) bool {
		if asc {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// SortByTagCount returns every note ordered by number of tags, most first.
func (n *Notes) SortByTagCount() []model.Note {
	out := slices.Clone(n.notes)
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].Tags) > len(out[j].Tags) })
	return out
}

// Stats summarizes the current notes.
func (n *Notes) Stats() NoteStats {
	return ComputeNoteStats(n.notes)
}
