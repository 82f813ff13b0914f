package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyContent is returned when a note would have no content.
var ErrEmptyContent = errors.New("note content cannot be empty")

// Note is a free-text note. Tags are always normalized: trimmed,
// lowercased, without empties or duplicates.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewNote creates a note with a fresh UUID and both timestamps set to now.
func NewNote(content, title string, tags []string, now time.Time) (Note, error) {
	if strings.TrimSpace(content) == "" {
		return Note{}, ErrEmptyContent
	}
	return Note{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   content,
		Tags:      NormalizeTags(tags),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NormalizeTags lowercases and trims tags, dropping empties and repeats
// while keeping first-seen order. A leading '#' is removed.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = normalizeTag(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func normalizeTag(t string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(t)), "#")
}

// SplitTags splits a comma-separated tag list and normalizes it.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return NormalizeTags(strings.Split(s, ","))
}

// ShortID is the first eight characters of the id, used for display.
func (n Note) ShortID() string {
	if len(n.ID) > 8 {
		return n.ID[:8]
	}
	return n.ID
}

// HasTag reports whether the note carries tag.
func (n Note) HasTag(tag string) bool {
	return slices.Contains(n.Tags, normalizeTag(tag))
}

// AddTag adds tag and bumps UpdatedAt. It reports whether the note changed.
func (n *Note) AddTag(tag string, now time.Time) bool {
	tag = normalizeTag(tag)
	if tag == "" || slices.Contains(n.Tags, tag) {
		return false
	}
	n.Tags = append(n.Tags, tag)
	n.UpdatedAt = now
	return true
}

// RemoveTag removes tag and bumps UpdatedAt. It reports whether the note
// changed.
func (n *Note) RemoveTag(tag string, now time.Time) bool {
	i := slices.Index(n.Tags, normalizeTag(tag))
	if i < 0 {
		return false
	}
	n.Tags = slices.Delete(n.Tags, i, i+1)
	n.UpdatedAt = now
	return true
}

// Validate checks the required fields.
func (n Note) Validate() error {
	if n.ID == "" {
		return errors.New("note id cannot be empty")
	}
	if strings.TrimSpace(n.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// Layouts accepted when reading note timestamps. Older files carry local
// times without a zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// UnmarshalJSON reads a note, accepting zoned or zoneless timestamps and
// normalizing tags.
func (n *Note) UnmarshalJSON(b []byte) error {
	type wire struct {
		ID        string   `json:"id"`
		Title     *string  `json:"title"`
		Content   string   `json:"content"`
		Tags      []string `json:"tags"`
		CreatedAt string   `json:"created_at"`
		UpdatedAt string   `json:"updated_at"`
	}
	var w wire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	note := Note{ID: w.ID, Content: w.Content, Tags: NormalizeTags(w.Tags)}
	if w.Title != nil {
		note.Title = *w.Title
	}
	var err error
	if note.CreatedAt, err = parseTimestamp(w.CreatedAt); err != nil {
		return fmt.Errorf("note %s created_at: %w", w.ID, err)
	}
	if note.UpdatedAt, err = parseTimestamp(w.UpdatedAt); err != nil {
		return fmt.Errorf("note %s updated_at: %w", w.ID, err)
	}
	*n = note
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
