package service

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/TiredRebel/personal-assistant/internal/model"
)

// MaxTagSuggestions caps SuggestTags.
const MaxTagSuggestions = 5

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"being": true, "have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "should": true, "could": true,
	"may": true, "might": true, "must": true, "can": true, "to": true, "from": true,
	"in": true, "on": true, "at": true, "by": true, "for": true, "with": true,
	"about": true, "of": true, "as": true, "into": true, "through": true,
	"during": true, "before": true, "after": true, "this": true, "that": true,
	"these": true, "those": true, "i": true, "you": true, "he": true, "she": true,
	"it": true, "we": true, "they": true, "me": true, "him": true, "her": true,
	"us": true, "them": true, "my": true, "your": true,
}

// SuggestTags picks up to MaxTagSuggestions of the existing tags that
// appear in content, either as a keyword or as a substring. Suggestions
// keep the order of existing.
func SuggestTags(content string, existing []string) []string {
	if strings.TrimSpace(content) == "" || len(existing) == 0 {
		return nil
	}
	lower := strings.ToLower(content)
	keywords := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(lower, -1) {
		if !stopwords[w] && utf8.RuneCountInString(w) > 2 {
			keywords[w] = true
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, tag := range existing {
		t := strings.ToLower(tag)
		if t == "" || seen[t] {
			continue
		}
		if keywords[t] || strings.Contains(lower, t) {
			seen[t] = true
			out = append(out, tag)
			if len(out) == MaxTagSuggestions {
				break
			}
		}
	}
	return out
}

// NoteStats summarizes a note collection.
type NoteStats struct {
	TotalNotes        int        `json:"total_notes"`
	TotalTags         int        `json:"total_tags"`
	AvgTagsPerNote    float64    `json:"avg_tags_per_note"`
	NotesWithoutTags  int        `json:"notes_without_tags"`
	NotesWithTitle    int        `json:"notes_with_title"`
	NotesWithoutTitle int        `json:"notes_without_title"`
	MostUsedTags      []TagCount `json:"most_used_tags"`
}

// ComputeNoteStats builds NoteStats over notes. MostUsedTags holds the five
// most frequent tags; ties keep first-seen order.
func ComputeNoteStats(notes []model.Note) NoteStats {
	st := NoteStats{TotalNotes: len(notes), MostUsedTags: []TagCount{}}
	if len(notes) == 0 {
		return st
	}
	total := 0
	for _, n := range notes {
		total += len(n.Tags)
		if len(n.Tags) == 0 {
			st.NotesWithoutTags++
		}
		if n.Title != "" {
			st.NotesWithTitle++
		}
	}
	st.NotesWithoutTitle = st.TotalNotes - st.NotesWithTitle
	st.AvgTagsPerNote = math.Round(float64(total)/float64(len(notes))*100) / 100

	counts := tagCounts(notes)
	st.TotalTags = len(counts)
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if len(counts) > 5 {
		counts = counts[:5]
	}
	st.MostUsedTags = append(st.MostUsedTags, counts...)
	return st
}
