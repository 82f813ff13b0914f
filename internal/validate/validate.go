// Package validate checks and normalizes user-supplied field values:
// Ukrainian mobile numbers, email addresses, names, tags and free text.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Error describes why a field value was rejected.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

func invalid(field, format string, a ...any) error {
	return &Error{Field: field, Message: fmt.Sprintf(format, a...)}
}

// Length limits.
const (
	MinNameLen = 2
	MaxNameLen = 100
	MinTagLen  = 2
	MaxTagLen  = 30
	MaxTextLen = 10000
)

var (
	namePattern = regexp.MustCompile(`^[a-zA-Zа-яА-ЯіїєґІЇЄҐ\s\-']+$`)
	tagPattern  = regexp.MustCompile(`^[a-zA-Z0-9\-]+$`)
)

// Name checks a person's name: 2 to 100 characters of Latin or Cyrillic
// letters, spaces, hyphens and apostrophes.
func Name(name string) error {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	switch {
	case name == "":
		return invalid("name", "name cannot be empty")
	case n < MinNameLen:
		return invalid("name", "name must be at least %d characters", MinNameLen)
	case n > MaxNameLen:
		return invalid("name", "name must not exceed %d characters", MaxNameLen)
	case !namePattern.MatchString(name):
		return invalid("name", "name can only contain letters, spaces, hyphens, and apostrophes")
	}
	return nil
}

// Tag checks a single tag: 2 to 30 characters of letters, digits and
// hyphens.
func Tag(tag string) error {
	tag = strings.TrimSpace(tag)
	switch {
	case tag == "":
		return invalid("tag", "tag cannot be empty")
	case len(tag) < MinTagLen:
		return invalid("tag", "tag must be at least %d characters", MinTagLen)
	case len(tag) > MaxTagLen:
		return invalid("tag", "tag must not exceed %d characters", MaxTagLen)
	case strings.ContainsAny(tag, " \t"):
		return invalid("tag", "tag cannot contain spaces")
	case !tagPattern.MatchString(tag):
		return invalid("tag", "tag can only contain letters, numbers, and hyphens")
	}
	return nil
}

// Text checks free text such as note content: non-empty after trimming
// and at most MaxTextLen characters.
func Text(text string) error {
	text = strings.TrimSpace(text)
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return invalid("text", "text cannot be empty")
	}
	if n > MaxTextLen {
		return invalid("text", "text must not exceed %d characters (current: %d)", MaxTextLen, n)
	}
	return nil
}

// Sanitize trims s, drops NUL bytes and collapses whitespace runs to a
// single space.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.Join(strings.Fields(s), " ")
}
