// Package model defines the records the assistant stores: contacts (people
// with a phone and optional email, address and birthday) and notes (text
// with a title and tags).
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and display form of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day, held at UTC midnight.
type Date struct {
	time.Time
}

// NewDate returns the date for year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: want YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD", "" or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(*s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Contact is an address book entry. Phone is stored normalized.
type Contact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address,omitempty"`
	Birthday *Date  `json:"birthday,omitempty"`
}

// Validate checks the required fields.
func (c Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("contact name cannot be empty")
	}
	if c.Phone == "" {
		return errors.New("contact phone cannot be empty")
	}
	return nil
}

// DaysUntilBirthday returns the number of days from today until the next
// birthday, 0 when it is today. A Feb 29 birthday is celebrated on Mar 1
// in common years. It returns false when no birthday is set.
func (c Contact) DaysUntilBirthday(today time.Time) (int, bool) {
	if c.Birthday == nil || c.Birthday.IsZero() {
		return 0, false
	}
	from := DateOf(today)
	next := NewDate(from.Year(), c.Birthday.Month(), c.Birthday.Day())
	if next.Before(from.Time) {
		next = NewDate(from.Year()+1, c.Birthday.Month(), c.Birthday.Day())
	}
	return int(next.Sub(from.Time).Hours() / 24), true
}
