// Package service implements the contact book and note keeping on top of a
// store.Store. Services keep the loaded collection in memory and write the
// whole collection back after every change. They are not safe for
// concurrent use.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/TiredRebel/personal-assistant/internal/model"
	"github.com/TiredRebel/personal-assistant/internal/store"
	"github.com/TiredRebel/personal-assistant/internal/validate"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
	ErrAmbiguous = errors.New("ambiguous")
)

// Contacts manages the address book.
type Contacts struct {
	store    store.Store
	contacts []model.Contact
}

// NewContacts loads the stored contacts.
func NewContacts(ctx context.Context, st store.Store) (*Contacts, error) {
	contacts, err := st.LoadContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	return &Contacts{store: st, contacts: contacts}, nil
}

func (c *Contacts) commit(ctx context.Context, next []model.Contact) error {
	if err := c.store.SaveContacts(ctx, next); err != nil {
		return fmt.Errorf("save contacts: %w", err)
	}
	c.contacts = next
	return nil
}

func (c *Contacts) index(name string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, ct := range c.contacts {
		if strings.ToLower(ct.Name) == name {
			return i
		}
	}
	return -1
}

// Add validates and stores a new contact. The phone is normalized to
// +380XXXXXXXXX and the email lowercased. Names are unique regardless of
// case.
func (c *Contacts) Add(ctx context.Context, in model.Contact) (model.Contact, error) {
	in.Name = validate.Sanitize(in.Name)
	if err := validate.Name(in.Name); err != nil {
		return model.Contact{}, err
	}
	phone, err := validate.NormalizePhone(in.Phone)
	if err != nil {
		return model.Contact{}, err
	}
	in.Phone = phone
	if strings.TrimSpace(in.Email) != "" {
		if err := validate.Email(in.Email); err != nil {
			return model.Contact{}, err
		}
		in.Email = validate.NormalizeEmail(in.Email)
	} else {
		in.Email = ""
	}
	in.Address = validate.Sanitize(in.Address)

	if c.index(in.Name) >= 0 {
		return model.Contact{}, fmt.Errorf("contact %q: %w", in.Name, ErrDuplicate)
	}
	next := append(slices.Clone(c.contacts), in)
	if err := c.commit(ctx, next); err != nil {
		return model.Contact{}, err
	}
	return in, nil
}

// Search returns contacts whose name, phone or email contains query,
// ignoring case. A blank query matches nothing.
func (c *Contacts) Search(query string) []model.Contact {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	var out []model.Contact
	for _, ct := range c.contacts {
		if strings.Contains(strings.ToLower(ct.Name), query) ||
			strings.Contains(strings.ToLower(ct.Phone), query) ||
			strings.Contains(strings.ToLower(ct.Email), query) {
			out = append(out, ct)
		}
	}
	return out
}

// Get returns the contact with the given name, ignoring case.
func (c *Contacts) Get(name string) (model.Contact, error) {
	i := c.index(name)
	if i < 0 {
		return model.Contact{}, fmt.Errorf("contact %q: %w", name, ErrNotFound)
	}
	return c.contacts[i], nil
}

// ContactUpdate holds the fields to change; nil fields are kept. An empty
// Address clears it.
type ContactUpdate struct {
	Name     *string
	Phone    *string
	Email    *string
	Address  *string
	Birthday *model.Date
}

// Empty reports whether u changes nothing.
func (u ContactUpdate) Empty() bool {
	return u.Name == nil && u.Phone == nil && u.Email == nil && u.Address == nil && u.Birthday == nil
}

// Edit applies u to the contact called name.
func (c *Contacts) Edit(ctx context.Context, name string, u ContactUpdate) (model.Contact, error) {
	i := c.index(name)
	if i < 0 {
		return model.Contact{}, fmt.Errorf("contact %q: %w", name, ErrNotFound)
	}
	ct := c.contacts[i]

	if u.Phone != nil {
		phone, err := validate.NormalizePhone(*u.Phone)
		if err != nil {
			return model.Contact{}, err
		}
		ct.Phone = phone
	}
	if u.Email != nil {
		if strings.TrimSpace(*u.Email) == "" {
			ct.Email = ""
		} else {
			if err := validate.Email(*u.Email); err != nil {
				return model.Contact{}, err
			}
			ct.Email = validate.NormalizeEmail(*u.Email)
		}
	}
	if u.Name != nil {
		newName := validate.Sanitize(*u.Name)
		if err := validate.Name(newName); err != nil {
			return model.Contact{}, err
		}
		if j := c.index(newName); j >= 0 && j != i {
			return model.Contact{}, fmt.Errorf("contact %q: %w", newName, ErrDuplicate)
		}
		ct.Name = newName
	}
	if u.Address != nil {
		ct.Address = validate.Sanitize(*u.Address)
	}
	if u.Birthday != nil {
		b := *u.Birthday
		ct.Birthday = &b
	}

	next := slices.Clone(c.contacts)
	next[i] = ct
	if err := c.commit(ctx, next); err != nil {
		return model.Contact{}, err
	}
	return ct, nil
}

// Delete removes the contact called name.
func (c *Contacts) Delete(ctx context.Context, name string) error {
	i := c.index(name)
	if i < 0 {
		return fmt.Errorf("contact %q: %w", name, ErrNotFound)
	}
	next := slices.Delete(slices.Clone(c.contacts), i, i+1)
	return c.commit(ctx, next)
}

// Upcoming pairs a contact with the days left until their birthday.
type Upcoming struct {
	Contact model.Contact `json:"contact"`
	Days    int           `json:"days"`
}

// UpcomingBirthdays returns contacts whose next birthday is at most days
// away from today, soonest first.
func (c *Contacts) UpcomingBirthdays(days int, today time.Time) []Upcoming {
	var out []Upcoming
	for _, ct := range c.contacts {
		if d, ok := ct.DaysUntilBirthday(today); ok && d <= days {
			out = append(out, Upcoming{Contact: ct, Days: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Days < out[j].Days })
	return out
}

// All returns a copy of every contact in stored order.
func (c *Contacts) All() []model.Contact {
	return slices.Clone(c.contacts)
}

// Count returns the number of contacts.
func (c *Contacts) Count() int {
	return len(c.contacts)
}
