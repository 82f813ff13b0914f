package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/TiredRebel/personal-assistant/internal/cmdparse"
	"github.com/TiredRebel/personal-assistant/internal/intent"
	"github.com/TiredRebel/personal-assistant/internal/model"
	"github.com/TiredRebel/personal-assistant/internal/service"
	"github.com/TiredRebel/personal-assistant/internal/validate"
)

// looksLikePhone reports whether a positional value should be read as a
// phone number: it starts with '+' or a digit.
func looksLikePhone(v string) bool {
	if v == "" {
		return false
	}
	return v[0] == '+' || unicode.IsDigit(rune(v[0]))
}

// classifyContact sorts positional values into contact fields. Words seen
// before a phone or email form the name; later words form the address.
func classifyContact(values []string) model.Contact {
	var c model.Contact
	var name, address []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		switch {
		case c.Phone == "" && looksLikePhone(v):
			c.Phone = v
		case c.Email == "" && strings.Contains(v, "@"):
			c.Email = v
		case c.Phone == "" && c.Email == "":
			name = append(name, v)
		default:
			address = append(address, v)
		}
	}
	c.Name = strings.Join(name, " ")
	c.Address = strings.Join(address, " ")
	return c
}

// parseBirthday reads an optional date, warning and skipping when it is
// malformed.
func (s *Session) parseBirthday(v string) *model.Date {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	d, err := model.ParseDate(v)
	if err != nil {
		s.ui.Warn("Invalid date format. Skipping birthday.")
		return nil
	}
	return &d
}

func (s *Session) addContact(ctx context.Context, args cmdparse.Args, line string) error {
	s.ui.Heading("Add New Contact")

	c := classifyContact(args.Values())
	if v, ok := args.Text("email"); ok {
		c.Email = v
	}
	if v, ok := args.Text("address"); ok {
		c.Address = v
	}
	if v, ok := args.Text("phone"); ok {
		c.Phone = v
	}
	if v, ok := args.Text("name"); ok {
		c.Name = v
	}
	if c.Name == "" || c.Phone == "" {
		params := intent.ExtractParameters(cmdparse.StripOptions(line))
		if c.Name == "" {
			c.Name = params.String(intent.ParamName)
		}
		if phone := params.String(intent.ParamPhone); c.Phone == "" && validate.Phone(phone) == nil {
			c.Phone = phone
		}
		if c.Email == "" {
			c.Email = params.String(intent.ParamEmail)
		}
	}

	detected := c.Name != "" || c.Phone != ""
	if detected {
		fmt.Fprintln(s.out, "\nDetected information:")
		for _, f := range [][2]string{{"Name", c.Name}, {"Phone", c.Phone}, {"Email", c.Email}, {"Address", c.Address}} {
			if f[1] != "" {
				fmt.Fprintf(s.out, "  %-8s %s\n", f[0]+":", f[1])
			}
		}
	}

	var err error
	if c.Name == "" {
		if c.Name, err = s.ask("Name: "); err != nil {
			return err
		}
	}
	if c.Phone == "" {
		if c.Phone, err = s.ask("Phone: "); err != nil {
			return err
		}
	}
	birthday, _ := args.Text("birthday")
	if !detected {
		if c.Email == "" {
			if c.Email, err = s.ask("Email (optional): "); err != nil {
				return err
			}
		}
		if c.Address == "" {
			if c.Address, err = s.ask("Address (optional): "); err != nil {
				return err
			}
		}
		if birthday == "" {
			if birthday, err = s.ask("Birthday (YYYY-MM-DD, optional): "); err != nil {
				return err
			}
		}
	}
	c.Birthday = s.parseBirthday(birthday)

	added, err := s.contacts.Add(ctx, c)
	if err != nil {
		return fmt.Errorf("add contact: %w", err)
	}
	s.ui.Success("Contact '%s' added successfully!", added.Name)
	s.displayContact(added)
	return nil
}

func (s *Session) searchContact(ctx context.Context, args cmdparse.Args, line string) error {
	query := strings.Join(args.Values(), " ")
	if query == "" {
		query = args.String(cmdparse.QueryKey)
	}
	if query == "" {
		query = intent.ExtractParameters(line).String(intent.ParamName)
	}
	if query == "" {
		var err error
		if query, err = s.ask("Search query: "); err != nil {
			return err
		}
	}
	if query == "" {
		return errors.New("search query cannot be empty")
	}

	results := s.contacts.Search(query)
	if s.json {
		return s.writeJSON(nonNil(results))
	}
	s.ui.Heading("Search Contacts")
	if len(results) == 0 {
		s.ui.Warn("No contacts found matching '%s'", query)
		return nil
	}
	s.ui.Success("Found %s:", plural(len(results), "contact"))
	return s.contactsTable(results)
}

func (s *Session) listContacts(ctx context.Context, args cmdparse.Args, line string) error {
	all := s.contacts.All()
	if s.json {
		return s.writeJSON(all)
	}
	s.ui.Heading("All Contacts")
	if len(all) == 0 {
		s.ui.Warn("No contacts in address book")
		return nil
	}
	if err := s.contactsTable(all); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "\nTotal: %s\n", plural(len(all), "contact"))
	return nil
}

func (s *Session) editContact(ctx context.Context, args cmdparse.Args, line string) error {
	s.ui.Heading("Edit Contact")

	name := strings.Join(args.Values(), " ")
	if name == "" {
		var err error
		if name, err = s.ask("Contact name to edit: "); err != nil {
			return err
		}
	}
	if name == "" {
		return nil
	}

	fields := map[string]string{}
	for _, key := range []string{"name", "phone", "email", "address", "birthday"} {
		if v, ok := args.Text(key); ok && v != "" {
			fields[key] = v
		}
	}

	if len(fields) == 0 {
		current, err := s.contacts.Get(name)
		if err != nil {
			return contactErr(name, err)
		}
		fmt.Fprintln(s.out, "\nCurrent contact information:")
		s.displayContact(current)
		fmt.Fprintln(s.out, "\nEnter new values (press Enter to keep current value):")

		prompts := []struct{ key, label, current string }{
			{"name", "Name", current.Name},
			{"phone", "Phone", current.Phone},
			{"email", "Email", current.Email},
			{"address", "Address", current.Address},
			{"birthday", "Birthday (YYYY-MM-DD)", dateString(current.Birthday)},
		}
		for _, p := range prompts {
			v, err := s.askDefault(p.label, p.current)
			if err != nil {
				return err
			}
			if v != "" {
				fields[p.key] = v
			}
		}
	}

	var u service.ContactUpdate
	for key, v := range fields {
		switch key {
		case "name":
			u.Name = &v
		case "phone":
			u.Phone = &v
		case "email":
			u.Email = &v
		case "address":
			u.Address = &v
		case "birthday":
			u.Birthday = s.parseBirthday(v)
		}
	}
	if u.Empty() {
		s.ui.Warn("Nothing to change")
		return nil
	}

	updated, err := s.contacts.Edit(ctx, name, u)
	if err != nil {
		return contactErr(name, err)
	}
	s.ui.Success("Contact '%s' updated successfully!", updated.Name)
	s.displayContact(updated)
	return nil
}

func (s *Session) deleteContact(ctx context.Context, args cmdparse.Args, line string) error {
	s.ui.Heading("Delete Contact")

	name := strings.Join(args.Values(), " ")
	if name == "" {
		var err error
		if name, err = s.ask("Contact name to delete: "); err != nil {
			return err
		}
	}
	if name == "" {
		return nil
	}

	ok, err := s.confirm(fmt.Sprintf("Are you sure you want to delete '%s'?", name))
	if err != nil {
		return err
	}
	if !ok {
		s.ui.Warn("Deletion cancelled")
		return nil
	}
	if err := s.contacts.Delete(ctx, name); err != nil {
		return contactErr(name, err)
	}
	s.ui.Success("Contact '%s' deleted successfully", name)
	return nil
}

func (s *Session) birthdays(ctx context.Context, args cmdparse.Args, line string) error {
	days := s.birthdayDays
	if v, ok := args.Text("days"); ok {
		n, err := parsePositive(v)
		if err != nil {
			return fmt.Errorf("--days: %w", err)
		}
		days = n
	}

	upcoming := s.contacts.UpcomingBirthdays(days, s.now())
	if s.json {
		return s.writeJSON(nonNil(upcoming))
	}
	s.ui.Heading("Upcoming Birthdays")
	if len(upcoming) == 0 {
		s.ui.Warn("No birthdays in the next %d days", days)
		return nil
	}
	fmt.Fprintf(s.out, "\nBirthdays in the next %d days:\n", days)
	for _, u := range upcoming {
		when := "today"
		if u.Days > 0 {
			when = fmt.Sprintf("in %d day(s)", u.Days)
		}
		fmt.Fprintf(s.out, "  • %s: %s (%s)\n", u.Contact.Name, when, u.Contact.Birthday)
	}
	return nil
}

func (s *Session) displayContact(c model.Contact) {
	fmt.Fprintf(s.out, "\nName:     %s\n", c.Name)
	fmt.Fprintf(s.out, "Phone:    %s\n", validate.FormatPhone(c.Phone))
	if c.Email != "" {
		fmt.Fprintf(s.out, "Email:    %s\n", c.Email)
	}
	if c.Address != "" {
		fmt.Fprintf(s.out, "Address:  %s\n", c.Address)
	}
	if days, ok := c.DaysUntilBirthday(s.now()); ok {
		fmt.Fprintf(s.out, "Birthday: %s\n", c.Birthday)
		fmt.Fprintln(s.out, s.ui.Faint(fmt.Sprintf("          (%d days until birthday)", days)))
	}
}

func (s *Session) contactsTable(contacts []model.Contact) error {
	fmt.Fprintln(s.out)
	tbl := NewTable(s.out, s.ui.color, "NAME", "PHONE", "EMAIL", "BIRTHDAY")
	nameWidth, emailWidth := tbl.Width()*3/8, tbl.Width()*7/16
	for _, c := range contacts {
		tbl.Row(truncate(c.Name, nameWidth), validate.FormatPhone(c.Phone), truncate(c.Email, emailWidth), dateString(c.Birthday))
	}
	return tbl.Flush()
}

// contactErr turns service errors into the messages shown to the user.
func contactErr(name string, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fmt.Errorf("contact '%s' not found", name)
	case errors.Is(err, service.ErrDuplicate):
		return fmt.Errorf("a contact with that name already exists")
	default:
		return err
	}
}

func dateString(d *model.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// nonNil turns a nil slice into an empty one so JSON output is [] not null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
