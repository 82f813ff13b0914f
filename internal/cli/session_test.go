package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/TiredRebel/personal-assistant/internal/command"
	"github.com/TiredRebel/personal-assistant/internal/model"
	"github.com/TiredRebel/personal-assistant/internal/service"
	"github.com/TiredRebel/personal-assistant/internal/store"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local)

// newTestSession returns a session over a fresh JSON store in a temp dir.
// input feeds both command lines and prompt answers.
func newTestSession(t *testing.T, input string, interactive bool) (*Session, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()
	st, err := store.NewJSONStore(t.TempDir(), 0, nil)
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	contacts, err := service.NewContacts(ctx, st)
	if err != nil {
		t.Fatalf("NewContacts: %v", err)
	}
	notes, err := service.NewNotes(ctx, st)
	if err != nil {
		t.Fatalf("NewNotes: %v", err)
	}

	var out bytes.Buffer
	matcher := command.NewMatcher(command.DefaultTable(), command.DefaultOptions(), nil)
	s := NewSession(SessionConfig{
		In:             strings.NewReader(input),
		Out:            &out,
		Learner:        command.NewLearner(matcher, 0),
		Contacts:       contacts,
		Notes:          notes,
		Interactive:    interactive,
		BirthdayDays:   7,
		MaxSuggestions: 3,
	})
	s.now = func() time.Time { return testNow }
	return s, &out
}

func mustExecute(t *testing.T, s *Session, line string) {
	t.Helper()
	if err := s.Execute(context.Background(), line); err != nil {
		t.Fatalf("Execute(%q): %v", line, err)
	}
}

func TestSessionRunScript(t *testing.T) {
	input := `add contact "John Doe" +380501234567
list contacts
exit
list notes
`
	s, out := newTestSession(t, input, false)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"Contact 'John Doe' added successfully!",
		"+380 50 123 45 67",
		"Total: 1 contact(s)",
		"Goodbye!",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "No notes available") {
		t.Error("lines after exit should not run")
	}
	if !s.Done() {
		t.Error("Done() = false after exit")
	}
}

func TestSessionRunInteractive(t *testing.T) {
	s, out := newTestSession(t, "stats\n", true)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Personal Assistant", "Enter command: ", "Statistics", "\nGoodbye!"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if s.Done() {
		t.Error("end of input is not exit")
	}
}

func TestSessionNotRecognized(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"lst", "Did you mean:"},
		{"zzz123 qqqq", "Type 'help' for available commands"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s, out := newTestSession(t, "", false)
			err := s.Execute(context.Background(), tt.line)
			if !errors.Is(err, errNotRecognized) {
				t.Fatalf("err = %v, want errNotRecognized", err)
			}
			got := out.String()
			if !strings.Contains(got, "Command not recognized: '"+tt.line+"'") {
				t.Errorf("missing error line:\n%s", got)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("missing %q in:\n%s", tt.want, got)
			}
		})
	}
}

func TestSessionBlankLine(t *testing.T) {
	s, out := newTestSession(t, "", false)
	mustExecute(t, s, "   ")
	if out.Len() != 0 {
		t.Errorf("blank line printed %q", out.String())
	}
}

func TestSessionUsage(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"add-contact --help", "Usage: add-contact"},
		{"help add note", "add-note - Create a new note"},
		{"help list-tags", "Usage: list-tags"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s, out := newTestSession(t, "", false)
			mustExecute(t, s, tt.line)
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("missing %q in:\n%s", tt.want, out.String())
			}
			if s.contacts.Count() != 0 {
				t.Error("usage request ran the command")
			}
		})
	}
}

func TestSessionHelpShowsMostUsed(t *testing.T) {
	s, out := newTestSession(t, "", false)
	mustExecute(t, s, "list contacts")
	mustExecute(t, s, "show contacts")
	out.Reset()

	mustExecute(t, s, "help")
	got := out.String()
	for _, want := range []string{"Available Commands:", "search-by-tag", "Your most used commands:", "list-contacts (2)"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestSessionAddContactPrompts(t *testing.T) {
	input := "Mary Major\n0671234567\nmary@example.com\n\n1990-13-40\n"
	s, out := newTestSession(t, input, false)
	mustExecute(t, s, "add contact")

	got := out.String()
	if !strings.Contains(got, "Invalid date format. Skipping birthday.") {
		t.Errorf("bad birthday not reported:\n%s", got)
	}
	c, err := s.contacts.Get("mary major")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c.Phone != "+380671234567" || c.Email != "mary@example.com" || c.Birthday != nil {
		t.Errorf("contact = %+v", c)
	}
}

func TestSessionAddContactInvalidPhone(t *testing.T) {
	s, out := newTestSession(t, "", false)
	err := s.Execute(context.Background(), `add contact "Bad Number" 12345`)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(out.String(), "✗ add contact:") {
		t.Errorf("error not printed:\n%s", out.String())
	}
	if s.contacts.Count() != 0 {
		t.Error("invalid contact was stored")
	}
}

func TestSessionAddContactOptionsDoNotFillPhone(t *testing.T) {
	tests := []struct {
		line  string
		check func(model.Contact) bool
	}{
		{
			line:  `add contact "John Doe" --birthday 1990-05-15`,
			check: func(c model.Contact) bool { return dateString(c.Birthday) == "1990-05-15" },
		},
		{
			line:  `add contact "John Doe" --address "Khreshchatyk 22, 01001 Kyiv"`,
			check: func(c model.Contact) bool { return c.Address == "Khreshchatyk 22, 01001 Kyiv" },
		},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s, _ := newTestSession(t, "+380501234567\n", false)
			mustExecute(t, s, tt.line)

			c, err := s.contacts.Get("John Doe")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if c.Phone != "+380501234567" || !tt.check(c) {
				t.Errorf("contact = %+v", c)
			}
		})
	}
}

func TestSessionAddContactDropsInvalidDetectedPhone(t *testing.T) {
	s, _ := newTestSession(t, "0501234567\n", false)
	mustExecute(t, s, `add contact Jane jane@example.com "Flat 12 - 345"`)

	c, err := s.contacts.Get("Jane")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c.Phone != "+380501234567" || c.Address != "Flat 12 - 345" || c.Email != "jane@example.com" {
		t.Errorf("contact = %+v", c)
	}
}

func TestSessionAddContactDuplicate(t *testing.T) {
	s, _ := newTestSession(t, "", false)
	mustExecute(t, s, `add contact "John Doe" 0501234567`)
	if err := s.Execute(context.Background(), `add contact "john doe" 0671234567`); err == nil {
		t.Fatal("expected duplicate error")
	}
	if s.contacts.Count() != 1 {
		t.Errorf("Count = %d, want 1", s.contacts.Count())
	}
}

func TestSessionContactLifecycle(t *testing.T) {
	s, out := newTestSession(t, "no\ny\n", false)
	mustExecute(t, s, `add contact "John Doe" 0501234567 --address "Kyiv, Main St 1"`)

	out.Reset()
	mustExecute(t, s, "find contact john")
	if !strings.Contains(out.String(), "Found 1 contact(s):") || !strings.Contains(out.String(), "John Doe") {
		t.Errorf("search output:\n%s", out.String())
	}

	out.Reset()
	mustExecute(t, s, "edit contact John Doe --email john@example.com")
	if !strings.Contains(out.String(), "Contact 'John Doe' updated successfully!") {
		t.Errorf("edit output:\n%s", out.String())
	}
	c, _ := s.contacts.Get("John Doe")
	if c.Email != "john@example.com" || c.Address != "Kyiv, Main St 1" {
		t.Errorf("after edit = %+v", c)
	}

	out.Reset()
	mustExecute(t, s, "delete contact John Doe")
	if !strings.Contains(out.String(), "Deletion cancelled") || s.contacts.Count() != 1 {
		t.Errorf("answer no should keep the contact:\n%s", out.String())
	}

	out.Reset()
	mustExecute(t, s, "delete contact John Doe")
	if !strings.Contains(out.String(), "Contact 'John Doe' deleted successfully") || s.contacts.Count() != 0 {
		t.Errorf("answer y should delete:\n%s", out.String())
	}
}

func TestSessionListContactsTruncatesToWidth(t *testing.T) {
	s, out := newTestSession(t, "", false)
	mustExecute(t, s, `add contact "Alexandra Konstantinopolska-Wolkenstein" 0501234567 alexandra.konstantinopolska@example.com`)

	out.Reset()
	mustExecute(t, s, "list contacts")
	got := out.String()
	for _, want := range []string{"Alexandra Konstantinopolska...", "alexandra.konstantinopolska@exam..."} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Wolkenstein") {
		t.Errorf("name not truncated:\n%s", got)
	}
}

func TestSessionEditContactNotFound(t *testing.T) {
	s, _ := newTestSession(t, "", false)
	err := s.Execute(context.Background(), "edit contact Nobody --phone 0501234567")
	if err == nil || !strings.Contains(err.Error(), "contact 'Nobody' not found") {
		t.Errorf("err = %v", err)
	}
}

func TestSessionBirthdays(t *testing.T) {
	s, out := newTestSession(t, "", false)
	mustExecute(t, s, `add contact "Jane Roe" 0501234567 --birthday 1990-03-05`)
	mustExecute(t, s, `add contact "Late Person" 0671234567 --birthday 1985-04-20`)

	out.Reset()
	mustExecute(t, s, "birthdays")
	got := out.String()
	if !strings.Contains(got, "Jane Roe: in 4 day(s) (1990-03-05)") {
		t.Errorf("missing upcoming birthday:\n%s", got)
	}
	if strings.Contains(got, "Late Person") {
		t.Errorf("birthday outside the window listed:\n%s", got)
	}

	out.Reset()
	mustExecute(t, s, "birthdays --days 60")
	if !strings.Contains(out.String(), "Late Person") {
		t.Errorf("--days 60 should include April:\n%s", out.String())
	}

	if err := s.Execute(context.Background(), "birthdays --days 0"); err == nil {
		t.Error("--days 0 should fail")
	}
}

func TestSessionNoteLifecycle(t *testing.T) {
	s, out := newTestSession(t, "", false)
	mustExecute(t, s, `add note "Groceries" --content "milk and eggs" #home`)

	all := s.notes.All()
	if len(all) != 1 {
		t.Fatalf("notes = %d, want 1", len(all))
	}
	n := all[0]
	if n.Title != "Groceries" || !reflect.DeepEqual(n.Tags, []string{"home"}) {
		t.Errorf("note = %+v", n)
	}
	id := n.ShortID()

	out.Reset()
	mustExecute(t, s, "search note milk")
	if !strings.Contains(out.String(), "Found 1 note(s):") || !strings.Contains(out.String(), "Groceries") {
		t.Errorf("search output:\n%s", out.String())
	}

	out.Reset()
	mustExecute(t, s, "search note "+id)
	if !strings.Contains(out.String(), "Found note by ID:") {
		t.Errorf("id search output:\n%s", out.String())
	}

	out.Reset()
	mustExecute(t, s, "add tag "+id+" urgent")
	if !strings.Contains(out.String(), "Tag 'urgent' added to note "+id) {
		t.Errorf("add tag output:\n%s", out.String())
	}

	out.Reset()
	mustExecute(t, s, "search by tag home urgent")
	if !strings.Contains(out.String(), "Found 1 note(s) with tags: home, urgent") {
		t.Errorf("tag search output:\n%s", out.String())
	}

	out.Reset()
	mustExecute(t, s, "list tags")
	got := out.String()
	for _, want := range []string{"• home (1)", "• urgent (1)", "Total: 2 tag(s)"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}

	out.Reset()
	mustExecute(t, s, "remove tag "+id+" home")
	if !strings.Contains(out.String(), "Tag 'home' removed from note "+id) {
		t.Errorf("remove tag output:\n%s", out.String())
	}
	n, _ = s.notes.Get(id)
	if !reflect.DeepEqual(n.Tags, []string{"urgent"}) {
		t.Errorf("tags = %v, want [urgent]", n.Tags)
	}

	out.Reset()
	mustExecute(t, s, "edit note "+id+" --title Shopping")
	n, _ = s.notes.Get(id)
	if n.Title != "Shopping" || n.Content != "milk and eggs" {
		t.Errorf("after edit = %+v", n)
	}
}

// addTaggedNotes stores three notes with one, three and two tags, in that
// order.
func addTaggedNotes(t *testing.T, s *Session) {
	t.Helper()
	mustExecute(t, s, `add note Alpha --content "first" #one`)
	mustExecute(t, s, `add note Beta --content "second" #one #two #three`)
	mustExecute(t, s, `add note Gamma --content "third" #one #two`)
}

// assertTitleOrder fails unless titles appear in out in the given order.
func assertTitleOrder(t *testing.T, out string, titles ...string) {
	t.Helper()
	last := -1
	for _, title := range titles {
		i := strings.Index(out, "] "+title+"\n")
		if i < 0 {
			t.Fatalf("%s not listed:\n%s", title, out)
		}
		if i < last {
			t.Errorf("%s listed out of order, want %v:\n%s", title, titles, out)
		}
		last = i
	}
}

func TestSessionListNotesSort(t *testing.T) {
	s, out := newTestSession(t, "", false)
	addTaggedNotes(t, s)

	out.Reset()
	mustExecute(t, s, "list notes --sort oldest")
	assertTitleOrder(t, out.String(), "Alpha", "Beta", "Gamma")

	out.Reset()
	mustExecute(t, s, "list notes --sort tags")
	assertTitleOrder(t, out.String(), "Beta", "Gamma", "Alpha")
	if !strings.Contains(out.String(), "Total: 3 note(s)") {
		t.Errorf("output:\n%s", out.String())
	}

	err := s.Execute(context.Background(), "list notes --sort size")
	if err == nil || !strings.Contains(err.Error(), `unknown sort order "size"`) {
		t.Errorf("err = %v", err)
	}
}

func TestSessionSearchByTagMatch(t *testing.T) {
	s, out := newTestSession(t, "", false)
	addTaggedNotes(t, s)

	out.Reset()
	mustExecute(t, s, "search by tag two three")
	if !strings.Contains(out.String(), "Found 1 note(s) with tags: two, three") {
		t.Errorf("all-match output:\n%s", out.String())
	}

	out.Reset()
	mustExecute(t, s, "search by tag two three --match any")
	got := out.String()
	if !strings.Contains(got, "Found 2 note(s) with any of tags: two, three") {
		t.Errorf("any-match output:\n%s", got)
	}
	assertTitleOrder(t, got, "Beta", "Gamma")

	err := s.Execute(context.Background(), "search by tag two --match some")
	if err == nil || !strings.Contains(err.Error(), `unknown match mode "some"`) {
		t.Errorf("err = %v", err)
	}
}

func TestSessionListTagsMostUsedFirst(t *testing.T) {
	s, out := newTestSession(t, "", false)
	addTaggedNotes(t, s)

	out.Reset()
	mustExecute(t, s, "list tags")
	got := out.String()
	last := -1
	for _, want := range []string{"• one (3)", "• two (2)", "• three (1)"} {
		i := strings.Index(got, want)
		if i < 0 || i < last {
			t.Fatalf("want %q after previous tag in:\n%s", want, got)
		}
		last = i
	}
}

func TestSessionAddNoteJoinsTitleWords(t *testing.T) {
	s, _ := newTestSession(t, "", false)
	mustExecute(t, s, `add note Weekly team plan #work --content "agenda"`)

	all := s.notes.All()
	if len(all) != 1 {
		t.Fatalf("notes = %d, want 1", len(all))
	}
	if all[0].Title != "Weekly team plan" || !reflect.DeepEqual(all[0].Tags, []string{"work"}) {
		t.Errorf("note = %+v", all[0])
	}
}

func TestSessionAddNotePrompts(t *testing.T) {
	s, out := newTestSession(t, "Shopping\nbuy bread\nand butter\n.\nfood, errands\n", false)
	mustExecute(t, s, "add note")

	if !strings.Contains(out.String(), "Note created successfully!") {
		t.Fatalf("output:\n%s", out.String())
	}
	n := s.notes.All()[0]
	if n.Title != "Shopping" || n.Content != "buy bread\nand butter" {
		t.Errorf("note = %+v", n)
	}
	if !reflect.DeepEqual(n.Tags, []string{"food", "errands"}) {
		t.Errorf("tags = %v", n.Tags)
	}
}

func TestSessionAddNoteEmptyContent(t *testing.T) {
	s, _ := newTestSession(t, "\n.\n", false)
	err := s.Execute(context.Background(), "add note Empty")
	if err == nil || !strings.Contains(err.Error(), "content cannot be empty") {
		t.Errorf("err = %v", err)
	}
}

func TestSessionDeleteNoteChoosesAmongMatches(t *testing.T) {
	s, out := newTestSession(t, "2\ny\n", false)
	ctx := context.Background()
	for _, content := range []string{"meeting alpha", "meeting beta"} {
		if _, err := s.notes.Create(ctx, content, "", nil); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	mustExecute(t, s, "delete note meeting")
	got := out.String()
	if !strings.Contains(got, "Multiple notes found. Please select one:") {
		t.Errorf("no selection prompt:\n%s", got)
	}
	if !strings.Contains(got, "Note deleted successfully") {
		t.Errorf("not deleted:\n%s", got)
	}
	if s.notes.Count() != 1 {
		t.Errorf("Count = %d, want 1", s.notes.Count())
	}
}

func TestSessionPromptCancelledAtEOF(t *testing.T) {
	s, out := newTestSession(t, "", false)
	err := s.Execute(context.Background(), "add contact")
	if !errors.Is(err, errCancelled) {
		t.Fatalf("err = %v, want errCancelled", err)
	}
	if !strings.Contains(out.String(), "Cancelled") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestSessionJSONOutput(t *testing.T) {
	s, out := newTestSession(t, "", false)
	mustExecute(t, s, `add note "Plan" --content "quarterly plan" #work`)
	s.json = true

	out.Reset()
	mustExecute(t, s, "stats")
	var st sessionStats
	if err := json.Unmarshal(out.Bytes(), &st); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if st.Notes.TotalNotes != 1 || st.Notes.TotalTags != 1 {
		t.Errorf("stats = %+v", st)
	}
	if len(st.Usage) != 2 {
		t.Errorf("usage = %+v, want add-note and stats", st.Usage)
	}

	out.Reset()
	mustExecute(t, s, "list contacts")
	var contacts []model.Contact
	if err := json.Unmarshal(out.Bytes(), &contacts); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if len(contacts) != 0 {
		t.Errorf("contacts = %+v", contacts)
	}
}

func TestSessionHandlesEveryCommand(t *testing.T) {
	s, _ := newTestSession(t, "", false)
	names := command.DefaultTable().Names()
	if len(names) != len(s.handlers) {
		t.Errorf("%d commands, %d handlers", len(names), len(s.handlers))
	}
	for _, name := range names {
		if _, ok := s.handlers[name]; !ok {
			t.Errorf("no handler for %s", name)
		}
	}
}

func TestClassifyContact(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   model.Contact
	}{
		{
			name:   "name and phone",
			values: []string{"John", "Doe", "+380501234567"},
			want:   model.Contact{Name: "John Doe", Phone: "+380501234567"},
		},
		{
			name:   "email then address",
			values: []string{"Jane", "jane@example.com", "Kyiv", "Main", "St"},
			want:   model.Contact{Name: "Jane", Email: "jane@example.com", Address: "Kyiv Main St"},
		},
		{
			name:   "everything",
			values: []string{"Bob", "0501234567", "bob@example.io", "Lviv"},
			want:   model.Contact{Name: "Bob", Phone: "0501234567", Email: "bob@example.io", Address: "Lviv"},
		},
		{
			name:   "quoted name only",
			values: []string{"Mary Major"},
			want:   model.Contact{Name: "Mary Major"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyContact(tt.values)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSplitHashtags(t *testing.T) {
	words, tags := splitHashtags([]string{"Groceries", "#home", "#", "list", "#Errands"})
	if !reflect.DeepEqual(words, []string{"Groceries", "#", "list"}) {
		t.Errorf("words = %q", words)
	}
	if !reflect.DeepEqual(tags, []string{"#home", "#Errands"}) {
		t.Errorf("tags = %q", tags)
	}
}
