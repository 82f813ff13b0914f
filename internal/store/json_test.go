package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/TiredRebel/personal-assistant/internal/model"
)

// newJSONStore returns a store whose clock advances one second per call.
func newJSONStore(t *testing.T, keep int) *JSONStore {
	t.Helper()
	s, err := NewJSONStore(t.TempDir(), keep, nil)
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func contact(name string) model.Contact {
	return model.Contact{Name: name, Phone: "+380501234567"}
}

func TestJSONLoadMissingFile(t *testing.T) {
	s := newJSONStore(t, 0)
	got, err := s.LoadContacts(context.Background())
	if err != nil {
		t.Fatalf("LoadContacts: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}

func TestJSONSaveLoad(t *testing.T) {
	s := newJSONStore(t, 0)
	ctx := context.Background()
	in := []model.Contact{contact("Ann"), contact("Bob <b&b>")}
	if err := s.SaveContacts(ctx, in); err != nil {
		t.Fatalf("SaveContacts: %v", err)
	}
	got, err := s.LoadContacts(ctx)
	if err != nil {
		t.Fatalf("LoadContacts: %v", err)
	}
	if len(got) != 2 || got[1].Name != "Bob <b&b>" {
		t.Errorf("loaded %+v", got)
	}

	path := filepath.Join(s.Dir(), ContactsFile)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("mode = %o, want 600", perm)
	}
	data, _ := os.ReadFile(path)
	if !bytes.Contains(data, []byte("<b&b>")) {
		t.Errorf("HTML characters were escaped: %s", data)
	}
	if !strings.Contains(string(data), "\n  {\n    \"name\": \"Ann\",\n    \"phone\"") {
		t.Errorf("expected indented output with sorted keys, got:\n%s", data)
	}
}

func TestJSONSortedKeys(t *testing.T) {
	s := newJSONStore(t, 0)
	n, _ := model.NewNote("body", "title", []string{"x"}, time.Now())
	if err := s.SaveNotes(context.Background(), []model.Note{n}); err != nil {
		t.Fatalf("SaveNotes: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(s.Dir(), NotesFile))
	keys := []string{`"content"`, `"created_at"`, `"id"`, `"tags"`, `"title"`, `"updated_at"`}
	last := -1
	for _, k := range keys {
		i := bytes.Index(data, []byte(k))
		if i < 0 || i < last {
			t.Fatalf("key %s out of order in:\n%s", k, data)
		}
		last = i
	}
}

func TestJSONSaveCreatesBackup(t *testing.T) {
	s := newJSONStore(t, 0)
	ctx := context.Background()

	if err := s.SaveContacts(ctx, []model.Contact{contact("Ann")}); err != nil {
		t.Fatal(err)
	}
	if b, _ := s.ListBackups(ContactsFile); len(b) != 0 {
		t.Fatalf("first save made %d backups, want 0", len(b))
	}
	if err := s.SaveContacts(ctx, []model.Contact{contact("Bob")}); err != nil {
		t.Fatal(err)
	}
	backups, err := s.ListBackups(ContactsFile)
	if err != nil {
		t.Fatalf("ListBackups: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("got %d backups, want 1", len(backups))
	}
	if !strings.HasPrefix(backups[0].Name, "contacts_20250301_0900") || !strings.HasSuffix(backups[0].Name, ".json") {
		t.Errorf("backup name = %q", backups[0].Name)
	}
	if backups[0].Size == 0 {
		t.Error("backup size should be recorded")
	}
}

func TestJSONBackupPruning(t *testing.T) {
	s := newJSONStore(t, 3)
	ctx := context.Background()
	for i := 0; i < 6; i++ {
		if err := s.SaveContacts(ctx, []model.Contact{contact("Ann")}); err != nil {
			t.Fatal(err)
		}
	}
	backups, _ := s.ListBackups(ContactsFile)
	if len(backups) != 3 {
		t.Fatalf("got %d backups, want 3", len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if !backups[i-1].Timestamp.After(backups[i].Timestamp) {
			t.Errorf("backups not newest first: %v", backups)
		}
	}
	// Unrelated files are never listed or pruned.
	if b, _ := s.ListBackups(NotesFile); len(b) != 0 {
		t.Errorf("notes backups = %v", b)
	}
}

func TestJSONRecoverFromCorruption(t *testing.T) {
	s := newJSONStore(t, 0)
	ctx := context.Background()

	s.SaveContacts(ctx, []model.Contact{contact("Ann")})
	s.SaveContacts(ctx, []model.Contact{contact("Ann"), contact("Bob")})
	// Newest backup holds [Ann]; corrupt the live file.
	path := filepath.Join(s.Dir(), ContactsFile)
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadContacts(ctx)
	if err != nil {
		t.Fatalf("LoadContacts: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Ann" {
		t.Errorf("recovered %+v, want [Ann]", got)
	}
	data, _ := os.ReadFile(path)
	if !json.Valid(data) {
		t.Error("live file was not restored")
	}
}

func TestJSONRecoverSkipsCorruptBackups(t *testing.T) {
	s := newJSONStore(t, 0)
	ctx := context.Background()
	s.SaveContacts(ctx, []model.Contact{contact("Ann")})
	s.SaveContacts(ctx, []model.Contact{contact("Bob")})
	s.SaveContacts(ctx, []model.Contact{contact("Cid")})

	backups, _ := s.ListBackups(ContactsFile)
	// Newest backup (Bob) is broken too; the older one (Ann) must win.
	os.WriteFile(filepath.Join(s.Dir(), BackupDir, backups[0].Name), []byte("["), 0o600)
	os.WriteFile(filepath.Join(s.Dir(), ContactsFile), []byte("]"), 0o600)

	got, err := s.LoadContacts(ctx)
	if err != nil {
		t.Fatalf("LoadContacts: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Ann" {
		t.Errorf("recovered %+v, want [Ann]", got)
	}
}

func TestJSONRecoverNothingUsable(t *testing.T) {
	s := newJSONStore(t, 0)
	os.WriteFile(filepath.Join(s.Dir(), NotesFile), []byte("garbage"), 0o600)
	got, err := s.LoadNotes(context.Background())
	if err != nil {
		t.Fatalf("LoadNotes: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestJSONRestore(t *testing.T) {
	s := newJSONStore(t, 0)
	ctx := context.Background()
	s.SaveContacts(ctx, []model.Contact{contact("Ann")})
	s.SaveContacts(ctx, []model.Contact{contact("Bob")})
	s.SaveContacts(ctx, []model.Contact{contact("Cid")})

	backups, _ := s.ListBackups(ContactsFile)
	oldest := backups[len(backups)-1]
	if _, err := s.Restore(ContactsFile, oldest.Timestamp); err != nil {
		t.Fatalf("Restore at: %v", err)
	}
	got, _ := s.LoadContacts(ctx)
	if len(got) != 1 || got[0].Name != "Ann" {
		t.Errorf("after restore = %+v, want [Ann]", got)
	}

	b, err := s.Restore(ContactsFile, time.Time{})
	if err != nil {
		t.Fatalf("Restore latest: %v", err)
	}
	if b.Name != backups[0].Name {
		t.Errorf("restored %q, want newest %q", b.Name, backups[0].Name)
	}

	_, err = s.Restore(ContactsFile, time.Date(1999, 1, 1, 0, 0, 0, 0, time.Local))
	if !errors.Is(err, ErrNoBackup) {
		t.Errorf("err = %v, want ErrNoBackup", err)
	}
	if _, err := s.Restore(NotesFile, time.Time{}); !errors.Is(err, ErrNoBackup) {
		t.Errorf("err = %v, want ErrNoBackup", err)
	}
}

func TestJSONExportImport(t *testing.T) {
	src := newJSONStore(t, 0)
	ctx := context.Background()
	n, _ := model.NewNote("remember", "", []string{"home"}, time.Now())
	src.SaveContacts(ctx, []model.Contact{contact("Ann")})
	src.SaveNotes(ctx, []model.Note{n})

	exportDir := filepath.Join(t.TempDir(), "export")
	m, err := src.Export(exportDir)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(m.Files) != 2 || m.Files[0] != ContactsFile || m.Files[1] != NotesFile {
		t.Errorf("manifest files = %v", m.Files)
	}
	raw, err := os.ReadFile(filepath.Join(exportDir, ManifestFile))
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	var onDisk Manifest
	if err := json.Unmarshal(raw, &onDisk); err != nil || onDisk.Version != ExportVersion || onDisk.ExportDate == "" {
		t.Errorf("manifest = %s (%v)", raw, err)
	}

	dst := newJSONStore(t, 0)
	dst.SaveContacts(ctx, []model.Contact{contact("Old")})
	imported, err := dst.Import(exportDir)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(imported) != 2 {
		t.Errorf("imported = %v", imported)
	}
	contacts, _ := dst.LoadContacts(ctx)
	notes, _ := dst.LoadNotes(ctx)
	if len(contacts) != 1 || contacts[0].Name != "Ann" {
		t.Errorf("contacts after import = %+v", contacts)
	}
	if len(notes) != 1 || notes[0].ID != n.ID {
		t.Errorf("notes after import = %+v", notes)
	}
	if b, _ := dst.ListBackups(ContactsFile); len(b) != 1 {
		t.Errorf("import should back up the replaced file, got %d backups", len(b))
	}
}

func TestJSONImportRejectsInvalid(t *testing.T) {
	s := newJSONStore(t, 0)
	ctx := context.Background()
	s.SaveContacts(ctx, []model.Contact{contact("Keep")})

	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ContactsFile), []byte(`[]`), 0o600)
	os.WriteFile(filepath.Join(dir, NotesFile), []byte(`{broken`), 0o600)
	if _, err := s.Import(dir); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	got, _ := s.LoadContacts(ctx)
	if len(got) != 1 || got[0].Name != "Keep" {
		t.Errorf("contacts changed by failed import: %+v", got)
	}

	if _, err := s.Import(filepath.Join(dir, "missing")); err == nil {
		t.Error("missing dir should fail")
	}
}

func TestOpenLog(t *testing.T) {
	dir := t.TempDir()
	var echo bytes.Buffer
	logger, closer, err := OpenLog(dir, &echo)
	if err != nil {
		t.Fatalf("OpenLog: %v", err)
	}
	logger.Info("saved items", "file", "contacts.json")
	logger.Warn("corrupted data file", "file", "notes.json")
	closer.Close()

	data, _ := os.ReadFile(filepath.Join(dir, LogFile))
	if !strings.Contains(string(data), "saved items") || !strings.Contains(string(data), "corrupted data file") {
		t.Errorf("log file = %s", data)
	}
	if strings.Contains(echo.String(), "saved items") || !strings.Contains(echo.String(), "corrupted data file") {
		t.Errorf("echo = %q, want warnings only", echo.String())
	}
}
