package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/TiredRebel/personal-assistant/internal/model"
)

// BackupStamp is the time layout in backup file names.
const BackupStamp = "20060102_150405"

// ExportVersion is written to export manifests.
const ExportVersion = "1.0.0"

// JSONStore keeps contacts and notes in JSON files under a data directory.
// Every overwrite is preceded by a timestamped backup.
type JSONStore struct {
	dir    string
	keep   int
	logger *slog.Logger
	now    func() time.Time
}

// NewJSONStore creates dir and its backups directory if needed.
func NewJSONStore(dir string, keep int, logger *slog.Logger) (*JSONStore, error) {
	if keep <= 0 {
		keep = DefaultBackupKeep
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(filepath.Join(dir, BackupDir), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &JSONStore{dir: dir, keep: keep, logger: logger, now: time.Now}, nil
}

// Dir returns the data directory.
func (s *JSONStore) Dir() string { return s.dir }

func (s *JSONStore) LoadContacts(ctx context.Context) ([]model.Contact, error) {
	return load[model.Contact](ctx, s, ContactsFile)
}

func (s *JSONStore) SaveContacts(ctx context.Context, contacts []model.Contact) error {
	return save(ctx, s, ContactsFile, contacts)
}

func (s *JSONStore) LoadNotes(ctx context.Context) ([]model.Note, error) {
	return load[model.Note](ctx, s, NotesFile)
}

func (s *JSONStore) SaveNotes(ctx context.Context, notes []model.Note) error {
	return save(ctx, s, NotesFile, notes)
}

// Close is a no-op; files are not held open between calls.
func (s *JSONStore) Close() error { return nil }

func load[T any](ctx context.Context, s *JSONStore, name string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("file does not exist, starting empty", "file", name)
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	items, err := decode[T](data)
	if err == nil {
		s.logger.Info("loaded items", "file", name, "items", len(items))
		return items, nil
	}
	s.logger.Error("corrupted data file", "file", name, "err", err)
	return recoverFile[T](s, name)
}

func decode[T any](data []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// recoverFile restores name from the newest backup that still decodes.
// When none does, it returns an empty collection and leaves the corrupted
// file in place for the next save to back up.
func recoverFile[T any](s *JSONStore, name string) ([]T, error) {
	s.logger.Warn("attempting recovery", "file", name)
	backups, err := s.ListBackups(name)
	if err != nil {
		return nil, err
	}
	for _, b := range backups {
		data, err := os.ReadFile(filepath.Join(s.dir, BackupDir, b.Name))
		if err != nil {
			s.logger.Warn("unreadable backup", "backup", b.Name, "err", err)
			continue
		}
		items, err := decode[T](data)
		if err != nil {
			s.logger.Warn("backup also corrupted", "backup", b.Name, "err", err)
			continue
		}
		if err := s.writeAtomic(name, data); err != nil {
			return nil, fmt.Errorf("restore %s from %s: %w", name, b.Name, err)
		}
		s.logger.Info("recovered from backup", "file", name, "backup", b.Name)
		return items, nil
	}
	s.logger.Error("all recovery attempts failed", "file", name)
	return []T{}, nil
}

func save[T any](ctx context.Context, s *JSONStore, name string, items []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	data, err := encodeSorted(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if _, err := os.Stat(filepath.Join(s.dir, name)); err == nil {
		if _, err := s.Backup(name); err != nil {
			return err
		}
	}
	if err := s.writeAtomic(name, data); err != nil {
		s.logger.Error("save failed", "file", name, "err", err)
		return fmt.Errorf("save %s: %w", name, err)
	}
	s.logger.Info("saved items", "file", name, "items", len(items))
	return nil
}

// encodeSorted renders v as two-space indented JSON with object keys in
// sorted order and without HTML escaping.
func encodeSorted(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(generic); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeAtomic writes data to a temp file beside name, syncs it, and
// renames it into place with owner-only permissions.
func (s *JSONStore) writeAtomic(name string, data []byte) error {
	target := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return fmt.Errorf("rename temp file: %w", err)
	}
	return os.Chmod(target, 0o600)
}

// backupName returns "<base>_YYYYMMDD_HHMMSS<ext>" for name.
func backupName(name string, t time.Time) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + t.Format(BackupStamp) + ext
}

// Backup copies name into the backups directory and prunes old backups.
// It returns the backup's file name.
func (s *JSONStore) Backup(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("backup %s: %w", name, err)
	}
	bname := backupName(name, s.now())
	if err := os.WriteFile(filepath.Join(s.dir, BackupDir, bname), data, 0o600); err != nil {
		return "", fmt.Errorf("backup %s: %w", name, err)
	}
	s.logger.Info("created backup", "backup", bname)
	s.prune(name)
	return bname, nil
}

func (s *JSONStore) prune(name string) {
	backups, err := s.ListBackups(name)
	if err != nil {
		s.logger.Error("list backups for pruning", "file", name, "err", err)
		return
	}
	if len(backups) <= s.keep {
		return
	}
	for _, b := range backups[s.keep:] {
		if err := os.Remove(filepath.Join(s.dir, BackupDir, b.Name)); err != nil {
			s.logger.Error("delete old backup", "backup", b.Name, "err", err)
			continue
		}
		s.logger.Info("deleted old backup", "backup", b.Name)
	}
}

// ListBackups returns the backups of name, newest first. Files in the
// backups directory that do not follow the naming scheme are ignored.
func (s *JSONStore) ListBackups(name string) ([]Backup, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, BackupDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	ext := filepath.Ext(name)
	prefix := strings.TrimSuffix(name, ext) + "_"

	var backups []Backup
	for _, e := range entries {
		fname := e.Name()
		if e.IsDir() || !strings.HasPrefix(fname, prefix) || !strings.HasSuffix(fname, ext) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(fname, prefix), ext)
		ts, err := time.ParseInLocation(BackupStamp, stamp, time.Local)
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Backup{Name: fname, Timestamp: ts, Size: info.Size()})
	}
	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

// Restore replaces name with one of its backups: the newest when at is
// zero, otherwise the one taken at exactly that second.
func (s *JSONStore) Restore(name string, at time.Time) (Backup, error) {
	backups, err := s.ListBackups(name)
	if err != nil {
		return Backup{}, err
	}
	var chosen *Backup
	for i := range backups {
		if at.IsZero() || backups[i].Timestamp.Equal(at) {
			chosen = &backups[i]
			break
		}
	}
	if chosen == nil {
		s.logger.Error("backup not found", "file", name, "at", at)
		return Backup{}, fmt.Errorf("restore %s: %w", name, ErrNoBackup)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, BackupDir, chosen.Name))
	if err != nil {
		return Backup{}, fmt.Errorf("restore %s: %w", name, err)
	}
	if err := s.writeAtomic(name, data); err != nil {
		return Backup{}, fmt.Errorf("restore %s: %w", name, err)
	}
	s.logger.Info("restored from backup", "file", name, "backup", chosen.Name)
	return *chosen, nil
}

// Manifest is written alongside exported data files.
type Manifest struct {
	ExportDate string   `json:"export_date"`
	Files      []string `json:"files"`
	Version    string   `json:"version"`
}

func (s *JSONStore) dataFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, m := range matches {
		if base := filepath.Base(m); base != ManifestFile {
			names = append(names, base)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Export copies every data file into dir and writes a manifest.
func (s *JSONStore) Export(dir string) (Manifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Manifest{}, fmt.Errorf("create export dir: %w", err)
	}
	names, err := s.dataFiles(s.dir)
	if err != nil {
		return Manifest{}, fmt.Errorf("export: %w", err)
	}
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return Manifest{}, fmt.Errorf("export %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
			return Manifest{}, fmt.Errorf("export %s: %w", name, err)
		}
		s.logger.Info("exported file", "file", name)
	}
	m := Manifest{
		ExportDate: s.now().Format(time.RFC3339),
		Files:      names,
		Version:    ExportVersion,
	}
	if m.Files == nil {
		m.Files = []string{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return Manifest{}, fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o600); err != nil {
		return Manifest{}, fmt.Errorf("write manifest: %w", err)
	}
	s.logger.Info("export completed", "dir", dir, "files", len(names))
	return m, nil
}

// Import backs up the current data files, then copies every JSON file
// from dir into the data directory. Nothing is copied unless every
// incoming file is valid JSON.
func (s *JSONStore) Import(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	names, err := s.dataFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	incoming := make(map[string][]byte, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", name, err)
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("import %s: invalid JSON", name)
		}
		incoming[name] = data
	}

	current, err := s.dataFiles(s.dir)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	for _, name := range current {
		if _, err := s.Backup(name); err != nil {
			return nil, err
		}
	}
	for _, name := range names {
		if err := s.writeAtomic(name, incoming[name]); err != nil {
			return nil, fmt.Errorf("import %s: %w", name, err)
		}
		s.logger.Info("imported file", "file", name)
	}
	return names, nil
}
