// Package store persists contacts and notes.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/TiredRebel/personal-assistant/internal/model"
)

// Store is the persistence interface for contacts and notes. Saves replace
// the whole collection.
type Store interface {
	// LoadContacts returns every stored contact, in saved order.
	LoadContacts(ctx context.Context) ([]model.Contact, error)

	// SaveContacts replaces the stored contacts.
	SaveContacts(ctx context.Context, contacts []model.Contact) error

	// LoadNotes returns every stored note, in saved order.
	LoadNotes(ctx context.Context) ([]model.Note, error)

	// SaveNotes replaces the stored notes.
	SaveNotes(ctx context.Context, notes []model.Note) error

	// Close releases any resources held by the store.
	Close() error
}

// Storage backends selectable by Options.Mode.
const (
	ModeJSON   = "json"
	ModeSQLite = "sqlite"
)

// File names under the data directory.
const (
	ContactsFile = "contacts.json"
	NotesFile    = "notes.json"
	DBFile       = "assistant.db"
	LogFile      = "storage.log"
	BackupDir    = "backups"
	ManifestFile = "export_manifest.json"
)

// DefaultBackupKeep is how many backups per file survive pruning.
const DefaultBackupKeep = 10

// ErrNoBackup is returned when a restore finds no matching backup.
var ErrNoBackup = errors.New("no backup found")

// Backup describes one timestamped backup file.
type Backup struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
}

// Options configures Open.
type Options struct {
	Dir        string       // Data directory.
	Mode       string       // ModeJSON (default) or ModeSQLite.
	BackupKeep int          // JSON backups kept per file; 0 means DefaultBackupKeep.
	Logger     *slog.Logger // Nil discards log output.
}

// Open returns the store selected by opts.Mode.
func Open(opts Options) (Store, error) {
	switch opts.Mode {
	case "", ModeJSON:
		return NewJSONStore(opts.Dir, opts.BackupKeep, opts.Logger)
	case ModeSQLite:
		return NewSQLite(filepath.Join(opts.Dir, DBFile))
	default:
		return nil, fmt.Errorf("unknown store mode %q (valid: %s, %s)", opts.Mode, ModeJSON, ModeSQLite)
	}
}
