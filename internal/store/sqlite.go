package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/TiredRebel/personal-assistant/internal/model"

	_ "modernc.org/sqlite"
)

const schemaVersion = 2

// SQLiteStore implements Store using a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) a SQLite database at dbPath.
// It auto-creates the parent directory and runs schema migrations to
// ensure the database is up to date.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single connection for WAL mode simplicity.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// migrate runs schema migrations up to the current version.
func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("create version table: %w", err)
	}

	var ver int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&ver)
	if err == sql.ErrNoRows {
		ver = 0
	} else if err != nil {
		return fmt.Errorf("read version: %w", err)
	}

	if ver < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	if ver < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	return nil
}

func (s *SQLiteStore) migrateV1() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS contacts (
			position INTEGER NOT NULL,
			name     TEXT PRIMARY KEY,
			phone    TEXT NOT NULL,
			email    TEXT,
			address  TEXT,
			birthday TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS notes (
			position   INTEGER NOT NULL,
			id         TEXT PRIMARY KEY,
			title      TEXT,
			content    TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`INSERT OR REPLACE INTO schema_version (version) VALUES (1)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate v1: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) migrateV2() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS note_tags (
			note_id  TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			tag      TEXT NOT NULL,
			PRIMARY KEY (note_id, tag)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_note_tags_tag ON note_tags(tag)`,
		`UPDATE schema_version SET version = 2`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate v2: %w", err)
		}
	}
	return nil
}

// LoadContacts returns every stored contact, in saved order.
func (s *SQLiteStore) LoadContacts(ctx context.Context) ([]model.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, phone, email, address, birthday FROM contacts ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		var email, address, birthday sql.NullString
		if err := rows.Scan(&c.Name, &c.Phone, &email, &address, &birthday); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		c.Email = email.String
		c.Address = address.String
		if birthday.Valid && birthday.String != "" {
			d, err := model.ParseDate(birthday.String)
			if err != nil {
				return nil, fmt.Errorf("contact %q: %w", c.Name, err)
			}
			c.Birthday = &d
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// SaveContacts replaces the stored contacts in one transaction.
func (s *SQLiteStore) SaveContacts(ctx context.Context, contacts []model.Contact) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM contacts`); err != nil {
		return fmt.Errorf("clear contacts: %w", err)
	}
	for i, c := range contacts {
		var birthday string
		if c.Birthday != nil {
			birthday = c.Birthday.String()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO contacts (position, name, phone, email, address, birthday)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			i, c.Name, c.Phone,
			nullableString(c.Email),
			nullableString(c.Address),
			nullableString(birthday),
		)
		if err != nil {
			return fmt.Errorf("insert contact %q: %w", c.Name, err)
		}
	}
	return tx.Commit()
}

// LoadNotes returns every stored note with its tags, in saved order.
func (s *SQLiteStore) LoadNotes(ctx context.Context) ([]model.Note, error) {
	tags, err := s.loadTags(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, created_at, updated_at FROM notes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		var n model.Note
		var title sql.NullString
		var created, updated string
		if err := rows.Scan(&n.ID, &title, &n.Content, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		n.Title = title.String
		if n.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", created, err)
		}
		if n.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", updated, err)
		}
		n.Tags = tags[n.ID]
		if n.Tags == nil {
			n.Tags = []string{}
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *SQLiteStore) loadTags(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT note_id, tag FROM note_tags ORDER BY note_id, position`)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	tags := make(map[string][]string)
	for rows.Next() {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags[id] = append(tags[id], tag)
	}
	return tags, rows.Err()
}

// SaveNotes replaces the stored notes and their tags in one transaction.
func (s *SQLiteStore) SaveNotes(ctx context.Context, notes []model.Note) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM note_tags`, `DELETE FROM notes`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear notes: %w", err)
		}
	}
	for i, n := range notes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO notes (position, id, title, content, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			i, n.ID,
			nullableString(n.Title),
			n.Content,
			n.CreatedAt.UTC().Format(time.RFC3339Nano),
			n.UpdatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert note %s: %w", n.ID, err)
		}
		for j, tag := range n.Tags {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO note_tags (note_id, position, tag) VALUES (?, ?, ?)`,
				n.ID, j, tag); err != nil {
				return fmt.Errorf("insert tag %q: %w", tag, err)
			}
		}
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// nullableString returns nil for empty strings so SQLite stores NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
