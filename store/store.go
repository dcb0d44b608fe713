// Package store persists named program documents to a local sqlite
// database: opened with WAL + busy_timeout pragmas, one table created with
// CREATE TABLE IF NOT EXISTS, writes applied as an upsert via ON CONFLICT.
// The document itself is opaque here: store takes and returns the
// serialized bytes loader.Marshal/Parse produce, so this package has no
// dependency on the loader package.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a named-document table backed by a single sqlite file.
type Store struct {
	db *sql.DB
}

// Record is one persisted document: its name, raw bytes, and the time it
// was last written.
type Record struct {
	Name      string
	Document  []byte
	UpdatedAt time.Time
}

// Open creates path's parent directory if needed and opens (or
// initializes) the program document table within it.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create data directory: %w", err)
		}
	}

	db, err := openDB(path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS program_documents (
	name TEXT PRIMARY KEY,
	document TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: initialize program_documents schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save upserts doc under name, stamping the current time.
func (s *Store) Save(name string, doc []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO program_documents (name, document, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		 document = excluded.document,
		 updated_at = excluded.updated_at`,
		name, string(doc), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: save document %q: %w", name, err)
	}
	return nil
}

// ErrNotFound is returned by Load when name has no saved document.
var ErrNotFound = errors.New("store: document not found")

// Load fetches the document saved under name.
func (s *Store) Load(name string) ([]byte, error) {
	var doc string
	err := s.db.QueryRow(`SELECT document FROM program_documents WHERE name = ?`, name).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: load document %q: %w", name, err)
	}
	return []byte(doc), nil
}

// Delete removes name's saved document, if any.
func (s *Store) Delete(name string) error {
	if _, err := s.db.Exec(`DELETE FROM program_documents WHERE name = ?`, name); err != nil {
		return fmt.Errorf("store: delete document %q: %w", name, err)
	}
	return nil
}

// List returns every saved document's name and last-updated time, ordered
// by name.
func (s *Store) List() ([]Record, error) {
	rows, err := s.db.Query(`SELECT name, document, updated_at FROM program_documents ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list documents: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var name, doc, updatedAt string
		if err := rows.Scan(&name, &doc, &updatedAt); err != nil {
			return nil, fmt.Errorf("store: scan document row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("store: parse updated_at for %q: %w", name, err)
		}
		records = append(records, Record{Name: name, Document: []byte(doc), UpdatedAt: ts})
	}
	return records, rows.Err()
}

// openDB opens a sqlite database file with WAL journaling and a busy
// timeout.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return db, nil
}
