package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one generated restriction
type Entry struct {
	ID           int64
	Report       string
	Query        string
	Restriction  string
	ExecutedAt   time.Time
	Success      bool
	ErrorMessage string
}

// Store persists generated restrictions in SQLite
type Store struct {
	db *sql.DB
}

// NewStore opens (and creates when needed) the history database at path
func NewStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Add records an entry; a zero ExecutedAt means now
func (s *Store) Add(entry Entry) error {
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO restriction_history
		(report, query, restriction, executed_at, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Report,
		entry.Query,
		entry.Restriction,
		entry.ExecutedAt.UTC(),
		entry.Success,
		entry.ErrorMessage,
	)
	return err
}

// GetRecent retrieves the most recent entries, newest first
func (s *Store) GetRecent(limit int) ([]Entry, error) {
	return s.query(`
		SELECT id, report, query, restriction, executed_at, success, error_message
		FROM restriction_history
		ORDER BY executed_at DESC, id DESC
		LIMIT ?`, limit)
}

// ForReport retrieves the most recent entries of one report
func (s *Store) ForReport(report string, limit int) ([]Entry, error) {
	return s.query(`
		SELECT id, report, query, restriction, executed_at, success, error_message
		FROM restriction_history
		WHERE report = ?
		ORDER BY executed_at DESC, id DESC
		LIMIT ?`, report, limit)
}

// Prune keeps the newest maxEntries entries
func (s *Store) Prune(maxEntries int) error {
	if maxEntries <= 0 {
		return nil
	}
	_, err := s.db.Exec(`
		DELETE FROM restriction_history
		WHERE id NOT IN (
			SELECT id FROM restriction_history
			ORDER BY executed_at DESC, id DESC
			LIMIT ?
		)`, maxEntries)
	return err
}

func (s *Store) query(q string, args ...interface{}) ([]Entry, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(
			&e.ID,
			&e.Report,
			&e.Query,
			&e.Restriction,
			&e.ExecutedAt,
			&e.Success,
			&e.ErrorMessage,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
