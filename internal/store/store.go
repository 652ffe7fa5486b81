// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists papers and their derived summaries and answers
// in SQLite. Uniqueness of (source_key), (paper, language, summary_type)
// and (paper, question, answer_language) is enforced by the schema, not
// just application checks, so concurrent duplicate creates lose cleanly.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
)

const dbFile = "preprintd.db"

// ErrDuplicate reports that a create hit a uniqueness constraint. The
// caller recovers by re-reading the now-present row.
var ErrDuplicate = errors.New("row already exists")

// Store manages the paper cache database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database under dataDir and ensures
// the schema exists.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_key TEXT NOT NULL UNIQUE,
			extracted_text TEXT NOT NULL CHECK (extracted_text <> ''),
			title TEXT,
			authors TEXT,
			abstract_url TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS summaries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			paper_id INTEGER NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			language TEXT NOT NULL,
			summary_type TEXT NOT NULL,
			summary_text TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'ok',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (paper_id, language, summary_type)
		)`,
		`CREATE TABLE IF NOT EXISTS answers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			paper_id INTEGER NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			question TEXT NOT NULL,
			answer TEXT NOT NULL DEFAULT '',
			answer_language TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'ok',
			answered_at TIMESTAMP NOT NULL,
			UNIQUE (paper_id, question, answer_language)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_paper_id ON summaries(paper_id)`,
		`CREATE INDEX IF NOT EXISTS idx_answers_paper_id ON answers(paper_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
