// Package search provides the SQLite-backed note search index used by
// mention lookup, with optional FTS5 full-text search.
//
// The index is derived state: it is rebuilt from the live note collection
// on every load and updated on note mutations, and it is never read back
// as a source of truth.
package search

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/raido/internal/mention"
	"github.com/starford/raido/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	client     TEXT NOT NULL DEFAULT '',
	date       TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Result is one search hit.
type Result struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Client  string `json:"client,omitempty"`
	Date    string `json:"date,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// DB wraps a sql.DB with search-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("search: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("search: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("search: apply schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("search: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// IndexNote inserts or replaces a note's index entry. Rich-text payloads
// are stripped to plain text before indexing.
func (db *DB) IndexNote(n models.Note) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("search: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	body := noteText(n)
	_, err = tx.Exec(`
		INSERT INTO notes (id, title, client, date, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title      = excluded.title,
			client     = excluded.client,
			date       = excluded.date,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, n.ID, n.Title, n.Client, n.Date, body, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("search: upsert note: %w", err)
	}
	if err := ftsUpsert(tx, n.ID, n.Title, body); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteNote removes a note's index entry.
func (db *DB) DeleteNote(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("search: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM notes WHERE id = ?`, id)
	return tx.Commit()
}

// Rebuild replaces the whole index with the given note set.
func (db *DB) Rebuild(notes []models.Note) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("search: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM notes`); err != nil {
		return fmt.Errorf("search: clear notes: %w", err)
	}
	ftsClear(tx)

	stmt, err := tx.Prepare(`INSERT INTO notes (id, title, client, date, body, updated_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("search: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range notes {
		body := noteText(n)
		ts := n.UpdatedAt
		if ts.IsZero() {
			ts = time.Now()
		}
		if _, err := stmt.Exec(n.ID, n.Title, n.Client, n.Date, body, ts); err != nil {
			return fmt.Errorf("search: insert note: %w", err)
		}
		if err := ftsUpsert(tx, n.ID, n.Title, body); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// noteText flattens a note's three rich-text payloads into indexable text.
func noteText(n models.Note) string {
	return mention.Text(n.PreNotesHTML + " " + n.ContentHTML + " " + n.NextStepsHTML)
}
