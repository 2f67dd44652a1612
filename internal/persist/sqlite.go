package persist

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gaocuixia/running-journal/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS articles (
	pos      INTEGER PRIMARY KEY,
	id       INTEGER NOT NULL,
	title    TEXT NOT NULL,
	date     TEXT NOT NULL,
	category TEXT NOT NULL,
	content  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	pos        INTEGER PRIMARY KEY,
	id         INTEGER NOT NULL,
	name       TEXT NOT NULL,
	date       TEXT NOT NULL,
	distance   REAL NOT NULL,
	location   TEXT NOT NULL,
	finishTime TEXT NOT NULL,
	category   TEXT NOT NULL,
	notes      TEXT
);
`

// SQLite persists the journal in a local database. The pos column
// preserves in-memory insertion order across flush/load cycles; record
// ids stay application-assigned.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("persist: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("persist: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("persist: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Load reads both collections in stored order. Empty tables mean no
// prior state: the bootstrap article set is returned (and persisted on
// the next flush).
func (s *SQLite) Load() (Snapshot, error) {
	var snap Snapshot

	if err := func() error {
		rows, err := s.conn.Query(`SELECT id, title, date, category, content FROM articles ORDER BY pos`)
		if err != nil {
			return fmt.Errorf("persist: load articles: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var a models.Article
			if err := rows.Scan(&a.ID, &a.Title, &a.Date, &a.Category, &a.Content); err != nil {
				return fmt.Errorf("persist: scan article: %w", err)
			}
			snap.Articles = append(snap.Articles, a)
		}
		return rows.Err()
	}(); err != nil {
		return Snapshot{}, err
	}

	if err := func() error {
		rows, err := s.conn.Query(`SELECT id, name, date, distance, location, finishTime, category, COALESCE(notes, '') FROM events ORDER BY pos`)
		if err != nil {
			return fmt.Errorf("persist: load events: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var e models.Event
			if err := rows.Scan(&e.ID, &e.Name, &e.Date, &e.Distance, &e.Location, &e.FinishTime, &e.Category, &e.Notes); err != nil {
				return fmt.Errorf("persist: scan event: %w", err)
			}
			snap.Events = append(snap.Events, e)
		}
		return rows.Err()
	}(); err != nil {
		return Snapshot{}, err
	}

	if len(snap.Articles) == 0 && len(snap.Events) == 0 {
		snap.Articles = SeedArticles()
	}
	return snap, nil
}

// Flush replaces both tables with the snapshot inside one transaction.
func (s *SQLite) Flush(snap Snapshot) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("persist: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM articles`); err != nil {
		return fmt.Errorf("persist: clear articles: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM events`); err != nil {
		return fmt.Errorf("persist: clear events: %w", err)
	}

	aStmt, err := tx.Prepare(`INSERT INTO articles (pos, id, title, date, category, content) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("persist: prepare article insert: %w", err)
	}
	defer aStmt.Close()
	for i, a := range snap.Articles {
		if _, err := aStmt.Exec(i, a.ID, a.Title, a.Date, a.Category, a.Content); err != nil {
			return fmt.Errorf("persist: insert article %d: %w", a.ID, err)
		}
	}

	eStmt, err := tx.Prepare(`INSERT INTO events (pos, id, name, date, distance, location, finishTime, category, notes) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("persist: prepare event insert: %w", err)
	}
	defer eStmt.Close()
	for i, e := range snap.Events {
		if _, err := eStmt.Exec(i, e.ID, e.Name, e.Date, e.Distance, e.Location, e.FinishTime, e.Category, e.Notes); err != nil {
			return fmt.Errorf("persist: insert event %d: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}
