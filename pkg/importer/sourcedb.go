package importer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Source represents a row from the import_sources table.
type Source struct {
	FeedID      string
	Kind        string
	File        string
	Description string
	SourceURL   string
	LastCheck   *int64
	LastStatus  *int
	LastError   *string
	LastImport  *int64
	LastKept    *int
	UpdatedAt   int64
}

// SourceDB manages the import_sources SQLite table.
type SourceDB struct {
	db *sql.DB
}

// OpenSourceDB opens (or creates) the SQLite database at path and ensures the
// import_sources table exists.
func OpenSourceDB(path string) (*SourceDB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open source db: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS import_sources (
		feed_id      TEXT PRIMARY KEY,
		kind         TEXT NOT NULL,
		file         TEXT NOT NULL,
		description  TEXT NOT NULL,
		source_url   TEXT NOT NULL DEFAULT '',
		last_check   INTEGER,
		last_status  INTEGER,
		last_error   TEXT,
		last_import  INTEGER,
		last_kept    INTEGER,
		updated_at   INTEGER NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create import_sources table: %w", err)
	}

	return &SourceDB{db: db}, nil
}

// Close closes the database.
func (s *SourceDB) Close() error {
	return s.db.Close()
}

// Seed inserts default rows for each feed (INSERT OR IGNORE, so URL
// overrides survive restarts). A row seeded without a URL picks up the
// manifest's URL once one is configured.
func (s *SourceDB) Seed(feeds []Feed) error {
	const q = `INSERT OR IGNORE INTO import_sources
		(feed_id, kind, file, description, source_url, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	const fill = `UPDATE import_sources SET source_url = ?, updated_at = ?
		WHERE feed_id = ? AND source_url = ''`

	now := time.Now().Unix()
	for _, f := range feeds {
		if _, err := s.db.Exec(q, f.ID, string(f.Kind), f.File, f.Description, f.DefaultURL, now); err != nil {
			return fmt.Errorf("seed %s: %w", f.ID, err)
		}
		if f.DefaultURL != "" {
			if _, err := s.db.Exec(fill, f.DefaultURL, now, f.ID); err != nil {
				return fmt.Errorf("seed %s: %w", f.ID, err)
			}
		}
	}
	return nil
}

// GetURL returns the current source URL for a given feed ID.
func (s *SourceDB) GetURL(feedID string) (string, error) {
	var url string
	err := s.db.QueryRow(`SELECT source_url FROM import_sources WHERE feed_id = ?`, feedID).Scan(&url)
	if err != nil {
		return "", fmt.Errorf("get url for %s: %w", feedID, err)
	}
	return url, nil
}

// SetURL updates the source URL for a given feed and records the change timestamp.
func (s *SourceDB) SetURL(feedID, url string) error {
	res, err := s.db.Exec(
		`UPDATE import_sources SET source_url = ?, updated_at = ? WHERE feed_id = ?`,
		url, time.Now().Unix(), feedID,
	)
	if err != nil {
		return fmt.Errorf("set url for %s: %w", feedID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("feed %s not found in import_sources", feedID)
	}
	return nil
}

// UpdateCheck persists the result of an availability check.
func (s *SourceDB) UpdateCheck(feedID string, status int, checkErr string) error {
	now := time.Now().Unix()
	var errPtr *string
	if checkErr != "" {
		errPtr = &checkErr
	}
	_, err := s.db.Exec(
		`UPDATE import_sources SET last_check = ?, last_status = ?, last_error = ? WHERE feed_id = ?`,
		now, status, errPtr, feedID,
	)
	if err != nil {
		return fmt.Errorf("update check for %s: %w", feedID, err)
	}
	return nil
}

// RecordImport persists the time and kept record count of a successful import.
func (s *SourceDB) RecordImport(ctx context.Context, feedID string, kept int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE import_sources SET last_import = ?, last_kept = ? WHERE feed_id = ?`,
		time.Now().Unix(), kept, feedID,
	)
	if err != nil {
		return fmt.Errorf("record import for %s: %w", feedID, err)
	}
	return nil
}

// ListSources returns all rows from import_sources ordered by feed_id.
func (s *SourceDB) ListSources() ([]Source, error) {
	rows, err := s.db.Query(`SELECT feed_id, kind, file, description, source_url,
		last_check, last_status, last_error, last_import, last_kept, updated_at
		FROM import_sources ORDER BY feed_id`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.FeedID, &src.Kind, &src.File, &src.Description, &src.SourceURL,
			&src.LastCheck, &src.LastStatus, &src.LastError, &src.LastImport, &src.LastKept, &src.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}
