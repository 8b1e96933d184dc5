// Package searchlog records site searches in SQLite so editors can see which
// queries found nothing and add terms or categories for them.
package searchlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hazyhaar/showroom/pkg/kit"
	"github.com/hazyhaar/showroom/pkg/site"
	_ "modernc.org/sqlite"
)

// Entry is one recorded search.
type Entry struct {
	Query      string
	Normalized string
	Mode       string
	Term       string
	Category   string
	CreatedAt  time.Time
}

// Miss is an unmatched query with the number of times it was searched.
type Miss struct {
	Query    string `json:"query"`
	Count    int    `json:"count"`
	LastSeen int64  `json:"last_seen"`
}

// Log manages the search_log SQLite table.
type Log struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and ensures the
// search_log table exists.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open search log: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS search_log (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		query       TEXT NOT NULL,
		normalized  TEXT NOT NULL,
		mode        TEXT NOT NULL,
		term        TEXT NOT NULL DEFAULT '',
		category    TEXT NOT NULL DEFAULT '',
		created_at  INTEGER NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create search_log table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_search_log_mode ON search_log(mode, normalized)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create search_log index: %w", err)
	}
	return &Log{db: db}, nil
}

// Close closes the database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record stores e. Normalized defaults to the trimmed lowercased query and
// CreatedAt to now.
func (l *Log) Record(ctx context.Context, e Entry) error {
	if e.Normalized == "" {
		e.Normalized = strings.ToLower(strings.TrimSpace(e.Query))
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO search_log (query, normalized, mode, term, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Query, e.Normalized, e.Mode, e.Term, e.Category, e.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("record search: %w", err)
	}
	return nil
}

// TopMisses returns the most frequent queries that ended in the empty state.
// Blank queries are not reported.
func (l *Log) TopMisses(ctx context.Context, limit int) ([]Miss, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx, `SELECT normalized, COUNT(*) AS n, MAX(created_at)
		FROM search_log
		WHERE mode = ? AND normalized != ''
		GROUP BY normalized
		ORDER BY n DESC, normalized ASC
		LIMIT ?`, string(site.ModeEmpty), limit)
	if err != nil {
		return nil, fmt.Errorf("top misses: %w", err)
	}
	defer rows.Close()

	var misses []Miss
	for rows.Next() {
		var m Miss
		if err := rows.Scan(&m.Query, &m.Count, &m.LastSeen); err != nil {
			return nil, fmt.Errorf("scan miss: %w", err)
		}
		misses = append(misses, m)
	}
	return misses, rows.Err()
}

// Count returns the number of recorded searches.
func (l *Log) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_log`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count searches: %w", err)
	}
	return n, nil
}

// Middleware records every successful search endpoint response. A failed
// insert is logged and never fails the search.
func (l *Log) Middleware(logger *slog.Logger) kit.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, request any) (any, error) {
			resp, err := next(ctx, request)
			if err != nil {
				return resp, err
			}
			res, ok := resp.(*site.SearchResult)
			if !ok {
				return resp, nil
			}
			if rerr := l.Record(ctx, FromResult(res)); rerr != nil {
				logger.Warn("search log", "error", rerr, "request_id", kit.GetRequestID(ctx))
			}
			return resp, nil
		}
	}
}

// FromResult builds the log entry for a search result.
func FromResult(res *site.SearchResult) Entry {
	e := Entry{Query: res.Query, Normalized: res.Normalized, Mode: string(res.Mode)}
	if res.Term != nil {
		e.Term = res.Term.Query
	}
	if res.Category != nil {
		e.Category = res.Category.ID
	}
	return e
}
