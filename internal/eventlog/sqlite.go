package eventlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite for persistence
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed event log
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME NOT NULL,
			group_id INTEGER,
			user_id INTEGER,
			type TEXT,
			banned_item TEXT,
			details TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create logs table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append records a moderation event
func (s *SQLiteStore) Append(e Entry) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO logs (timestamp, group_id, user_id, type, banned_item, details)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ts.UTC().Format(time.RFC3339), e.GroupID, e.UserID, e.Category, e.BannedItem, e.Details)

	if err != nil {
		return fmt.Errorf("append log entry: %w", err)
	}
	return nil
}

// CountSince returns the number of entries newer than t
func (s *SQLiteStore) CountSince(t time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM logs WHERE timestamp > ?",
		t.UTC().Format(time.RFC3339),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count log entries: %w", err)
	}
	return count, nil
}

// CountByCategorySince returns per-category tallies newer than t
func (s *SQLiteStore) CountByCategorySince(t time.Time) ([]CategoryCount, error) {
	rows, err := s.db.Query(
		"SELECT type, COUNT(*) FROM logs WHERE timestamp > ? GROUP BY type",
		t.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer rows.Close()

	var counts []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}
	return counts, nil
}

// TopBannedSince returns the most frequent banned items newer than t
func (s *SQLiteStore) TopBannedSince(t time.Time, limit int) ([]ItemCount, error) {
	rows, err := s.db.Query(`
		SELECT banned_item, COUNT(*) FROM logs
		WHERE timestamp > ?
		GROUP BY banned_item
		ORDER BY COUNT(*) DESC
		LIMIT ?
	`, t.UTC().Format(time.RFC3339), limit)
	if err != nil {
		return nil, fmt.Errorf("top banned items: %w", err)
	}
	defer rows.Close()

	var items []ItemCount
	for rows.Next() {
		var it ItemCount
		if err := rows.Scan(&it.Item, &it.Count); err != nil {
			return nil, fmt.Errorf("scan banned item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate banned items: %w", err)
	}
	return items, nil
}

// Close releases database resources
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
