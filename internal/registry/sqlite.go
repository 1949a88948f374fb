package registry

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite for persistence
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed group catalog
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
		CREATE TABLE IF NOT EXISTS groups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			chat_id INTEGER NOT NULL UNIQUE
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create groups table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Add registers a group, once per chat id. The UNIQUE constraint on
// chat_id makes duplicate joins a no-op.
func (s *SQLiteStore) Add(name string, chatID int64) (int64, bool, error) {
	res, err := s.db.Exec(
		"INSERT INTO groups (name, chat_id) VALUES (?, ?) ON CONFLICT(chat_id) DO NOTHING",
		name, chatID,
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert group: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("insert group: %w", err)
	}
	if affected == 0 {
		existing, err := s.ByChatID(chatID)
		if err != nil {
			return 0, false, err
		}
		if existing == nil {
			return 0, false, fmt.Errorf("group %d vanished after duplicate insert", chatID)
		}
		return existing.ID, false, nil
	}

	ordinal, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("insert group: %w", err)
	}
	return ordinal, true, nil
}

// ByChatID looks up a group by chat id, nil if unknown
func (s *SQLiteStore) ByChatID(chatID int64) (*Group, error) {
	var g Group
	err := s.db.QueryRow(
		"SELECT id, name, chat_id FROM groups WHERE chat_id = ?",
		chatID,
	).Scan(&g.ID, &g.Name, &g.ChatID)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query group: %w", err)
	}
	return &g, nil
}

// All returns every registered group ordered by ordinal
func (s *SQLiteStore) All() ([]Group, error) {
	rows, err := s.db.Query("SELECT id, name, chat_id FROM groups ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.ChatID); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, nil
}

// Close releases database resources
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
