package policy

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	apperrors "guard-tg-bot/internal/errors"
)

// SQLiteStore implements Store using SQLite for persistence. Each chat's
// category flags are kept as a single JSON document, matching the settings
// blob contract consumed by external tooling. The mutex serializes the
// read-modify-write of that document across concurrent updates.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed policy store
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
		CREATE TABLE IF NOT EXISTS group_policies (
			chat_id INTEGER PRIMARY KEY,
			categories TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get retrieves the policy for a chat, creating defaults if absent.
// Categories missing from the persisted document are back-filled as allowed.
func (s *SQLiteStore) Get(chatID int64) (*GroupPolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(chatID)
}

func (s *SQLiteStore) getLocked(chatID int64) (*GroupPolicy, error) {
	var raw string
	err := s.db.QueryRow(
		"SELECT categories FROM group_policies WHERE chat_id = ?",
		chatID,
	).Scan(&raw)

	if err == sql.ErrNoRows {
		p := &GroupPolicy{ChatID: chatID, Categories: defaultCategories()}
		if err := s.save(p); err != nil {
			return nil, err
		}
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query group policy: %w", err)
	}

	categories := make(map[Category]bool)
	if err := json.Unmarshal([]byte(raw), &categories); err != nil {
		return nil, fmt.Errorf("decode group policy: %w", err)
	}
	for _, c := range AllCategories {
		if _, ok := categories[c]; !ok {
			categories[c] = true
		}
	}
	return &GroupPolicy{ChatID: chatID, Categories: categories}, nil
}

// Set updates one category flag and persists the full document.
func (s *SQLiteStore) Set(chatID int64, category Category, value bool) error {
	if !Valid(category) {
		return apperrors.ErrInvalidCategory
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(chatID, category, value)
}

// SetAll applies one category flag to every listed chat. Chats that fail
// are skipped; their errors come back joined.
func (s *SQLiteStore) SetAll(chatIDs []int64, category Category, value bool) error {
	if !Valid(category) {
		return apperrors.ErrInvalidCategory
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, chatID := range chatIDs {
		if err := s.setLocked(chatID, category, value); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *SQLiteStore) setLocked(chatID int64, category Category, value bool) error {
	p, err := s.getLocked(chatID)
	if err != nil {
		return err
	}
	p.Categories[category] = value
	return s.save(p)
}

func (s *SQLiteStore) save(p *GroupPolicy) error {
	raw, err := json.Marshal(p.Categories)
	if err != nil {
		return fmt.Errorf("encode group policy: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO group_policies (chat_id, categories)
		VALUES (?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			categories = excluded.categories
	`, p.ChatID, string(raw))

	if err != nil {
		return fmt.Errorf("save group policy: %w", err)
	}
	return nil
}

// Close releases database resources
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
