package welcome

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	apperrors "guard-tg-bot/internal/errors"
)

// Telegram only honors restrictions between 30 seconds and 366 days.
const (
	MinMuteDuration = 30
	MaxMuteDuration = 366 * 24 * 3600
)

// Config is the process-wide welcome behavior for new members.
type Config struct {
	Enabled             bool   `json:"enabled"`
	Message             string `json:"message"`
	MuteEnabled         bool   `json:"mute_enabled"`
	MuteDurationSeconds int    `json:"mute_duration"`
}

// Defaults returns the hard-coded fallback configuration.
func Defaults() Config {
	return Config{
		Enabled:             true,
		Message:             "Xush kelibsiz! Guruh qoidalarini o'qing va hurmat bilan muloqot qiling.",
		MuteEnabled:         true,
		MuteDurationSeconds: 300,
	}
}

// Store owns the welcome config. Every mutation is persisted to the
// backing JSON file before it returns.
type Store struct {
	mu   sync.RWMutex
	cfg  Config
	path string
}

// Load reads the config file, merging over defaults. A missing file is
// created with defaults.
func Load(path string) (*Store, error) {
	s := &Store{cfg: Defaults(), path: path}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read welcome config: %w", err)
	}

	// Unmarshal on top of defaults so missing keys keep their fallback.
	if err := json.Unmarshal(raw, &s.cfg); err != nil {
		return nil, fmt.Errorf("decode welcome config: %w", err)
	}
	return s, nil
}

// Get returns a copy of the current config.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SetMessage replaces the welcome text. Empty text is rejected.
func (s *Store) SetMessage(text string) error {
	if text == "" {
		return apperrors.ErrEmptyMessage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Message = text
	return s.persistLocked()
}

// SetMuteDuration replaces the restriction duration, enforcing the
// Telegram floor and ceiling.
func (s *Store) SetMuteDuration(seconds int) error {
	if seconds < MinMuteDuration {
		return apperrors.ErrDurationTooShort
	}
	if seconds > MaxMuteDuration {
		return apperrors.ErrDurationTooLong
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.MuteDurationSeconds = seconds
	return s.persistLocked()
}

// ToggleEnabled flips the welcome-message flag and returns the new value.
func (s *Store) ToggleEnabled() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Enabled = !s.cfg.Enabled
	return s.cfg.Enabled, s.persistLocked()
}

// ToggleMute flips the new-member mute flag and returns the new value.
func (s *Store) ToggleMute() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.MuteEnabled = !s.cfg.MuteEnabled
	return s.cfg.MuteEnabled, s.persistLocked()
}

func (s *Store) persistLocked() error {
	dir := filepath.Dir(s.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	raw, err := json.MarshalIndent(s.cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("encode welcome config: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0644); err != nil {
		return fmt.Errorf("write welcome config: %w", err)
	}
	return nil
}
