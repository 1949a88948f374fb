package session

import "sync"

// State is the admin console's position in a multi-step flow.
type State int

const (
	Idle State = iota
	AwaitingWelcomeText
	AwaitingMuteDuration
	AwaitingGroupID
)

// Key identifies one conversation with one admin.
type Key struct {
	UserID int64
	ChatID int64
}

// Store holds transient per-admin console sessions. Sessions are created
// on menu entry and cleared on every terminal transition; there is no TTL,
// a restart drops them all.
type Store struct {
	mu       sync.Mutex
	sessions map[Key]State
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{sessions: make(map[Key]State)}
}

// Set records the state for a conversation.
func (s *Store) Set(userID, chatID int64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == Idle {
		delete(s.sessions, Key{UserID: userID, ChatID: chatID})
		return
	}
	s.sessions[Key{UserID: userID, ChatID: chatID}] = state
}

// Get returns the current state for a conversation, Idle if none.
func (s *Store) Get(userID, chatID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[Key{UserID: userID, ChatID: chatID}]
}

// Clear drops the session for a conversation.
func (s *Store) Clear(userID, chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, Key{UserID: userID, ChatID: chatID})
}
