package chat

import (
	"sync"

	"github.com/google/uuid"
)

// Session binds one conversation History to an identifier. Each session
// owns an independent History; there is no shared conversation state
// between sessions. The mutex serializes turns when multiple transport
// connections address the same session concurrently.
type Session struct {
	ID      string
	History *History

	mu sync.Mutex
}

// NewSession creates a session with a fresh history and a random ID.
func NewSession() *Session {
	return &Session{
		ID:      uuid.NewString(),
		History: NewHistory(),
	}
}

// NewSessionWithID creates a session under a caller-chosen ID.
func NewSessionWithID(id string) *Session {
	return &Session{
		ID:      id,
		History: NewHistory(),
	}
}

// Snapshot returns a copy of the session's history.
func (s *Session) Snapshot() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.History.Messages()
}

// Clear resets the session's history between turns.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.History.Clear()
}
