package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is an issued admin token.
type Session struct {
	Token     string    `json:"token"`
	Principal Principal `json:"principal"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Sessions keeps admin tokens in memory. Expired tokens are dropped when
// they are looked up or when a new token is issued.
type Sessions struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]Session
}

// NewSessions creates a session table with the given token lifetime.
func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Sessions{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]Session),
	}
}

// SetClock replaces the time source. Used by tests.
func (s *Sessions) SetClock(now func() time.Time) {
	if now == nil {
		return
	}
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Issue creates a token for principal.
func (s *Sessions) Issue(principal Principal) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for token, session := range s.sessions {
		if !now.Before(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
	session := Session{
		Token:     uuid.NewString(),
		Principal: principal,
		ExpiresAt: now.Add(s.ttl),
	}
	s.sessions[session.Token] = session
	return session
}

// Lookup returns the live session for token.
func (s *Sessions) Lookup(token string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return Session{}, false
	}
	if !s.now().Before(session.ExpiresAt) {
		delete(s.sessions, token)
		return Session{}, false
	}
	return session, true
}

// Revoke removes token. Unknown tokens are ignored.
func (s *Sessions) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
