package domain

import (
	"sync"
	"time"
)

// Session is the server-side state of one realtime connection.
type Session struct {
	ID           string
	CreatedAt    time.Time
	LastActiveAt time.Time

	boardID string
	user    *Identity
	strikes int
	mu      sync.RWMutex
}

// NewSession creates a session that has not joined any board yet.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// Join records the board the connection joined and resets the abuse
// counter. It returns the previously joined board, if any.
func (s *Session) Join(boardID string, user *Identity) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.boardID
	s.boardID = boardID
	s.user = user
	s.strikes = 0
	s.LastActiveAt = time.Now()
	return prev
}

// Leave clears the joined board and returns it.
func (s *Session) Leave() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.boardID
	s.boardID = ""
	return prev
}

// BoardID returns the joined board, or "" before joinBoard.
func (s *Session) BoardID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boardID
}

// Joined reports whether the connection completed the join handshake.
func (s *Session) Joined() bool {
	return s.BoardID() != ""
}

// User returns the identity sent with joinBoard.
func (s *Session) User() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Strike counts one rejected mutation from an unjoined connection and
// returns the running total.
func (s *Session) Strike() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strikes++
	return s.strikes
}

// UpdateActivity updates the last active timestamp.
func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
}
