// Package hub keeps the per-board rooms of live connections and fans
// messages out to them.
package hub

import (
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
	"github.com/weiawesome/wes-io-canvas/pkg/log"
)

var (
	// ErrSendBufferFull is returned by a member whose outbound queue is full.
	ErrSendBufferFull = errors.New("send buffer full")
	// ErrRateLimited marks inbound messages dropped by the per-connection
	// rate limit.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// Member is a connection that can be placed in a room.
type Member interface {
	ID() string
	Send(data []byte) error
}

// Stats is a snapshot of the registry.
type Stats struct {
	Rooms   int            `json:"rooms"`
	Members int            `json:"members"`
	ByBoard map[string]int `json:"by_board"`
}

// Registry maps board ids to the members currently joined to them. A room
// exists only while it has members.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]map[string]Member // boardID -> memberID -> member
	boardOf map[string]string            // memberID -> boardID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:   make(map[string]map[string]Member),
		boardOf: make(map[string]string),
	}
}

// Join puts m in the room of boardID, removing it from any room it was in.
// It returns the previous board, or "".
func (r *Registry) Join(m Member, boardID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.leaveLocked(m.ID())

	room, ok := r.rooms[boardID]
	if !ok {
		room = make(map[string]Member)
		r.rooms[boardID] = room
	}
	room[m.ID()] = m
	r.boardOf[m.ID()] = boardID

	l := log.L()
	l.Info().Str(log.FieldClientID, m.ID()).Str(log.FieldBoardID, boardID).Int("members", len(room)).Msg("client joined board")
	return prev
}

// Leave removes m from its room and returns the board it left.
func (r *Registry) Leave(m Member) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(m.ID())
}

func (r *Registry) leaveLocked(id string) string {
	boardID, ok := r.boardOf[id]
	if !ok {
		return ""
	}
	delete(r.boardOf, id)

	l := log.L()
	if room, ok := r.rooms[boardID]; ok {
		delete(room, id)
		if len(room) == 0 {
			delete(r.rooms, boardID)
			l.Info().Str(log.FieldBoardID, boardID).Msg("room removed")
		}
	}
	l.Info().Str(log.FieldClientID, id).Str(log.FieldBoardID, boardID).Msg("client left board")
	return boardID
}

// BoardOf returns the board m is joined to.
func (r *Registry) BoardOf(m Member) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.boardOf[m.ID()]
	return b, ok
}

// Broadcast sends data to every member of boardID except excludeID and
// returns how many members it was handed to. Members whose queue is full
// are evicted.
func (r *Registry) Broadcast(boardID string, data []byte, excludeID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for id, m := range r.rooms[boardID] {
		if id == excludeID {
			continue
		}
		if err := m.Send(data); err != nil {
			l := log.L()
			l.Warn().Err(err).Str(log.FieldClientID, id).Str(log.FieldBoardID, boardID).Msg("evicting slow client")
			go r.evict(m)
			continue
		}
		delivered++
	}
	return delivered
}

// sessionHolder is implemented by members that track their joined board.
type sessionHolder interface {
	Session() *domain.Session
}

// evict drops m from its room and clears its session so that messages it
// sends before the disconnect handler runs are rejected as not joined.
func (r *Registry) evict(m Member) {
	r.Leave(m)
	if h, ok := m.(sessionHolder); ok && h.Session() != nil {
		h.Session().Leave()
	}
	if c, ok := m.(io.Closer); ok {
		c.Close()
	}
}

// RoomSize returns the number of members joined to boardID.
func (r *Registry) RoomSize(boardID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[boardID])
}

// MemberIDs returns the sorted member ids of boardID.
func (r *Registry) MemberIDs(boardID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.rooms[boardID]))
	for id := range r.rooms[boardID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Stats returns room and member counts.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Stats{Rooms: len(r.rooms), ByBoard: make(map[string]int, len(r.rooms))}
	for boardID, room := range r.rooms {
		s.ByBoard[boardID] = len(room)
		s.Members += len(room)
	}
	return s
}
