// Package store holds the client-side canonical set of elements.
package store

import (
	"sync"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
)

// ElementStore is an insertion-ordered map of elements keyed by id. Local
// optimistic writes and remote writes both go through Upsert and
// RemoveMany; the last applied write wins.
type ElementStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.Element
}

// New creates an empty store.
func New() *ElementStore {
	return &ElementStore{byID: make(map[string]domain.Element)}
}

// Upsert replaces an existing element in place or appends a new one.
func (s *ElementStore) Upsert(el domain.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(el)
}

// UpsertMany applies Upsert to each element in order.
func (s *ElementStore) UpsertMany(els []domain.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, el := range els {
		s.upsertLocked(el)
	}
}

func (s *ElementStore) upsertLocked(el domain.Element) {
	if _, ok := s.byID[el.ID]; !ok {
		s.order = append(s.order, el.ID)
	}
	s.byID[el.ID] = el.Clone()
}

// RemoveMany deletes the given ids. Unknown ids are ignored. It returns
// the number of elements removed.
func (s *ElementStore) RemoveMany(ids []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.byID[id]; ok {
			drop[id] = struct{}{}
			delete(s.byID, id)
		}
	}
	if len(drop) == 0 {
		return 0
	}

	kept := s.order[:0]
	for _, id := range s.order {
		if _, gone := drop[id]; !gone {
			kept = append(kept, id)
		}
	}
	s.order = kept
	return len(drop)
}

// Reset replaces the whole content, used for hydration.
func (s *ElementStore) Reset(els []domain.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = s.order[:0]
	s.byID = make(map[string]domain.Element, len(els))
	for _, el := range els {
		s.upsertLocked(el)
	}
}

// Get returns the element with the given id.
func (s *ElementStore) Get(id string) (domain.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	el, ok := s.byID[id]
	if !ok {
		return domain.Element{}, false
	}
	return el.Clone(), true
}

// All returns the elements in insertion order.
func (s *ElementStore) All() []domain.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Element, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out
}

// Len returns the number of elements.
func (s *ElementStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// HitTest returns the topmost element whose bounds contain p. Topmost is
// the one found first when scanning insertion order in reverse.
func (s *ElementStore) HitTest(p domain.Point) (domain.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.order) - 1; i >= 0; i-- {
		el := s.byID[s.order[i]]
		if el.Bounds().Contains(p) {
			return el.Clone(), true
		}
	}
	return domain.Element{}, false
}

// Intersecting returns, in insertion order, the ids of elements whose
// bounds intersect r.
func (s *ElementStore) Intersecting(r domain.Rect) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, id := range s.order {
		if s.byID[id].Bounds().Intersects(r) {
			ids = append(ids, id)
		}
	}
	return ids
}
