package interaction

// selection is an insertion-ordered set of element ids.
type selection struct {
	ids []string
}

func (s *selection) has(id string) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

func (s *selection) len() int { return len(s.ids) }

func (s *selection) set(ids ...string) {
	s.ids = append(s.ids[:0:0], ids...)
}

func (s *selection) add(id string) {
	if !s.has(id) {
		s.ids = append(s.ids, id)
	}
}

func (s *selection) remove(id string) {
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
			return
		}
	}
}

func (s *selection) toggle(id string) {
	if s.has(id) {
		s.remove(id)
		return
	}
	s.add(id)
}

func (s *selection) clear() { s.ids = nil }

func (s *selection) list() []string {
	return append([]string(nil), s.ids...)
}
