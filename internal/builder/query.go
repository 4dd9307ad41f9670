package builder

import "sitebuilder/internal/domain"

// Components returns every component in display order: the root group by
// order, each root immediately followed by its descendants.
func (s *Store) Components() []domain.Component {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appendTree(make([]domain.Component, 0, len(s.components)), "")
}

// Roots returns the root sibling group by order.
func (s *Store) Roots() []domain.Component {
	return s.Children("")
}

// Children returns the components directly nested under id, by order.
// An empty id yields the roots.
func (s *Store) Children(id string) []domain.Component {
	s.mu.RLock()
	defer s.mu.RUnlock()
	group := s.siblings(id)
	out := make([]domain.Component, len(group))
	for i, c := range group {
		out[i] = c.Clone()
	}
	return out
}

// Component returns a copy of the component with the given id.
func (s *Store) Component(id string) (domain.Component, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.components[id]
	if !ok {
		return domain.Component{}, false
	}
	return c.Clone(), true
}

// SelectedID returns the selected component id, or "" when nothing is
// selected.
func (s *Store) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedID
}

// Selected returns the selected component, if any.
func (s *Store) Selected() (domain.Component, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.components[s.selectedID]
	if !ok {
		return domain.Component{}, false
	}
	return c.Clone(), true
}

// Len returns the number of components on the page.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.components)
}

// Snapshot returns the complete state, components in display order.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		Components: s.appendTree(make([]domain.Component, 0, len(s.components)), ""),
		SelectedID: s.selectedID,
	}
}
