package builder

import (
	"sort"

	"sitebuilder/internal/domain"
)

// siblings returns the components of parentID's group sorted by order.
// Must be called with s.mu held.
func (s *Store) siblings(parentID string) []*domain.Component {
	var group []*domain.Component
	for _, c := range s.components {
		if c.ParentID == parentID {
			group = append(group, c)
		}
	}
	sort.SliceStable(group, func(i, j int) bool {
		if group[i].Order != group[j].Order {
			return group[i].Order < group[j].Order
		}
		return group[i].ID < group[j].ID
	})
	return group
}

// renumber rewrites parentID's group to orders 0..n-1, keeping the current
// relative sequence.
func (s *Store) renumber(parentID string) {
	assignOrder(s.siblings(parentID))
}

func assignOrder(group []*domain.Component) {
	for i, c := range group {
		c.Order = i
	}
}

func indexOf(group []*domain.Component, id string) int {
	for i, c := range group {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// subtree returns id followed by the ids of all its descendants.
func (s *Store) subtree(id string) []string {
	out := []string{id}
	for i := 0; i < len(out); i++ {
		for _, c := range s.components {
			if c.ParentID == out[i] {
				out = append(out, c.ID)
			}
		}
	}
	return out
}

// parentIDs lists every sibling group key present, including "" for roots.
func (s *Store) parentIDs() []string {
	seen := map[string]bool{"": true}
	out := []string{""}
	for _, c := range s.components {
		if !seen[c.ParentID] {
			seen[c.ParentID] = true
			out = append(out, c.ParentID)
		}
	}
	return out
}

func hasCycle(components map[string]*domain.Component, id string) bool {
	seen := map[string]bool{}
	for cur := components[id]; cur != nil && cur.ParentID != ""; cur = components[cur.ParentID] {
		if seen[cur.ID] {
			return true
		}
		seen[cur.ID] = true
		if cur.ParentID == id {
			return true
		}
	}
	return false
}

// appendTree appends the group under parentID and, depth first, each
// member's own children.
func (s *Store) appendTree(out []domain.Component, parentID string) []domain.Component {
	for _, c := range s.siblings(parentID) {
		out = append(out, c.Clone())
		out = s.appendTree(out, c.ID)
	}
	return out
}
