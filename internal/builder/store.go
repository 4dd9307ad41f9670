// Package builder holds the website builder's component tree: an in-memory,
// ordered registry of component instances with a single selection slot.
//
// Every mutator that is handed an id the store does not hold is a silent
// no-op. The only errors are an unknown component type and an unknown parent
// on insert, both of which point at a caller/catalog mismatch rather than a
// stale reference.
package builder

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"sitebuilder/internal/catalog"
	"sitebuilder/internal/domain"
)

// ErrParentNotFound is returned when inserting under a parent id the store
// does not hold.
var ErrParentNotFound = errors.New("parent component not found")

// Catalog supplies default props per component type.
type Catalog interface {
	DefaultProps(t domain.ComponentType) (domain.Props, error)
}

// Option configures a Store.
type Option func(*Store)

// WithCatalog replaces the default component catalog.
func WithCatalog(c Catalog) Option {
	return func(s *Store) { s.catalog = c }
}

// WithIDGenerator replaces uuid-based id generation. The generator must never
// repeat a value.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// Store is the authoritative builder state of one page. It is safe for use
// by several goroutines; concurrent updates are last-writer-wins.
type Store struct {
	mu         sync.RWMutex
	components map[string]*domain.Component
	selectedID string

	catalog Catalog
	newID   func() string

	subMu     sync.Mutex
	subs      map[int]func(domain.Snapshot)
	nextSubID int

	// seq numbers committed changes under mu. deliverMu serialises
	// deliveries so subscribers never see an older snapshot after a newer one.
	seq       uint64
	deliverMu sync.Mutex
	delivered uint64
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		components: make(map[string]*domain.Component),
		catalog:    catalog.Default(),
		newID:      uuid.NewString,
		subs:       make(map[int]func(domain.Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddComponent places a new component of type t at the end of parentID's
// sibling group (the root group when parentID is empty), seeds it with the
// catalog defaults and selects it.
func (s *Store) AddComponent(t domain.ComponentType, parentID string) (string, error) {
	props, err := s.catalog.DefaultProps(t)
	if err != nil {
		return "", fmt.Errorf("add component: %w", err)
	}

	s.mu.Lock()
	if parentID != "" {
		if _, ok := s.components[parentID]; !ok {
			s.mu.Unlock()
			return "", fmt.Errorf("add component: %w: %s", ErrParentNotFound, parentID)
		}
	}
	c := &domain.Component{
		ID:       s.uniqueID(),
		Type:     t,
		Props:    props,
		Order:    len(s.siblings(parentID)),
		ParentID: parentID,
	}
	s.components[c.ID] = c
	s.selectedID = c.ID
	snap, seq := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap, seq)
	return c.ID, nil
}

// RemoveComponent deletes the component and everything nested under it,
// then renumbers the remaining siblings. The selection is cleared when it
// pointed into the removed subtree.
func (s *Store) RemoveComponent(id string) {
	s.mu.Lock()
	c, ok := s.components[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	parentID := c.ParentID
	for _, removed := range s.subtree(id) {
		delete(s.components, removed)
		if removed == s.selectedID {
			s.selectedID = ""
		}
	}
	s.renumber(parentID)
	snap, seq := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap, seq)
}

// UpdateComponent shallow-merges patch into the component's props. Keys not
// named in patch are kept; id, type, order and parent never change.
func (s *Store) UpdateComponent(id string, patch domain.Props) {
	if len(patch) == 0 {
		return
	}
	s.mu.Lock()
	c, ok := s.components[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	if c.Props == nil {
		c.Props = domain.Props{}
	}
	c.Props.Merge(patch)
	snap, seq := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap, seq)
}

// UpdateComponentIf is UpdateComponent guarded by check, which sees the
// component and its props after the merge. Checking and writing happen under
// one lock, so no concurrent update can slip in between. A check error
// leaves the component unchanged and is returned as is. check runs with the
// store locked and must not call back into it.
func (s *Store) UpdateComponentIf(id string, patch domain.Props, check func(c domain.Component, merged domain.Props) error) error {
	if len(patch) == 0 {
		return nil
	}
	s.mu.Lock()
	c, ok := s.components[id]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	merged := c.Props.Clone()
	merged.Merge(patch)
	if check != nil {
		if err := check(c.Clone(), merged.Clone()); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	c.Props = merged
	snap, seq := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap, seq)
	return nil
}

// SelectComponent sets the selection. An empty id clears it; an id the
// store does not hold leaves the selection as it was.
func (s *Store) SelectComponent(id string) {
	s.mu.Lock()
	if id == s.selectedID {
		s.mu.Unlock()
		return
	}
	if id != "" {
		if _, ok := s.components[id]; !ok {
			s.mu.Unlock()
			return
		}
	}
	s.selectedID = id
	snap, seq := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap, seq)
}

// MoveComponent swaps the component with its neighbour in the given
// direction. Moving the first sibling up or the last one down does nothing.
func (s *Store) MoveComponent(id string, dir domain.Direction) {
	if !dir.Valid() {
		return
	}
	s.mu.Lock()
	c, ok := s.components[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	group := s.siblings(c.ParentID)
	idx := indexOf(group, id)
	target := idx - 1
	if dir == domain.DirectionDown {
		target = idx + 1
	}
	if idx < 0 || target < 0 || target >= len(group) {
		s.mu.Unlock()
		return
	}
	group[idx], group[target] = group[target], group[idx]
	assignOrder(group)
	snap, seq := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap, seq)
}

// DuplicateComponent copies the component (and anything nested under it)
// with fresh ids, appends the copy to the same sibling group and selects it.
// Returns the copy's id, or "" when id is unknown.
func (s *Store) DuplicateComponent(id string) string {
	s.mu.Lock()
	src, ok := s.components[id]
	if !ok {
		s.mu.Unlock()
		return ""
	}
	order := len(s.siblings(src.ParentID))
	copyID := s.copyTree(src, src.ParentID, order)
	s.selectedID = copyID
	snap, seq := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap, seq)
	return copyID
}

// Restore replaces the whole state with snap. Orders are re-densified per
// group (keeping their relative sequence) and a selection that references a
// missing component is dropped.
func (s *Store) Restore(snap domain.Snapshot) error {
	next := make(map[string]*domain.Component, len(snap.Components))
	for _, c := range snap.Components {
		if c.ID == "" {
			return errors.New("restore: component without id")
		}
		if _, dup := next[c.ID]; dup {
			return fmt.Errorf("restore: duplicate component id %s", c.ID)
		}
		cc := c.Clone()
		next[c.ID] = &cc
	}
	for _, c := range next {
		if c.ParentID == "" {
			continue
		}
		if _, ok := next[c.ParentID]; !ok {
			return fmt.Errorf("restore: component %s: %w: %s", c.ID, ErrParentNotFound, c.ParentID)
		}
		if hasCycle(next, c.ID) {
			return fmt.Errorf("restore: component %s is nested inside itself", c.ID)
		}
	}

	s.mu.Lock()
	s.components = next
	for _, parentID := range s.parentIDs() {
		s.renumber(parentID)
	}
	s.selectedID = ""
	if _, ok := next[snap.SelectedID]; ok {
		s.selectedID = snap.SelectedID
	}
	out, seq := s.commitLocked()
	s.mu.Unlock()

	s.notify(out, seq)
	return nil
}

// Subscribe registers fn to receive the new snapshot after every change.
// Deliveries are ordered: when changes race, a snapshot older than one
// already delivered is skipped, so the last snapshot seen is always the
// current state. fn may read the store but must not mutate it.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(domain.Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// commitLocked numbers a change and snapshots it. s.mu must be held for
// writing.
func (s *Store) commitLocked() (domain.Snapshot, uint64) {
	s.seq++
	return s.snapshotLocked(), s.seq
}

func (s *Store) notify(snap domain.Snapshot, seq uint64) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if seq <= s.delivered {
		return
	}
	s.delivered = seq

	s.subMu.Lock()
	fns := make([]func(domain.Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap.Clone())
	}
}

// uniqueID draws ids until one is free. With uuids the loop runs once; it
// guards custom generators.
func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if _, taken := s.components[id]; !taken && id != "" {
			return id
		}
	}
}

// copyTree clones src and its descendants under parentID at the given order
// and returns the new root id. Must be called with s.mu held.
func (s *Store) copyTree(src *domain.Component, parentID string, order int) string {
	c := src.Clone()
	c.ID = s.uniqueID()
	c.ParentID = parentID
	c.Order = order
	children := s.siblings(src.ID)
	s.components[c.ID] = &c
	for _, child := range children {
		s.copyTree(child, c.ID, child.Order)
	}
	return c.ID
}
