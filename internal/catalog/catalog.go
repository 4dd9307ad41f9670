// Package catalog is the component palette: the static table of component
// types the builder knows, their default props and the field schema the
// properties panel edits them with.
package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"sitebuilder/internal/domain"
)

// ErrUnknownType is returned for a component type with no catalog entry.
var ErrUnknownType = errors.New("unknown component type")

// FieldKind tells the properties panel which widget edits a field.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindNumber   FieldKind = "number"
	KindInteger  FieldKind = "integer"
	KindBoolean  FieldKind = "boolean"
	KindSelect   FieldKind = "select"
	KindURL      FieldKind = "url"
	KindColor    FieldKind = "color"
	KindList     FieldKind = "list"
)

// Field describes one editable prop.
type Field struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Kind    FieldKind `json:"kind"`
	Options []any     `json:"options,omitempty"` // select only
	Min     *float64  `json:"min,omitempty"`
	Max     *float64  `json:"max,omitempty"`
	Items   []Field   `json:"items,omitempty"` // list only: fields of each item
}

// Entry is the catalog record for one component type.
type Entry struct {
	Type        domain.ComponentType `json:"type"`
	Label       string               `json:"label"`
	Category    string               `json:"category"`
	Description string               `json:"description"`
	Fields      []Field              `json:"fields"`
	Defaults    domain.Props         `json:"defaults"`

	schema *jsonschema.Schema
}

// Registry maps component types to their entries, remembering registration
// order for the palette.
type Registry struct {
	mu      sync.RWMutex
	entries map[domain.ComponentType]*Entry
	order   []domain.ComponentType
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[domain.ComponentType]*Entry)}
}

// Register adds an entry. Panics on duplicate registration or on a field
// list that does not compile to a valid schema.
func (r *Registry) Register(e Entry) {
	schema, err := compileSchema(e.Type, e.Fields)
	if err != nil {
		panic(fmt.Sprintf("catalog: schema for %q: %v", e.Type, err))
	}
	e.schema = schema
	e.Defaults = e.Defaults.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[e.Type]; exists {
		panic(fmt.Sprintf("catalog: duplicate registration for component type %q", e.Type))
	}
	r.entries[e.Type] = &e
	r.order = append(r.order, e.Type)
}

// Lookup returns a copy of the entry for t.
func (r *Registry) Lookup(t domain.ComponentType) (Entry, error) {
	r.mu.RLock()
	e, ok := r.entries[t]
	r.mu.RUnlock()
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	out := *e
	out.Defaults = e.Defaults.Clone()
	return out, nil
}

// Known reports whether t has an entry.
func (r *Registry) Known(t domain.ComponentType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[t]
	return ok
}

// DefaultProps returns a fresh copy of the default props for t. Callers may
// mutate the result freely.
func (r *Registry) DefaultProps(t domain.ComponentType) (domain.Props, error) {
	r.mu.RLock()
	e, ok := r.entries[t]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return e.Defaults.Clone(), nil
}

// Types lists the registered types in registration order.
func (r *Registry) Types() []domain.ComponentType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.ComponentType(nil), r.order...)
}

// Entries lists copies of all entries in registration order.
func (r *Registry) Entries() []Entry {
	types := r.Types()
	out := make([]Entry, 0, len(types))
	for _, t := range types {
		e, err := r.Lookup(t)
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Validate checks a complete prop set for t against the entry's schema.
// Props the entry does not declare are accepted.
func (r *Registry) Validate(t domain.ComponentType, props domain.Props) error {
	r.mu.RLock()
	e, ok := r.entries[t]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	doc, err := normalize(props)
	if err != nil {
		return fmt.Errorf("validate %s props: %w", t, err)
	}
	if err := e.schema.Validate(doc); err != nil {
		return fmt.Errorf("validate %s props: %w", t, err)
	}
	return nil
}

// ── default registry ───────────────────────────────────────

var defaultRegistry = newDefaultRegistry()

// Default returns the registry seeded with the builder's component types.
func Default() *Registry { return defaultRegistry }

// DefaultProps looks up t in the default registry.
func DefaultProps(t domain.ComponentType) (domain.Props, error) {
	return defaultRegistry.DefaultProps(t)
}

// Lookup looks up t in the default registry.
func Lookup(t domain.ComponentType) (Entry, error) {
	return defaultRegistry.Lookup(t)
}

// Validate validates props against the default registry.
func Validate(t domain.ComponentType, props domain.Props) error {
	return defaultRegistry.Validate(t, props)
}
