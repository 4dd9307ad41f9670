package domain

import "time"

type ComponentType string

const (
	ComponentHero              ComponentType = "hero"
	ComponentIconsSection      ComponentType = "icons-section"
	ComponentBackgroundSection ComponentType = "background-section"
	ComponentHeading           ComponentType = "heading"
	ComponentParagraph         ComponentType = "paragraph"
	ComponentButton            ComponentType = "button"
	ComponentImage             ComponentType = "image"
	ComponentGallery           ComponentType = "gallery"
	ComponentTestimonial       ComponentType = "testimonial"
	ComponentDivider           ComponentType = "divider"
	ComponentSpacer            ComponentType = "spacer"

	// ComponentUnknown is what a renderer falls back to for a type it does not
	// recognize. It has no catalog entry and cannot be added to a page.
	ComponentUnknown ComponentType = "unknown"
)

// Direction is the argument of a move: one slot towards the start or the end
// of the sibling group.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Valid reports whether d is one of the two supported directions.
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// Component is one placed block on the builder canvas.
type Component struct {
	ID       string        `json:"id"`
	Type     ComponentType `json:"type"`
	Props    Props         `json:"props"`
	Order    int           `json:"order"`
	ParentID string        `json:"parentId,omitempty"` // empty for root components
}

// Clone returns a copy of c whose props share no memory with the original.
func (c Component) Clone() Component {
	c.Props = c.Props.Clone()
	return c
}

// IsRoot reports whether c sits in the root sibling group.
func (c Component) IsRoot() bool {
	return c.ParentID == ""
}

// Snapshot is the complete builder state of one page: every component in
// display order plus the current selection.
type Snapshot struct {
	Components []Component `json:"components"`
	SelectedID string      `json:"selectedId,omitempty"`
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{SelectedID: s.SelectedID, Components: make([]Component, len(s.Components))}
	for i, c := range s.Components {
		out.Components[i] = c.Clone()
	}
	return out
}

// PageDocument is the portable form of a page used by export, import and
// directory sync.
type PageDocument struct {
	Page       Page      `json:"page"`
	Snapshot   Snapshot  `json:"snapshot"`
	ExportedAt time.Time `json:"exportedAt"`
}

type SnapshotStore interface {
	SaveSnapshot(pageID string, snap Snapshot) error
	LoadSnapshot(pageID string) (Snapshot, error)
	DeleteSnapshot(pageID string) error
}
