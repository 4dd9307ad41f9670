package domain

import "time"

// Page is a named builder canvas. Its components live in the snapshot store.
type Page struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Slug      string    `json:"slug" bson:"slug"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// PageState represents the complete state of a page for rendering.
// Returned to the canvas and properties panel.
type PageState struct {
	Page     Page        `json:"page"`
	Roots    []Component `json:"roots"`
	Snapshot Snapshot    `json:"snapshot"`
	Dirty    bool        `json:"dirty"`
}

type PageStore interface {
	CreatePage(p *Page) error
	GetPage(id string) (*Page, error)
	ListPages() ([]Page, error)
	UpdatePage(p *Page) error
	DeletePage(id string) error
}
