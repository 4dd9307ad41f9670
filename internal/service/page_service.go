package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Page Service — business logic for builder pages
// ─────────────────────────────────────────────────────────────

// PageService manages the pages a site is made of.
type PageService struct {
	store     domain.PageStore
	snapshots domain.SnapshotStore
	builder   *BuilderService
	emitter   EventEmitter
	log       *slog.Logger
}

// NewPageService creates a PageService.
func NewPageService(
	store domain.PageStore,
	snapshots domain.SnapshotStore,
	builder *BuilderService,
	emitter EventEmitter,
	logger *slog.Logger,
) *PageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageService{
		store:     store,
		snapshots: snapshots,
		builder:   builder,
		emitter:   emitter,
		log:       logger,
	}
}

func (s *PageService) ListPages() ([]domain.Page, error) {
	pages, err := s.store.ListPages()
	if err != nil {
		return nil, err
	}
	if pages == nil {
		pages = []domain.Page{}
	}
	return pages, nil
}

func (s *PageService) GetPage(id string) (*domain.Page, error) {
	return s.store.GetPage(id)
}

// FindPage resolves ref as a page id first and then as a slug.
func (s *PageService) FindPage(ref string) (*domain.Page, error) {
	p, err := s.store.GetPage(ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	pages, err := s.store.ListPages()
	if err != nil {
		return nil, err
	}
	for i := range pages {
		if pages[i].Slug == ref {
			return &pages[i], nil
		}
	}
	return nil, fmt.Errorf("page %q: %w", ref, storage.ErrNotFound)
}

// CreatePage creates an empty page. Its slug is derived from name and made
// unique among existing pages.
func (s *PageService) CreatePage(ctx context.Context, name string) (*domain.Page, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("page name must not be empty")
	}
	slug, err := s.uniqueSlug(Slugify(name), "")
	if err != nil {
		return nil, err
	}
	p := &domain.Page{
		ID:   uuid.New().String(),
		Name: name,
		Slug: slug,
	}
	if err := s.store.CreatePage(p); err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	s.emitter.Emit(ctx, EventPagesChanged, p.ID)
	s.log.Info("page created", "page", p.ID, "slug", p.Slug)
	return p, nil
}

// RenamePage changes the display name. The slug stays, so exported file
// names and links keep working.
func (s *PageService) RenamePage(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("page name must not be empty")
	}
	p, err := s.store.GetPage(id)
	if err != nil {
		return err
	}
	p.Name = name
	if err := s.store.UpdatePage(p); err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventPagesChanged, id)
	return nil
}

// DeletePage drops the open session, the saved tree and the page itself.
func (s *PageService) DeletePage(ctx context.Context, id string) error {
	if _, err := s.store.GetPage(id); err != nil {
		return err
	}
	if s.builder != nil {
		s.builder.Discard(id)
	}
	if err := s.snapshots.DeleteSnapshot(id); err != nil {
		return fmt.Errorf("delete page %s: %w", id, err)
	}
	if err := s.store.DeletePage(id); err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventPagesChanged, id)
	s.log.Info("page deleted", "page", id)
	return nil
}

// GetPageState returns the page with its current component tree.
func (s *PageService) GetPageState(id string) (*domain.PageState, error) {
	return s.builder.PageState(id)
}

func (s *PageService) uniqueSlug(base, exceptID string) (string, error) {
	pages, err := s.store.ListPages()
	if err != nil {
		return "", err
	}
	taken := make(map[string]bool, len(pages))
	for _, p := range pages {
		if p.ID != exceptID {
			taken[p.Slug] = true
		}
	}
	candidate := base
	for n := 2; taken[candidate]; n++ {
		candidate = base + "-" + strconv.Itoa(n)
	}
	return candidate, nil
}

// Slugify transliterates name to ASCII and joins its words with dashes, so
// "Café Menü" becomes "cafe-menu". A name with nothing usable yields "page".
func Slugify(name string) string {
	s := slug.Make(strings.ReplaceAll(name, "_", " "))
	if s == "" {
		return "page"
	}
	return s
}
