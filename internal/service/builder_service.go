package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"sitebuilder/internal/builder"
	"sitebuilder/internal/catalog"
	"sitebuilder/internal/domain"
)

// ErrInvalidProps is returned when an update would leave a component with
// props its catalog entry rejects.
var ErrInvalidProps = errors.New("invalid component props")

// PersistMode controls when builder changes are written to storage.
type PersistMode string

const (
	// PersistImmediate saves the page after every change.
	PersistImmediate PersistMode = "immediate"
	// PersistScheduled only marks the page dirty; an Autosaver flushes it.
	PersistScheduled PersistMode = "scheduled"
)

// PropsValidator checks a complete prop set for a component type.
type PropsValidator interface {
	Validate(t domain.ComponentType, props domain.Props) error
}

// ─────────────────────────────────────────────────────────────
// Builder Service — per-page builder sessions backed by storage
// ─────────────────────────────────────────────────────────────

// BuilderService keeps one builder.Store per open page. A page is loaded
// from the snapshot store the first time it is touched; every change is
// pushed through the EventEmitter and persisted according to the mode.
type BuilderService struct {
	pages     domain.PageStore
	snapshots domain.SnapshotStore
	emitter   EventEmitter
	validator PropsValidator
	log       *slog.Logger

	mu       sync.Mutex
	mode     PersistMode
	sessions map[string]*session
}

type session struct {
	store  *builder.Store
	dirty  atomic.Bool
	unsub  func()
	saveMu sync.Mutex
	// savedAt is the page's UpdatedAt as last written or loaded by this
	// process. Guarded by saveMu.
	savedAt time.Time
}

// NewBuilderService creates a BuilderService in PersistImmediate mode.
func NewBuilderService(pages domain.PageStore, snapshots domain.SnapshotStore, emitter EventEmitter, logger *slog.Logger) *BuilderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BuilderService{
		pages:     pages,
		snapshots: snapshots,
		emitter:   emitter,
		validator: catalog.Default(),
		log:       logger,
		mode:      PersistImmediate,
		sessions:  make(map[string]*session),
	}
}

// SetMode switches the persistence mode. Switching to immediate flushes
// nothing by itself; call FlushAll for that.
func (s *BuilderService) SetMode(m PersistMode) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
}

// Mode returns the current persistence mode.
func (s *BuilderService) Mode() PersistMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// session returns the open session for pageID, loading it on first use.
func (s *BuilderService) session(pageID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[pageID]; ok {
		return sess, nil
	}

	page, err := s.pages.GetPage(pageID)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshots.LoadSnapshot(pageID)
	if err != nil {
		return nil, fmt.Errorf("load page %s: %w", pageID, err)
	}
	store := builder.New()
	if err := store.Restore(snap); err != nil {
		return nil, fmt.Errorf("load page %s: %w", pageID, err)
	}

	sess := &session{store: store, savedAt: page.UpdatedAt}
	sess.unsub = store.Subscribe(func(snap domain.Snapshot) {
		sess.dirty.Store(true)
		s.emitter.Emit(context.Background(), EventBuilderChanged, BuilderChange{PageID: pageID, Snapshot: snap})
	})
	s.sessions[pageID] = sess
	s.log.Debug("page opened", "page", pageID, "components", store.Len())
	return sess, nil
}

// Store returns the live builder store of a page.
func (s *BuilderService) Store(pageID string) (*builder.Store, error) {
	sess, err := s.session(pageID)
	if err != nil {
		return nil, err
	}
	return sess.store, nil
}

// afterChange persists the page right away in immediate mode.
func (s *BuilderService) afterChange(ctx context.Context, pageID string, sess *session) error {
	if s.Mode() != PersistImmediate {
		return nil
	}
	return s.flush(ctx, pageID, sess, false)
}

// ── Mutations ──────────────────────────────────────────────

// AddComponent appends a component of type t under parentID (root when
// empty) and returns it.
func (s *BuilderService) AddComponent(ctx context.Context, pageID string, t domain.ComponentType, parentID string) (domain.Component, error) {
	sess, err := s.session(pageID)
	if err != nil {
		return domain.Component{}, err
	}
	id, err := sess.store.AddComponent(t, parentID)
	if err != nil {
		return domain.Component{}, err
	}
	c, _ := sess.store.Component(id)
	return c, s.afterChange(ctx, pageID, sess)
}

// RemoveComponent deletes a component and its descendants.
func (s *BuilderService) RemoveComponent(ctx context.Context, pageID, id string) error {
	sess, err := s.session(pageID)
	if err != nil {
		return err
	}
	sess.store.RemoveComponent(id)
	return s.afterChange(ctx, pageID, sess)
}

// UpdateComponent merges patch into the component's props after checking
// the merged result against the catalog. Components whose type the catalog
// does not know are updated unchecked.
func (s *BuilderService) UpdateComponent(ctx context.Context, pageID, id string, patch domain.Props) error {
	sess, err := s.session(pageID)
	if err != nil {
		return err
	}
	if _, ok := sess.store.Component(id); !ok || len(patch) == 0 {
		return nil
	}
	err = sess.store.UpdateComponentIf(id, patch, func(c domain.Component, merged domain.Props) error {
		if err := s.validator.Validate(c.Type, merged); err != nil && !errors.Is(err, catalog.ErrUnknownType) {
			return fmt.Errorf("update %s: %w: %w", id, ErrInvalidProps, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.afterChange(ctx, pageID, sess)
}

// SelectComponent sets (or with an empty id clears) the page's selection.
func (s *BuilderService) SelectComponent(ctx context.Context, pageID, id string) error {
	sess, err := s.session(pageID)
	if err != nil {
		return err
	}
	sess.store.SelectComponent(id)
	return s.afterChange(ctx, pageID, sess)
}

// MoveComponent moves a component one slot within its sibling group.
func (s *BuilderService) MoveComponent(ctx context.Context, pageID, id string, dir domain.Direction) error {
	sess, err := s.session(pageID)
	if err != nil {
		return err
	}
	sess.store.MoveComponent(id, dir)
	return s.afterChange(ctx, pageID, sess)
}

// DuplicateComponent copies a component subtree and returns the copy's id,
// or "" when id is unknown.
func (s *BuilderService) DuplicateComponent(ctx context.Context, pageID, id string) (string, error) {
	sess, err := s.session(pageID)
	if err != nil {
		return "", err
	}
	copyID := sess.store.DuplicateComponent(id)
	if copyID == "" {
		return "", nil
	}
	return copyID, s.afterChange(ctx, pageID, sess)
}

// ── Queries ────────────────────────────────────────────────

// Components returns every component of the page in display order.
func (s *BuilderService) Components(pageID string) ([]domain.Component, error) {
	sess, err := s.session(pageID)
	if err != nil {
		return nil, err
	}
	return sess.store.Components(), nil
}

// Roots returns the page's top-level components in order.
func (s *BuilderService) Roots(pageID string) ([]domain.Component, error) {
	sess, err := s.session(pageID)
	if err != nil {
		return nil, err
	}
	return sess.store.Roots(), nil
}

// Children returns the direct children of a component in order.
func (s *BuilderService) Children(pageID, id string) ([]domain.Component, error) {
	sess, err := s.session(pageID)
	if err != nil {
		return nil, err
	}
	return sess.store.Children(id), nil
}

// Component returns one component of the page.
func (s *BuilderService) Component(pageID, id string) (domain.Component, bool, error) {
	sess, err := s.session(pageID)
	if err != nil {
		return domain.Component{}, false, err
	}
	c, ok := sess.store.Component(id)
	return c, ok, nil
}

// Selected returns the selected component of the page, if any.
func (s *BuilderService) Selected(pageID string) (domain.Component, bool, error) {
	sess, err := s.session(pageID)
	if err != nil {
		return domain.Component{}, false, err
	}
	c, ok := sess.store.Selected()
	return c, ok, nil
}

// PageState returns the page with its current (possibly unsaved) tree.
func (s *BuilderService) PageState(pageID string) (*domain.PageState, error) {
	page, err := s.pages.GetPage(pageID)
	if err != nil {
		return nil, err
	}
	sess, err := s.session(pageID)
	if err != nil {
		return nil, err
	}
	return &domain.PageState{
		Page:     *page,
		Roots:    sess.store.Roots(),
		Snapshot: sess.store.Snapshot(),
		Dirty:    sess.dirty.Load(),
	}, nil
}

// ── Persistence ────────────────────────────────────────────

// Save writes the page's current state regardless of the dirty flag.
func (s *BuilderService) Save(ctx context.Context, pageID string) error {
	sess, err := s.session(pageID)
	if err != nil {
		return err
	}
	return s.flush(ctx, pageID, sess, true)
}

// Flush writes the page if it has unsaved changes. Pages that are not open
// have nothing to flush.
func (s *BuilderService) Flush(ctx context.Context, pageID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[pageID]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.flush(ctx, pageID, sess, false)
}

// FlushAll flushes every open page and joins the errors.
func (s *BuilderService) FlushAll(ctx context.Context) error {
	var errs []error
	for _, pageID := range s.OpenPages() {
		if err := s.Flush(ctx, pageID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DirtyPages lists open pages with unsaved changes.
func (s *BuilderService) DirtyPages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for id, sess := range s.sessions {
		if sess.dirty.Load() {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// OpenPages lists pages with a loaded session.
func (s *BuilderService) OpenPages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *BuilderService) flush(ctx context.Context, pageID string, sess *session, force bool) error {
	sess.saveMu.Lock()
	defer sess.saveMu.Unlock()

	wasDirty := sess.dirty.Swap(false)
	if !wasDirty && !force {
		return nil
	}
	snap := sess.store.Snapshot()
	if err := s.snapshots.SaveSnapshot(pageID, snap); err != nil {
		sess.dirty.Store(true)
		return fmt.Errorf("save page %s: %w", pageID, err)
	}
	if p, err := s.pages.GetPage(pageID); err == nil {
		if err := s.pages.UpdatePage(p); err != nil {
			s.log.Warn("touch page failed", "page", pageID, "err", err)
		} else {
			sess.savedAt = p.UpdatedAt
		}
	}
	s.emitter.Emit(ctx, EventPageSaved, pageID)
	s.log.Debug("page saved", "page", pageID, "components", len(snap.Components))
	return nil
}

// LastSaved returns the page's UpdatedAt as this process last wrote or
// loaded it. ok is false when the page is not open.
func (s *BuilderService) LastSaved(pageID string) (t time.Time, ok bool) {
	s.mu.Lock()
	sess, ok := s.sessions[pageID]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	sess.saveMu.Lock()
	defer sess.saveMu.Unlock()
	return sess.savedAt, true
}

// Reload replaces an open page's session with what storage holds, picking
// up changes written by another process. Pages with unsaved changes are
// left alone and reported as not reloaded.
func (s *BuilderService) Reload(ctx context.Context, pageID string) (bool, error) {
	s.mu.Lock()
	sess, ok := s.sessions[pageID]
	if !ok || sess.dirty.Load() {
		s.mu.Unlock()
		return false, nil
	}
	delete(s.sessions, pageID)
	s.mu.Unlock()
	sess.unsub()

	fresh, err := s.session(pageID)
	if err != nil {
		return false, err
	}
	s.emitter.Emit(ctx, EventBuilderChanged, BuilderChange{PageID: pageID, Snapshot: fresh.store.Snapshot()})
	s.log.Info("page reloaded", "page", pageID)
	return true, nil
}

// Discard drops the page's session without saving.
func (s *BuilderService) Discard(pageID string) {
	s.mu.Lock()
	sess, ok := s.sessions[pageID]
	delete(s.sessions, pageID)
	s.mu.Unlock()
	if ok {
		sess.unsub()
	}
}

// Close flushes every open page and drops all sessions.
func (s *BuilderService) Close(ctx context.Context) error {
	err := s.FlushAll(ctx)
	for _, pageID := range s.OpenPages() {
		s.Discard(pageID)
	}
	return err
}

// ── Export / Import ────────────────────────────────────────

// Export returns the page and its current tree as a portable document.
func (s *BuilderService) Export(pageID string) (*domain.PageDocument, error) {
	page, err := s.pages.GetPage(pageID)
	if err != nil {
		return nil, err
	}
	sess, err := s.session(pageID)
	if err != nil {
		return nil, err
	}
	return &domain.PageDocument{
		Page:       *page,
		Snapshot:   sess.store.Snapshot(),
		ExportedAt: time.Now().UTC(),
	}, nil
}

// Import replaces the page's tree with snap and saves it. The snapshot is
// rejected as a whole when ids repeat or a parent is missing.
func (s *BuilderService) Import(ctx context.Context, pageID string, snap domain.Snapshot) error {
	sess, err := s.session(pageID)
	if err != nil {
		return err
	}
	if err := sess.store.Restore(snap); err != nil {
		return fmt.Errorf("import page %s: %w", pageID, err)
	}
	if err := s.flush(ctx, pageID, sess, true); err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventPageImported, pageID)
	return nil
}
