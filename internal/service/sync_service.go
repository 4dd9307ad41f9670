package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/storage"
)

const syncDebounce = 500 * time.Millisecond

// ─────────────────────────────────────────────────────────────
// Sync Service — page documents on disk
// ─────────────────────────────────────────────────────────────

// SyncService mirrors pages to a directory of <slug>.json documents and
// imports documents that change on disk.
type SyncService struct {
	pages   *PageService
	builder *BuilderService
	emitter EventEmitter
	log     *slog.Logger

	mu          sync.Mutex
	dir         string
	known       map[string][32]byte // content hash per file, to skip our own writes
	watcher     *fsnotify.Watcher
	watchCancel context.CancelFunc
}

// NewSyncService creates a SyncService for dir.
func NewSyncService(pages *PageService, builder *BuilderService, dir string, emitter EventEmitter, logger *slog.Logger) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncService{
		pages:   pages,
		builder: builder,
		emitter: emitter,
		log:     logger,
		dir:     dir,
		known:   make(map[string][32]byte),
	}
}

// SetDir points the service at another directory. A running Watch keeps
// watching the old one until restarted.
func (s *SyncService) SetDir(dir string) {
	s.mu.Lock()
	s.dir = dir
	s.mu.Unlock()
}

// Dir returns the synced directory.
func (s *SyncService) Dir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir
}

// EncodeDocument renders a page document the way it is stored on disk.
func EncodeDocument(doc *domain.PageDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode page document: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeDocument parses a page document.
func DecodeDocument(data []byte) (*domain.PageDocument, error) {
	var doc domain.PageDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode page document: %w", err)
	}
	for i := range doc.Snapshot.Components {
		if doc.Snapshot.Components[i].Props == nil {
			doc.Snapshot.Components[i].Props = domain.Props{}
		}
	}
	return &doc, nil
}

// ExportPage writes one page to <dir>/<slug>.json and returns the path.
func (s *SyncService) ExportPage(pageID string) (string, error) {
	doc, err := s.builder.Export(pageID)
	if err != nil {
		return "", err
	}
	data, err := EncodeDocument(doc)
	if err != nil {
		return "", err
	}
	dir := s.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create sync dir: %w", err)
	}
	path := filepath.Join(dir, fileName(&doc.Page))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	s.remember(path, data)
	return path, nil
}

// ExportAll writes every page and returns the written paths.
func (s *SyncService) ExportAll(ctx context.Context) ([]string, error) {
	pages, err := s.pages.ListPages()
	if err != nil {
		return nil, err
	}
	var (
		paths []string
		errs  []error
	)
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path, err := s.ExportPage(p.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		paths = append(paths, path)
	}
	return paths, errors.Join(errs...)
}

// ImportFile loads a page document into the page it names. The target is
// found by the file name (slug or id), then by the document's page id; when
// neither exists a new page is created from the document.
func (s *SyncService) ImportFile(ctx context.Context, path string) (*domain.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	page, err := s.resolveTarget(ctx, path, doc)
	if err != nil {
		return nil, err
	}
	if err := s.builder.Import(ctx, page.ID, doc.Snapshot); err != nil {
		return nil, err
	}
	s.remember(path, data)
	s.log.Info("page imported", "page", page.ID, "file", path, "components", len(doc.Snapshot.Components))
	return page, nil
}

func (s *SyncService) resolveTarget(ctx context.Context, path string, doc *domain.PageDocument) (*domain.Page, error) {
	ref := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	page, err := s.pages.FindPage(ref)
	if err == nil {
		return page, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if doc.Page.ID != "" {
		if page, err := s.pages.GetPage(doc.Page.ID); err == nil {
			return page, nil
		}
	}
	name := doc.Page.Name
	if name == "" {
		name = ref
	}
	return s.pages.CreatePage(ctx, name)
}

// Watch imports documents that are written or created in the directory.
// Events for one file are debounced; files whose content matches what was
// last exported or imported are skipped.
func (s *SyncService) Watch(ctx context.Context) error {
	s.Stop()

	dir := s.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sync dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.watcher = watcher
	s.watchCancel = cancel
	s.mu.Unlock()

	go func() {
		timers := make(map[string]*time.Timer)
		defer func() {
			for _, t := range timers {
				t.Stop()
			}
		}()
		for {
			select {
			case <-watchCtx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if filepath.Ext(event.Name) != ".json" {
					continue
				}
				path := event.Name
				if t, exists := timers[path]; exists {
					t.Stop()
				}
				timers[path] = time.AfterFunc(syncDebounce, func() {
					if watchCtx.Err() != nil || !s.changed(path) {
						return
					}
					if _, err := s.ImportFile(watchCtx, path); err != nil {
						s.log.Error("sync import failed", "file", path, "err", err)
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Error("sync watcher", "err", err)
			}
		}
	}()

	s.log.Info("sync watching", "dir", dir)
	return nil
}

// Stop tears down the watcher.
func (s *SyncService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
}

func (s *SyncService) remember(path string, data []byte) {
	s.mu.Lock()
	s.known[path] = sha256.Sum256(data)
	s.mu.Unlock()
}

func (s *SyncService) changed(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	sum := sha256.Sum256(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.known[path] != sum
}

func fileName(p *domain.Page) string {
	if p.Slug != "" {
		return p.Slug + ".json"
	}
	return p.ID + ".json"
}
