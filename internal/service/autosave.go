package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// ─────────────────────────────────────────────────────────────
// Autosaver — scheduled flushing of dirty pages
// ─────────────────────────────────────────────────────────────

// Autosaver flushes the builder's dirty pages on a cron schedule. It is the
// persistence driver for PersistScheduled mode.
type Autosaver struct {
	builder *BuilderService
	log     *slog.Logger
	guard   flushGuard

	mu        sync.Mutex
	cronSched *cron.Cron
	schedule  string
}

// NewAutosaver creates a stopped Autosaver.
func NewAutosaver(builder *BuilderService, logger *slog.Logger) *Autosaver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Autosaver{builder: builder, log: logger}
}

// Start (re)schedules flushing. schedule is a standard cron expression or a
// descriptor such as "@every 30s".
func (a *Autosaver) Start(ctx context.Context, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { a.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("autosave: invalid schedule %q: %w", schedule, err)
	}

	a.mu.Lock()
	old := a.cronSched
	a.cronSched = c
	a.schedule = schedule
	a.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	c.Start()
	a.log.Info("autosave scheduled", "schedule", schedule)
	return nil
}

// Schedule returns the active schedule, or "" when stopped.
func (a *Autosaver) Schedule() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.schedule
}

// RunOnce flushes every dirty page that is not already being flushed and
// returns how many were written.
func (a *Autosaver) RunOnce(ctx context.Context) int {
	flushed := 0
	for _, pageID := range a.builder.DirtyPages() {
		if !a.guard.Begin(pageID) {
			a.log.Debug("autosave: flush still running", "page", pageID)
			continue
		}
		err := a.builder.Flush(ctx, pageID)
		took := a.guard.Done(pageID)
		if err != nil {
			a.log.Error("autosave failed", "page", pageID, "err", err)
			continue
		}
		a.log.Debug("autosave: flushed", "page", pageID, "took", took)
		flushed++
	}
	if flushed > 0 {
		a.log.Debug("autosave", "pages", flushed)
	}
	return flushed
}

// Stop cancels the schedule and waits for in-flight flushes or ctx. Pages
// still flushing when ctx ends are logged.
func (a *Autosaver) Stop(ctx context.Context) {
	a.mu.Lock()
	c := a.cronSched
	a.cronSched = nil
	a.schedule = ""
	a.mu.Unlock()

	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
		}
	}
	if !a.guard.WaitAll(ctx) {
		a.log.Warn("autosave: stopped with flushes in flight", "pages", a.guard.Flushing())
	}
}
