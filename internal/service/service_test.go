package service_test

import (
	"context"
	"testing"
	"time"

	"sitebuilder/internal/service"
)

// ─────────────────────────────────────────────────────────────
// flushGuard tests
// ─────────────────────────────────────────────────────────────

func TestFlushGuard_Begin(t *testing.T) {
	var g service.ExportedFlushGuard

	if !g.Begin("home") {
		t.Fatal("expected first Begin to succeed")
	}
	if g.Begin("home") {
		t.Fatal("expected second Begin for same page to fail")
	}
	if !g.Begin("about") {
		t.Fatal("expected Begin for different page to succeed")
	}
	if got := g.Flushing(); len(got) != 2 || got[0] != "about" || got[1] != "home" {
		t.Fatalf("Flushing() = %v, want [about home]", got)
	}
	g.Done("home")
	g.Done("about")
	g.Done("never-claimed")

	if got := g.Flushing(); len(got) != 0 {
		t.Fatalf("Flushing() = %v after Done, want none", got)
	}
	if !g.Begin("home") {
		t.Fatal("expected Begin to succeed after Done")
	}
	g.Done("home")
}

func TestFlushGuard_WaitAll(t *testing.T) {
	var g service.ExportedFlushGuard

	if !g.WaitAll(context.Background()) {
		t.Fatal("expected WaitAll on an idle guard to report success")
	}
	if !g.Begin("page-a") {
		t.Fatal("expected Begin to succeed")
	}

	done := make(chan bool)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		done <- g.WaitAll(ctx)
	}()

	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Done("page-a")
	}()

	select {
	case ok := <-done:
		if !ok {
			t.Fatal("expected WaitAll to see the flush finish")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitAll timed out")
	}
}

func TestFlushGuard_WaitAllReportsDeadline(t *testing.T) {
	var g service.ExportedFlushGuard
	g.Begin("stuck")
	defer g.Done("stuck")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if g.WaitAll(ctx) {
		t.Fatal("expected WaitAll to report the flush still running")
	}
	if got := g.Flushing(); len(got) != 1 || got[0] != "stuck" {
		t.Fatalf("Flushing() = %v, want [stuck]", got)
	}
}

// ─────────────────────────────────────────────────────────────
// MockEmitter tests
// ─────────────────────────────────────────────────────────────

func TestMockEmitter_RecordsEvents(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, service.EventPageSaved, "home")
	m.Emit(ctx, service.EventPagesChanged, nil)
	m.Emit(ctx, service.EventPageSaved, "about")

	if len(m.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(m.Events))
	}
	if m.Events[0].Event != service.EventPageSaved {
		t.Errorf("expected %q, got %q", service.EventPageSaved, m.Events[0].Event)
	}
	if n := m.Count(service.EventPageSaved); n != 2 {
		t.Errorf("expected 2 saves, got %d", n)
	}
}

func TestMockEmitter_LastEvent(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, service.EventPageSaved, "first")
	m.Emit(ctx, service.EventPagesChanged, "other")
	m.Emit(ctx, service.EventPageSaved, "second")

	last, ok := m.Last(service.EventPageSaved)
	if !ok {
		t.Fatal("expected a recorded save")
	}
	if last.Data != "second" {
		t.Errorf("expected last save 'second', got %v", last.Data)
	}
	if _, ok := m.Last(service.EventPageImported); ok {
		t.Error("expected no import event")
	}
}
