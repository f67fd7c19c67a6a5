package portal

import (
	"fmt"
	"sync"
	"testing"
)

func TestRegistryCreateDefaults(t *testing.T) {
	r := NewRegistry()
	r.Create("/session/1")

	session, ok := r.Get("/session/1")
	if !ok {
		t.Fatal("session should exist after Create")
	}
	if session.SourceTypes != 0 {
		t.Fatalf("expected source types 0, got %d", session.SourceTypes)
	}
	if session.CursorMode != CursorModeEmbedded {
		t.Fatalf("expected cursor mode %d, got %d", CursorModeEmbedded, session.CursorMode)
	}
	if session.PersistMode != PersistModeNone {
		t.Fatalf("expected persist mode %d, got %d", PersistModeNone, session.PersistMode)
	}
	if session.RestoreToken != "" {
		t.Fatalf("expected empty restore token, got %q", session.RestoreToken)
	}
}

func TestRegistryDuplicateCreateResetsSession(t *testing.T) {
	r := NewRegistry()
	r.Create("/session/1")
	r.Update("/session/1", SelectOptions{SourceTypes: SourceTypeWindow, CursorMode: CursorModeHidden, PersistMode: PersistModeSession, RestoreToken: "tok"})

	r.Create("/session/1")

	session, ok := r.Get("/session/1")
	if !ok {
		t.Fatal("session should exist")
	}
	if session.SourceTypes != 0 || session.RestoreToken != "" {
		t.Fatalf("duplicate create should reset to defaults, got %+v", session)
	}
}

func TestRegistryUpdate(t *testing.T) {
	r := NewRegistry()
	r.Create("/session/1")
	r.Create("/session/2")

	r.Update("/session/1", SelectOptions{
		SourceTypes:  SourceTypeWindow,
		CursorMode:   CursorModeHidden,
		PersistMode:  PersistModeSession,
		RestoreToken: "tok-1",
	})

	updated, _ := r.Get("/session/1")
	if updated.SourceTypes != SourceTypeWindow {
		t.Fatalf("expected source types %d, got %d", SourceTypeWindow, updated.SourceTypes)
	}
	if updated.CursorMode != CursorModeHidden {
		t.Fatalf("expected cursor mode %d, got %d", CursorModeHidden, updated.CursorMode)
	}
	if updated.PersistMode != PersistModeSession {
		t.Fatalf("expected persist mode %d, got %d", PersistModeSession, updated.PersistMode)
	}
	if updated.RestoreToken != "tok-1" {
		t.Fatalf("expected restore token tok-1, got %q", updated.RestoreToken)
	}

	// Other sessions stay untouched
	other, _ := r.Get("/session/2")
	if other.SourceTypes != 0 || other.CursorMode != CursorModeEmbedded {
		t.Fatalf("unrelated session was modified: %+v", other)
	}
}

func TestRegistryUpdateUnknownIsNoOp(t *testing.T) {
	r := NewRegistry()

	r.Update("/session/ghost", SelectOptions{SourceTypes: SourceTypeMonitor})

	if r.Len() != 0 {
		t.Fatalf("update of unknown handle must not create an entry, have %d", r.Len())
	}
	if _, ok := r.Get("/session/ghost"); ok {
		t.Fatal("unknown session should not exist after update")
	}
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Create("/session/1")

	session, _ := r.Get("/session/1")
	session.RestoreToken = "mutated"

	fresh, _ := r.Get("/session/1")
	if fresh.RestoreToken != "" {
		t.Fatal("Get must return a copy, not a live reference")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			handle := fmt.Sprintf("/session/%d", n)
			r.Create(handle)
			r.Update(handle, SelectOptions{SourceTypes: SourceTypeMonitor, CursorMode: CursorModeEmbedded})
			r.Get(handle)
		}(i)
	}
	wg.Wait()

	if r.Len() != 50 {
		t.Fatalf("expected 50 sessions, got %d", r.Len())
	}
	for i := 0; i < 50; i++ {
		session, ok := r.Get(fmt.Sprintf("/session/%d", i))
		if !ok {
			t.Fatalf("session %d missing", i)
		}
		if session.SourceTypes != SourceTypeMonitor {
			t.Fatalf("session %d has wrong source types %d", i, session.SourceTypes)
		}
	}
}
