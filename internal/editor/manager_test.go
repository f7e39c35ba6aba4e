package editor

import (
	"testing"
	"time"

	"github.com/vitrinelabs/vitrine/internal/preview"
	"github.com/vitrinelabs/vitrine/internal/selection"
	"github.com/vitrinelabs/vitrine/internal/storefront"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()

	sh, err := m.OpenSession(testData(), storefront.ViewportDesktop)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	id := sh.Session().ID
	if id == "" {
		t.Fatal("session without id")
	}

	got, ok := m.Get(id)
	if !ok || got != sh {
		t.Fatal("lookup failed")
	}
	if m.Count() != 1 {
		t.Fatalf("count = %d", m.Count())
	}

	m.CloseSession(id)
	if _, ok := m.Get(id); ok {
		t.Fatal("closed session still listed")
	}
	m.CloseSession(id) // second close is a no-op
}

func TestManagerAttachPolicy(t *testing.T) {
	m := NewManager()
	m.SetAttachPolicy(preview.AttachPolicy{Interval: time.Millisecond, MaxTries: 2})
	t.Cleanup(m.CloseAll)

	sh, err := m.OpenSession(testData(), storefront.ViewportDesktop)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	// The session renders during Open, so even the tight budget attaches.
	deadline := time.Now().Add(time.Second)
	for sh.Session().Attacher().State() != selection.StateAttached {
		if time.Now().After(deadline) {
			t.Fatalf("attach state = %v", sh.Session().Attacher().State())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestManagerCloseAll(t *testing.T) {
	m := NewManager()
	for i := 0; i < 3; i++ {
		if _, err := m.OpenSession(testData(), storefront.ViewportDesktop); err != nil {
			t.Fatalf("open: %v", err)
		}
	}
	m.CloseAll()
	if m.Count() != 0 {
		t.Fatalf("count after close all = %d", m.Count())
	}
}
