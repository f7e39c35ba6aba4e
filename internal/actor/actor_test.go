package actor

import (
	"errors"
	"testing"
	"time"

	"github.com/vitrinelabs/vitrine/internal/storage"
)

func newManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	db, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewManager(db, ttl)
}

func TestRegisterAndLogin(t *testing.T) {
	m := newManager(t, 0)

	id, err := m.Register("Dona@Loja.com", "segredo123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id.Email != "dona@loja.com" {
		t.Fatalf("email not normalized: %q", id.Email)
	}

	got, token, err := m.Login("dona@loja.com", "segredo123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != id.ID || token == "" {
		t.Fatalf("login identity = %+v token = %q", got, token)
	}

	resolved, ok := m.Resolve(token)
	if !ok || resolved.ID != id.ID {
		t.Fatal("session did not resolve")
	}

	m.Logout(token)
	if _, ok := m.Resolve(token); ok {
		t.Fatal("session survived logout")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	m := newManager(t, 0)
	if _, err := m.Register("dona@loja.com", "segredo123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := m.Login("dona@loja.com", "errada"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, _, err := m.Login("ninguem@loja.com", "segredo123"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("unknown email err = %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	m := newManager(t, 0)

	if _, err := m.Register("sem-arroba", "segredo123"); err == nil {
		t.Fatal("bad email accepted")
	}
	if _, err := m.Register("a@b.com", "curta"); err == nil {
		t.Fatal("short password accepted")
	}
	if _, err := m.Register("dona@loja.com", "segredo123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := m.Register("dona@loja.com", "segredo123"); err == nil {
		t.Fatal("duplicate email accepted")
	}
}

func TestSessionExpiry(t *testing.T) {
	m := newManager(t, time.Millisecond)
	if _, err := m.Register("dona@loja.com", "segredo123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, token, err := m.Login("dona@loja.com", "segredo123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if _, ok := m.Resolve(token); ok {
		t.Fatal("expired session resolved")
	}
}
