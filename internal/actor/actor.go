// Package actor handles accounts and cookie sessions for store owners.
package actor

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitrinelabs/vitrine/internal/storage"
)

// ErrBadCredentials covers both unknown emails and wrong passwords, so a
// login probe cannot tell which one it hit.
var ErrBadCredentials = errors.New("invalid email or password")

// Identity is a logged-in actor.
type Identity struct {
	ID    string
	Email string
}

type session struct {
	identity Identity
	expires  time.Time
}

// Manager registers accounts and tracks login sessions in memory.
// Sessions do not survive a restart; owners just log in again.
type Manager struct {
	db  *storage.DB
	ttl time.Duration

	mu       sync.RWMutex
	sessions map[string]session
}

// NewManager wires account storage. ttl of zero falls back to 24h.
func NewManager(db *storage.DB, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{db: db, ttl: ttl, sessions: make(map[string]session)}
}

// Register creates an account with a bcrypt password hash.
func (m *Manager) Register(email, password string) (Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return Identity{}, fmt.Errorf("invalid email")
	}
	if len(password) < 8 {
		return Identity{}, fmt.Errorf("password too short")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}

	u := storage.User{ID: uuid.NewString(), Email: email, PasswordHash: string(hash)}
	if err := m.db.SaveUser(u); err != nil {
		return Identity{}, fmt.Errorf("register: %w", err)
	}
	return Identity{ID: u.ID, Email: u.Email}, nil
}

// Login checks credentials and opens a session, returning its token.
func (m *Manager) Login(email, password string) (Identity, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := m.db.UserByEmail(email)
	if err != nil {
		return Identity{}, "", ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Identity{}, "", ErrBadCredentials
	}

	id := Identity{ID: u.ID, Email: u.Email}
	token := uuid.NewString()

	m.mu.Lock()
	m.sessions[token] = session{identity: id, expires: time.Now().Add(m.ttl)}
	m.mu.Unlock()

	return id, token, nil
}

// Resolve maps a session token to its identity. Expired sessions are
// dropped on sight.
func (m *Manager) Resolve(token string) (Identity, bool) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return Identity{}, false
	}
	if time.Now().After(s.expires) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return Identity{}, false
	}
	return s.identity, true
}

// Logout closes a session. Unknown tokens are a no-op.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}
