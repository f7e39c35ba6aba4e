package editor

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/vitrinelabs/vitrine/internal/preview"
	"github.com/vitrinelabs/vitrine/internal/storefront"
)

// Manager tracks the open editing shells by session id.
type Manager struct {
	mu     sync.RWMutex
	shells map[string]*Shell
	policy preview.AttachPolicy
}

// NewManager creates an empty manager with the default attach policy.
func NewManager() *Manager {
	return &Manager{
		shells: make(map[string]*Shell),
		policy: preview.DefaultAttachPolicy(),
	}
}

// SetAttachPolicy sets the selection attach cadence for sessions opened
// afterwards. Configure before serving requests.
func (m *Manager) SetAttachPolicy(p preview.AttachPolicy) {
	m.mu.Lock()
	m.policy = p
	m.mu.Unlock()
}

// OpenSession creates a preview session and shell for an authorized
// actor. Callers check ownership with preview.Authorize first; denied
// actors never reach here.
func (m *Manager) OpenSession(data storefront.Data, viewport storefront.Viewport) (*Shell, error) {
	id := uuid.NewString()
	m.mu.RLock()
	policy := m.policy
	m.mu.RUnlock()
	sess := preview.NewSessionWith(id, data, viewport, policy)
	sh, err := Open(sess, data)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	m.mu.Lock()
	m.shells[id] = sh
	m.mu.Unlock()
	return sh, nil
}

// Get returns the shell for a session id.
func (m *Manager) Get(id string) (*Shell, bool) {
	m.mu.RLock()
	sh, ok := m.shells[id]
	m.mu.RUnlock()
	return sh, ok
}

// CloseSession tears a shell down and forgets it. Unknown ids are a
// no-op.
func (m *Manager) CloseSession(id string) {
	m.mu.Lock()
	sh, ok := m.shells[id]
	if ok {
		delete(m.shells, id)
	}
	m.mu.Unlock()

	if ok {
		sh.Close()
	}
}

// Count returns the number of open shells.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.shells)
}

// Each calls fn for every open shell.
func (m *Manager) Each(fn func(*Shell)) {
	m.mu.RLock()
	shells := make([]*Shell, 0, len(m.shells))
	for _, sh := range m.shells {
		shells = append(shells, sh)
	}
	m.mu.RUnlock()

	for _, sh := range shells {
		fn(sh)
	}
}

// CloseAll tears every shell down, for shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	shells := m.shells
	m.shells = make(map[string]*Shell)
	m.mu.Unlock()

	for _, sh := range shells {
		sh.Close()
	}
}
