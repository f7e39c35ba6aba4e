// Package preview hosts the live preview of a store: an authoritative
// rendered document, the mutation engine attached to it, and the update
// channel browser mirrors subscribe to.
package preview

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/vitrinelabs/vitrine/internal/channel"
	"github.com/vitrinelabs/vitrine/internal/dom"
	"github.com/vitrinelabs/vitrine/internal/patch"
	"github.com/vitrinelabs/vitrine/internal/selection"
	"github.com/vitrinelabs/vitrine/internal/storefront"
)

// Session states. A session is loading until its first render completes;
// denied sessions never leave that state.
const (
	StateLoading = "loading"
	StateReady   = "ready"
	StateDenied  = "denied"
)

// Session is one live preview. The server-side document is authoritative:
// browser mirrors render its HTML and echo pointer events back, while
// updates mutate the document here and are forwarded to the mirrors.
type Session struct {
	ID      string
	StoreID string

	mu       sync.RWMutex
	state    string
	viewport storefront.Viewport
	data     storefront.Data
	doc      *dom.Document
	engine   *patch.Engine

	updates  *channel.Channel
	hub      *channel.Hub
	attacher *selection.Attacher
}

// AttachPolicy sets the selection attach retry cadence for a session.
type AttachPolicy struct {
	Interval time.Duration
	MaxTries int
}

// DefaultAttachPolicy matches the browser-side retry the editor shipped
// with: half a second between attempts, ten attempts.
func DefaultAttachPolicy() AttachPolicy {
	return AttachPolicy{Interval: 500 * time.Millisecond, MaxTries: 10}
}

// NewSession creates a loading session for a store with the default
// attach policy. Nothing is rendered until the first Reload.
func NewSession(id string, data storefront.Data, viewport storefront.Viewport) *Session {
	return NewSessionWith(id, data, viewport, DefaultAttachPolicy())
}

// NewSessionWith creates a loading session with an explicit attach
// policy.
func NewSessionWith(id string, data storefront.Data, viewport storefront.Viewport, policy AttachPolicy) *Session {
	if viewport == "" {
		viewport = storefront.ViewportDesktop
	}
	s := &Session{
		ID:       id,
		StoreID:  data.Store.ID,
		state:    StateLoading,
		viewport: viewport,
		data:     data,
		updates:  channel.New(),
		hub:      channel.NewHub(),
	}
	s.attacher = selection.NewAttacher(s, policy.Interval, policy.MaxTries)
	return s
}

// NewDeniedSession creates a session permanently stuck in the denied
// state. It carries no store data at all.
func NewDeniedSession(id string) *Session {
	s := &Session{
		ID:      id,
		state:   StateDenied,
		updates: channel.New(),
		hub:     channel.NewHub(),
	}
	s.attacher = selection.NewAttacher(s, 0, 1)
	return s
}

// State returns the session lifecycle state.
func (s *Session) State() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Viewport returns the current preview viewport.
func (s *Session) Viewport() storefront.Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// Reload renders the document from scratch for the given working data and
// viewport. Viewport toggles go through here: the layouts differ
// structurally, so switching mode is a full re-render, not a patch. An
// already-attached selector is rebound so pointer paths resolve against
// the new tree, not the dead one.
func (s *Session) Reload(data storefront.Data, viewport storefront.Viewport) error {
	s.mu.Lock()
	if s.state == StateDenied {
		s.mu.Unlock()
		return selection.ErrRestricted
	}
	if viewport == "" {
		viewport = s.viewport
	}

	s.data = data
	s.viewport = viewport
	s.doc = storefront.Render(data, storefront.Options{Viewport: viewport, Preview: true})
	s.engine = patch.NewEngine(s.doc, data.Settings, viewport)
	s.state = StateReady
	s.updates.SetReady(true)

	// Rebind before the broadcast so the frame already carries the
	// overlay styles and any carried-over selection marker.
	s.attacher.Rebind(s.doc)
	s.broadcastDocumentLocked()
	s.mu.Unlock()
	return nil
}

// Document implements selection.DocumentSource: the attacher polls this
// until the first render lands.
func (s *Session) Document() (*dom.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch s.state {
	case StateDenied:
		return nil, selection.ErrRestricted
	case StateLoading:
		return nil, selection.ErrNotReady
	}
	return s.doc, nil
}

// Attacher returns the selection attach sequence for this session.
func (s *Session) Attacher() *selection.Attacher { return s.attacher }

// Selector returns the bound selector, nil before attach completes.
func (s *Session) Selector() *selection.Selector { return s.attacher.Selector() }

// Updates returns the inbound update channel for this session.
func (s *Session) Updates() *channel.Channel { return s.updates }

// Hub returns the mirror broadcast hub.
func (s *Session) Hub() *channel.Hub { return s.hub }

// mirrorKinds are the update kinds the browser mirror patches locally.
// Everything else still has to show up instantly, so those updates ride
// out as a full document frame instead of an envelope the mirror would
// silently drop.
var mirrorKinds = map[string]bool{
	patch.UpdateStoreName:             true,
	patch.UpdateLogo:                  true,
	patch.UpdateFeaturedSectionTitle:  true,
	patch.UpdateAnnouncementText:      true,
	patch.UpdateAnnouncementBgColor:   true,
	patch.UpdateAnnouncementTextColor: true,
	patch.UpdatePrimaryColor:          true,
}

// Receive applies one update envelope to the authoritative document and
// forwards it to the mirrors. Updates arriving before the first render
// are dropped, matching the channel's fire-and-forget contract; foreign
// or unknown envelopes mutate nothing and are not forwarded.
func (s *Session) Receive(env patch.Envelope) {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return
	}
	if !s.engine.Apply(env) {
		s.mu.Unlock()
		return
	}
	if !mirrorKinds[env.UpdateType] {
		s.broadcastDocumentLocked()
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	frame, err := json.Marshal(env)
	if err != nil {
		log.Printf("PREVIEW [%s]: marshal update: %v", s.ID, err)
		return
	}
	s.hub.Broadcast(frame)
}

// Resize reapplies viewport-dependent styles after the preview frame
// crosses a breakpoint without a reload. Stored mobile overrides are
// re-evaluated; nothing is re-rendered.
func (s *Session) Resize(viewport storefront.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return
	}
	s.viewport = viewport
	s.engine.SetViewport(viewport)
}

// HTML serializes the current document. Empty until the first render.
func (s *Session) HTML() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return ""
	}
	return s.doc.HTML()
}

// InnerHTML serializes the document without its root wrapper, for
// embedding into the preview frame template.
func (s *Session) InnerHTML() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return ""
	}
	return s.doc.InnerHTML()
}

// broadcastDocumentLocked pushes a full-document frame so mirrors can
// replace their DOM after a reload. Callers hold s.mu.
func (s *Session) broadcastDocumentLocked() {
	frame, err := json.Marshal(map[string]string{
		"type":     "PREVIEW_RELOAD",
		"viewport": string(s.viewport),
		"html":     s.doc.HTML(),
	})
	if err != nil {
		log.Printf("PREVIEW [%s]: marshal reload: %v", s.ID, err)
		return
	}
	s.hub.Broadcast(frame)
}

// Close tears the session down.
func (s *Session) Close() {
	s.updates.Close()
	s.hub.Close()
}
