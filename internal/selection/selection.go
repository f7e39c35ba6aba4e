// Package selection implements the editor's element picking protocol:
// pointer events on the rendered document resolve to the nearest tagged
// ancestor, and at most one element is marked selected at a time.
package selection

import (
	"sync"

	"github.com/vitrinelabs/vitrine/internal/dom"
)

const (
	classHovered  = "editor-hovered"
	classSelected = "editor-selected"
)

// Event describes a change in the hover or selection state.
type Event struct {
	Kind        string `json:"kind"` // "hover" | "selected" | "cleared"
	ElementID   string `json:"elementId,omitempty"`
	ElementType string `json:"elementType,omitempty"`
}

// Selector tracks hover and selection markers on one document. All
// resolution walks up from the event target to the nearest tagged
// ancestor; untagged regions resolve to nothing.
type Selector struct {
	mu       sync.Mutex
	doc      *dom.Document
	hovered  *dom.Node
	selected *dom.Node

	listenerMu sync.RWMutex
	listeners  map[chan Event]struct{}
}

// NewSelector attaches a selector to a rendered document.
func NewSelector(doc *dom.Document) *Selector {
	return &Selector{doc: doc, listeners: make(map[chan Event]struct{})}
}

// resolve maps an event target path to its nearest tagged ancestor, or nil.
func (s *Selector) resolve(path []int) *dom.Node {
	target := s.doc.NodeAt(path)
	if target == nil {
		return nil
	}
	return target.ClosestTagged()
}

// Hover moves the hover marker to the element containing the given node
// path. Hovering an untagged region clears the marker.
func (s *Selector) Hover(path []int) {
	s.mu.Lock()
	node := s.resolve(path)
	if node == s.hovered {
		s.mu.Unlock()
		return
	}
	if s.hovered != nil {
		s.hovered.RemoveClass(classHovered)
	}
	s.hovered = node
	var evt Event
	if node != nil {
		node.AddClass(classHovered)
		evt = Event{Kind: "hover", ElementID: node.ElementID(), ElementType: string(node.ElementType())}
	} else {
		evt = Event{Kind: "cleared"}
	}
	s.mu.Unlock()

	s.notify(evt)
}

// Click selects the element containing the given node path. Clicking an
// untagged region leaves the current selection untouched. The previous
// selection marker is always removed first, so at most one element
// carries it.
func (s *Selector) Click(path []int) (Event, bool) {
	s.mu.Lock()
	node := s.resolve(path)
	if node == nil {
		s.mu.Unlock()
		return Event{}, false
	}
	if s.selected != nil {
		s.selected.RemoveClass(classSelected)
	}
	s.selected = node
	node.AddClass(classSelected)
	evt := Event{Kind: "selected", ElementID: node.ElementID(), ElementType: string(node.ElementType())}
	s.mu.Unlock()

	s.notify(evt)
	return evt, true
}

// Select marks an element by its identifier, for selections originating
// in the editor panel rather than the preview.
func (s *Selector) Select(elementID string) (Event, bool) {
	s.mu.Lock()
	node := s.doc.ByElementID(elementID)
	if node == nil {
		s.mu.Unlock()
		return Event{}, false
	}
	if s.selected != nil {
		s.selected.RemoveClass(classSelected)
	}
	s.selected = node
	node.AddClass(classSelected)
	evt := Event{Kind: "selected", ElementID: node.ElementID(), ElementType: string(node.ElementType())}
	s.mu.Unlock()

	s.notify(evt)
	return evt, true
}

// SetDocument retargets the selector at a freshly rendered document.
// Markers on the old tree die with it. A prior selection is carried over
// by element identifier when the new tree still renders that element;
// otherwise the selection is gone and subscribers hear about it.
func (s *Selector) SetDocument(doc *dom.Document) {
	s.mu.Lock()
	prevID := ""
	if s.selected != nil {
		prevID = s.selected.ElementID()
	}
	s.doc = doc
	s.hovered = nil
	s.selected = nil
	if prevID != "" {
		if node := doc.ByElementID(prevID); node != nil {
			node.AddClass(classSelected)
			s.selected = node
		}
	}
	lost := prevID != "" && s.selected == nil
	s.mu.Unlock()

	if lost {
		s.notify(Event{Kind: "cleared"})
	}
}

// Clear removes both markers.
func (s *Selector) Clear() {
	s.mu.Lock()
	if s.hovered != nil {
		s.hovered.RemoveClass(classHovered)
		s.hovered = nil
	}
	if s.selected != nil {
		s.selected.RemoveClass(classSelected)
		s.selected = nil
	}
	s.mu.Unlock()

	s.notify(Event{Kind: "cleared"})
}

// Selected returns the currently selected element, or nil.
func (s *Selector) Selected() *dom.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Subscribe returns a channel of selection events. Slow consumers lose
// events rather than blocking the pointer path.
func (s *Selector) Subscribe() (ch chan Event, cancel func()) {
	ch = make(chan Event, 16)

	s.listenerMu.Lock()
	s.listeners[ch] = struct{}{}
	s.listenerMu.Unlock()

	cancel = func() {
		s.listenerMu.Lock()
		if _, ok := s.listeners[ch]; ok {
			delete(s.listeners, ch)
			close(ch)
		}
		s.listenerMu.Unlock()
	}
	return ch, cancel
}

func (s *Selector) notify(evt Event) {
	s.listenerMu.RLock()
	for ch := range s.listeners {
		select {
		case ch <- evt:
		default:
		}
	}
	s.listenerMu.RUnlock()
}
