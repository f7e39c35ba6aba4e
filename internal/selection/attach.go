package selection

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/vitrinelabs/vitrine/internal/dom"
)

// OverlayStyles is the style resource the attacher injects so hover and
// selection markers are visible inside the preview.
const OverlayStyles = "editor-overlay-styles"

const overlayCSS = `.editor-hovered { outline: 2px dashed #3B82F6; outline-offset: 2px; }
.editor-selected { outline: 2px solid #3B82F6; outline-offset: 2px; }
[data-element-id] { cursor: pointer; }
`

// Errors a DocumentSource reports while the preview is still loading or
// off-limits. Both mean "not attachable yet", not failure.
var (
	ErrNotReady   = errors.New("document not ready")
	ErrRestricted = errors.New("document access restricted")
)

// DocumentSource yields the preview document once it is renderable.
type DocumentSource interface {
	Document() (*dom.Document, error)
}

// State of one attach attempt sequence.
type State int

const (
	StatePending State = iota
	StateAttached
	StateGaveUp
)

func (s State) String() string {
	switch s {
	case StateAttached:
		return "attached"
	case StateGaveUp:
		return "gave-up"
	default:
		return "pending"
	}
}

// Attacher binds a Selector to a preview document with bounded retry.
// The preview loads asynchronously, so the first attempts usually find
// nothing; the attacher polls at a fixed interval and gives up after a
// fixed number of attempts instead of spinning forever.
//
// Run executes on its own goroutine while request handlers read State
// and Selector, so both fields sit behind a mutex.
type Attacher struct {
	source   DocumentSource
	interval time.Duration
	maxTries int

	mu       sync.Mutex
	state    State
	selector *Selector
}

// NewAttacher configures an attach sequence. interval and maxTries of
// zero fall back to 500ms and 10 attempts.
func NewAttacher(source DocumentSource, interval time.Duration, maxTries int) *Attacher {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if maxTries <= 0 {
		maxTries = 10
	}
	return &Attacher{source: source, interval: interval, maxTries: maxTries}
}

// State returns the current lifecycle state.
func (a *Attacher) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Selector returns the bound selector, nil until attached.
func (a *Attacher) Selector() *Selector {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selector
}

// TryOnce performs a single attach attempt. It returns true when the
// document was available and the selector is now bound.
func (a *Attacher) TryOnce() bool {
	a.mu.Lock()
	if a.state == StateAttached {
		a.mu.Unlock()
		return true
	}
	a.mu.Unlock()

	doc, err := a.source.Document()
	if err != nil || doc == nil {
		return false
	}
	doc.SetStyleResource(OverlayStyles, overlayCSS)
	sel := NewSelector(doc)

	a.mu.Lock()
	a.selector = sel
	a.state = StateAttached
	a.mu.Unlock()
	return true
}

// Rebind points an attached selector at a recreated document. A full
// re-render replaces the tree wholesale; without rebinding, pointer
// paths would still resolve against the dead one. No-op unless attached.
func (a *Attacher) Rebind(doc *dom.Document) {
	if doc == nil {
		return
	}
	a.mu.Lock()
	sel := a.selector
	attached := a.state == StateAttached
	a.mu.Unlock()
	if !attached {
		return
	}

	doc.SetStyleResource(OverlayStyles, overlayCSS)
	sel.SetDocument(doc)
}

// Run polls until attached or the attempt budget is exhausted. It blocks;
// callers run it on its own goroutine.
func (a *Attacher) Run() State {
	for try := 1; try <= a.maxTries; try++ {
		if a.TryOnce() {
			log.Printf("SELECTION: attached on attempt %d", try)
			return StateAttached
		}
		if try < a.maxTries {
			time.Sleep(a.interval)
		}
	}
	a.mu.Lock()
	a.state = StateGaveUp
	a.mu.Unlock()
	log.Printf("SELECTION: gave up after %d attempts", a.maxTries)
	return StateGaveUp
}
