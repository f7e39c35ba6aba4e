// Package channel carries preview update envelopes from the editor to the
// attached preview surfaces. The channel is one-way and fire-and-forget:
// sends while no surface is ready are dropped silently, and delivery is
// in-order because each channel has a single sender.
package channel

import (
	"log"
	"sync"

	"github.com/vitrinelabs/vitrine/internal/patch"
)

// Channel fans preview updates out to subscribers. It carries no
// acknowledgements and no replay buffer: a surface that attaches late
// re-renders from the authoritative document instead of catching up on
// missed messages.
type Channel struct {
	mu    sync.RWMutex
	ready bool

	listenerMu sync.RWMutex
	listeners  map[chan patch.Envelope]struct{}
}

// New creates a channel in the not-ready state. Nothing is delivered
// until a surface calls SetReady(true).
func New() *Channel {
	return &Channel{listeners: make(map[chan patch.Envelope]struct{})}
}

// SetReady flips the delivery gate. The preview surface marks the channel
// ready once its document is rendered and the mutation engine is attached.
func (c *Channel) SetReady(ready bool) {
	c.mu.Lock()
	c.ready = ready
	c.mu.Unlock()
}

// Ready reports whether sends are currently delivered.
func (c *Channel) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// Send delivers one envelope to every subscriber, or drops it when the
// channel is not ready or a subscriber's buffer is full. It never blocks
// and never reports failure to the caller.
func (c *Channel) Send(env patch.Envelope) {
	c.mu.RLock()
	ready := c.ready
	c.mu.RUnlock()
	if !ready {
		return
	}

	c.listenerMu.RLock()
	for ch := range c.listeners {
		select {
		case ch <- env:
		default:
			log.Printf("CHANNEL: dropped %s update, subscriber not draining", env.UpdateType)
		}
	}
	c.listenerMu.RUnlock()
}

// Subscribe returns a buffered channel of envelopes. The buffer preserves
// send order for a single sender; cancel detaches and closes it.
func (c *Channel) Subscribe() (ch chan patch.Envelope, cancel func()) {
	ch = make(chan patch.Envelope, 64)

	c.listenerMu.Lock()
	c.listeners[ch] = struct{}{}
	c.listenerMu.Unlock()

	cancel = func() {
		c.listenerMu.Lock()
		if _, ok := c.listeners[ch]; ok {
			delete(c.listeners, ch)
			close(ch)
		}
		c.listenerMu.Unlock()
	}
	return ch, cancel
}

// Close drops all subscribers and leaves the channel not ready.
func (c *Channel) Close() {
	c.mu.Lock()
	c.ready = false
	c.mu.Unlock()

	c.listenerMu.Lock()
	for ch := range c.listeners {
		close(ch)
	}
	c.listeners = make(map[chan patch.Envelope]struct{})
	c.listenerMu.Unlock()
}
