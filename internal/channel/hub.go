package channel

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub pushes serialized frames to the browser mirrors of one preview
// session over WebSocket. Each connection gets its own ordered send queue
// and writer goroutine; a mirror that stops draining is disconnected
// rather than allowed to stall the others.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]chan []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]chan []byte)}
}

// Attach registers a connection and starts its writer. The caller keeps
// ownership of the read side.
func (h *Hub) Attach(conn *websocket.Conn) {
	queue := make(chan []byte, 64)

	h.mu.Lock()
	h.conns[conn] = queue
	h.mu.Unlock()

	go func() {
		for frame := range queue {
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.Detach(conn)
				return
			}
		}
	}()
}

// Detach removes a connection and stops its writer. Safe to call twice.
func (h *Hub) Detach(conn *websocket.Conn) {
	h.mu.Lock()
	queue, ok := h.conns[conn]
	if ok {
		delete(h.conns, conn)
	}
	h.mu.Unlock()

	if ok {
		close(queue)
		_ = conn.Close()
	}
}

// Broadcast queues a frame on every connection. A full queue means the
// mirror fell too far behind; it is detached and must reattach with a
// fresh render.
func (h *Hub) Broadcast(frame []byte) {
	h.mu.Lock()
	var stalled []*websocket.Conn
	for conn, queue := range h.conns {
		select {
		case queue <- frame:
		default:
			stalled = append(stalled, conn)
		}
	}
	h.mu.Unlock()

	for _, conn := range stalled {
		log.Printf("CHANNEL: mirror stalled, detaching %s", conn.RemoteAddr())
		h.Detach(conn)
	}
}

// Count returns the number of attached mirrors.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close detaches every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		h.Detach(conn)
	}
}
