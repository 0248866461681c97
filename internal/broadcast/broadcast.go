// Package broadcast delivers server events to connections grouped into
// rooms. Delivery is fire-and-forget over per-connection buffered
// outboxes; a connection that cannot keep up is dropped.
package broadcast

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kevykibbz/realtime-web-controller/internal/protocol"
)

// DefaultBuffer is the outbox depth per connection. Roster updates are
// small and infrequent enough that a full buffer means the peer is gone
// or wedged.
const DefaultBuffer = 16

type Hub struct {
	mu     sync.Mutex
	conns  map[string]chan protocol.ServerEvent
	rooms  map[string]map[string]struct{} // room -> conn ids
	joined map[string]map[string]struct{} // conn -> room ids, for teardown
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		conns:  make(map[string]chan protocol.ServerEvent),
		rooms:  make(map[string]map[string]struct{}),
		joined: make(map[string]map[string]struct{}),
		logger: logger,
	}
}

// Register creates the outbox for a new connection. The returned
// channel is closed when the connection is deregistered or dropped.
func (h *Hub) Register(connID string) <-chan protocol.ServerEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(chan protocol.ServerEvent, DefaultBuffer)
	h.conns[connID] = out
	return out
}

// Deregister tears down a connection: closes its outbox and removes it
// from every room. Idempotent.
func (h *Hub) Deregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(connID)
}

// Subscribe binds a connection to a room. Re-subscribing is a no-op, so
// a host re-joining its own room never duplicates delivery.
func (h *Hub) Subscribe(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[connID]; !ok {
		return
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]struct{})
	}
	h.rooms[roomID][connID] = struct{}{}
	if h.joined[connID] == nil {
		h.joined[connID] = make(map[string]struct{})
	}
	h.joined[connID][roomID] = struct{}{}
}

// Broadcast sends an event to every connection in the room.
func (h *Hub) Broadcast(roomID string, ev protocol.ServerEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for connID := range h.rooms[roomID] {
		h.sendLocked(connID, ev)
	}
}

// Unicast sends an event to a single connection.
func (h *Hub) Unicast(connID string, ev protocol.ServerEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sendLocked(connID, ev)
}

func (h *Hub) sendLocked(connID string, ev protocol.ServerEvent) {
	out, ok := h.conns[connID]
	if !ok {
		return
	}
	select {
	case out <- ev:
	default:
		// Outbox full: the peer stopped draining. Drop it and let the
		// transport's disconnect path clean up its roster entries.
		h.logger.Warn("dropping slow connection", zap.String("conn_id", connID))
		h.dropLocked(connID)
	}
}

func (h *Hub) dropLocked(connID string) {
	out, ok := h.conns[connID]
	if !ok {
		return
	}
	close(out)
	delete(h.conns, connID)
	for roomID := range h.joined[connID] {
		delete(h.rooms[roomID], connID)
	}
	delete(h.joined, connID)
}
