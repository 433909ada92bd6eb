// Package hub implements the selection broker inside the daemon. It is
// transport-agnostic: the watch loop publishes each observed selection, and
// peers (IPC connections, TCP subscribers) register to receive events.
package hub

import (
	"log/slog"
	"sync"
	"time"
)

// Event is a selection update delivered to a peer.
type Event struct {
	Text       string
	Source     string // platform backend name
	Seq        uint64
	CapturedAt time.Time
}

// Peer is anything that can receive selection events from the hub.
type Peer interface {
	ID() string
	// Send delivers an event to the peer. Must be non-blocking: a slow
	// subscriber drops events rather than stalling the publisher.
	Send(Event)
}

// Hub fans selection updates out to all registered peers and retains the
// latest one for snapshot queries.
type Hub struct {
	mu     sync.RWMutex
	peers  map[string]Peer
	latest *Event
}

// New returns an empty Hub.
func New() *Hub {
	return &Hub{peers: make(map[string]Peer)}
}

// Register adds a peer and immediately delivers the latest selection, if one
// has been captured, so late subscribers start from the current state.
func (h *Hub) Register(p Peer) {
	h.mu.Lock()
	h.peers[p.ID()] = p
	latest := h.latest
	total := len(h.peers)
	h.mu.Unlock()

	slog.Info("peer registered", "peer", p.ID(), "total", total)

	if latest != nil {
		p.Send(*latest)
	}
}

// Unregister removes a peer from the hub.
func (h *Hub) Unregister(p Peer) {
	h.mu.Lock()
	delete(h.peers, p.ID())
	total := len(h.peers)
	h.mu.Unlock()

	slog.Info("peer unregistered", "peer", p.ID(), "total", total)
}

// Publish stores ev as the latest selection and fans it out to all peers.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	h.latest = &ev
	targets := make([]Peer, 0, len(h.peers))
	for _, p := range h.peers {
		targets = append(targets, p)
	}
	h.mu.Unlock()

	for _, p := range targets {
		p.Send(ev)
	}
}

// Latest returns the most recent selection event, if any capture has
// occurred.
func (h *Hub) Latest() (Event, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return Event{}, false
	}
	return *h.latest, true
}

// Subscribers returns the number of registered peers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}
