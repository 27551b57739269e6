package lobby

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"tank-arena/internal/metrics"
)

// Sender is the write half of one connection as the registry sees it: it
// enqueues a single text frame onto the peer's send queue. Implementations
// must be safe for concurrent use; the queue's single drain goroutine is the
// only thing that touches the socket.
type Sender interface {
	SendText(payload []byte) error
}

// Registry maps peer ids to write handles and holds the open-timer table for
// tick deadlines. It is deliberately separate from the lobby so fan-out and
// disconnects never extend the lobby lock's critical section.
type Registry struct {
	mu     sync.Mutex
	conns  map[uuid.UUID]Sender
	timers map[uuid.UUID]*time.Timer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[uuid.UUID]Sender),
		timers: make(map[uuid.UUID]*time.Timer),
	}
}

// Register stores the write handle for a peer.
func (r *Registry) Register(peer uuid.UUID, s Sender) {
	r.mu.Lock()
	r.conns[peer] = s
	n := len(r.conns)
	r.mu.Unlock()
	metrics.UpdateWSConnections(n)
}

// Unregister forgets a peer. Safe to call for peers never registered.
func (r *Registry) Unregister(peer uuid.UUID) {
	r.mu.Lock()
	delete(r.conns, peer)
	n := len(r.conns)
	r.mu.Unlock()
	metrics.UpdateWSConnections(n)
}

// ConnCount returns the number of registered peers.
func (r *Registry) ConnCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// SendText enqueues one frame for a peer. A vanished or failing handle only
// aborts delivery for that peer: the entry is dropped and everything else
// proceeds.
func (r *Registry) SendText(peer uuid.UUID, payload []byte) {
	r.mu.Lock()
	s, ok := r.conns[peer]
	r.mu.Unlock()
	if !ok {
		return
	}
	if err := s.SendText(payload); err != nil {
		log.Printf("📤 Dropping peer %s: send failed: %v", peer, err)
		r.Unregister(peer)
	}
}

// ArmTimer schedules fn after delay, keyed by the tick generation it belongs
// to. The callback removes its own entry before running, so a fired timer
// never lingers in the table.
func (r *Registry) ArmTimer(tick uuid.UUID, delay time.Duration, fn func()) {
	t := time.AfterFunc(delay, func() {
		r.removeTimer(tick)
		fn()
	})

	r.mu.Lock()
	r.timers[tick] = t
	r.mu.Unlock()
}

// CancelTimer stops the deadline for a tick generation, if still armed.
// Cancellation is best-effort: a callback that already fired runs anyway and
// must no-op on its own generation check.
func (r *Registry) CancelTimer(tick uuid.UUID) bool {
	r.mu.Lock()
	t, ok := r.timers[tick]
	delete(r.timers, tick)
	r.mu.Unlock()

	if !ok {
		return false
	}
	t.Stop()
	return true
}

func (r *Registry) removeTimer(tick uuid.UUID) {
	r.mu.Lock()
	delete(r.timers, tick)
	r.mu.Unlock()
}

// OpenTimers returns the number of armed deadlines.
func (r *Registry) OpenTimers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}
