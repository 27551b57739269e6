package lobby

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"tank-arena/internal/metrics"
	"tank-arena/internal/protocol"
	"tank-arena/internal/world"
)

// Tick advance causes, recorded per advance.
const (
	causeStart    = "start"
	causeEarly    = "early"
	causeDeadline = "deadline"
)

// Scheduler drives the tick loop of every RUNNING lobby. It is stateless by
// design: the only per-lobby scheduling state is the lobby's current tick
// uuid (the generation id) and the registry's open-timer table keyed by it.
// At most one advance per generation can ever take effect, because the first
// one to win the lobby lock rotates the tick and every latecomer fails the
// generation check.
type Scheduler struct {
	dir *Directory
	reg *Registry
}

// NewScheduler wires a scheduler to the lobby directory and the registry.
func NewScheduler(dir *Directory, reg *Registry) *Scheduler {
	return &Scheduler{dir: dir, reg: reg}
}

// Start runs the first advance for a freshly RUNNING lobby. The advance
// happens on its own goroutine so the control-plane PATCH returns without
// waiting for the fan-out.
func (s *Scheduler) Start(lobbyID uuid.UUID) {
	go s.advance(lobbyID, uuid.Nil, causeStart)
}

// MaybeAdvance runs the early-advance check: if every player of the lobby
// has an accepted input for the current tick, that tick is advanced now
// instead of at the deadline. Called by the message router after each
// accepted input and after player departures.
func (s *Scheduler) MaybeAdvance(lobbyID uuid.UUID) {
	l, ok := s.dir.Get(lobbyID)
	if !ok {
		return
	}

	l.mu.Lock()
	if l.Status != protocol.StatusRunning || !l.allPlayersRespondedLocked() {
		l.mu.Unlock()
		return
	}
	expected := l.Tick
	l.mu.Unlock()

	// The deadline may fire between the unlock and here; whichever path wins
	// rotates the tick and the loser no-ops on the generation check.
	s.advance(lobbyID, expected, causeEarly)
}

// advance runs one tick for the lobby: apply pending inputs, step the
// projectiles, rotate the generation, check termination, snapshot and fan
// out, and re-arm the deadline while still RUNNING. expectedTick is the
// generation this advance belongs to; uuid.Nil means "whatever is current"
// and is only used for the first advance after PENDING -> RUNNING.
func (s *Scheduler) advance(lobbyID, expectedTick uuid.UUID, cause string) {
	l, ok := s.dir.Get(lobbyID)
	if !ok {
		log.Printf("⏱️ Skipping advance: lobby %s is gone", lobbyID)
		return
	}

	start := time.Now()

	l.mu.Lock()
	if l.Status != protocol.StatusRunning {
		l.mu.Unlock()
		return
	}
	if expectedTick != uuid.Nil && l.Tick != expectedTick {
		l.mu.Unlock()
		log.Printf("⏱️ Skipping obsolete %s advance for lobby %s: tick %s has passed", cause, lobbyID, expectedTick)
		return
	}

	// Consume the deadline armed for this generation, if any. A callback that
	// already fired will fail the generation check above.
	s.reg.CancelTimer(l.Tick)

	for _, p := range l.Game.Players {
		p.ResetActionState()
	}
	for _, peer := range l.playerPeersLocked() {
		msg, ok := l.Pending[peer]
		if !ok {
			continue
		}
		if proj := world.Apply(l.Game.Players[peer], peer, msg.Action, msg.Degrees); proj != nil {
			l.Game.Entities = append(l.Game.Entities, proj)
		}
	}
	l.Game.Entities = world.StepProjectiles(l.Game.Entities, l.Game.Players)

	l.rotateTickLocked()
	l.Round++

	if l.Round >= world.MaxRounds || l.alivePlayersLocked() <= 1 {
		l.Status = protocol.StatusFinished
		log.Printf("🏁 Lobby %s finished after round %d (%d alive)", lobbyID, l.Round, l.alivePlayersLocked())
	}

	// Enqueue this tick's snapshot before the next deadline is armed and the
	// lock is released. Send queues never block, so a slow peer cannot stall
	// the advance, and every peer observes ticks in lock order.
	s.fanOut(l.peersLocked(), l.snapshotLocked())

	if l.Status == protocol.StatusRunning {
		tick := l.Tick
		delay := time.Duration(l.TickLengthMilliSeconds) * time.Millisecond
		s.reg.ArmTimer(tick, delay, func() {
			s.advance(lobbyID, tick, causeDeadline)
		})
	}
	l.mu.Unlock()

	metrics.ObserveTick(cause, time.Since(start))
}

// Disconnect handles a closed connection: the client leaves the lobby and the
// registry. A departing player rotates the tick (discarding this tick's
// pending inputs) and fans out a fresh snapshot without advancing the round,
// so the survivors see the departure; while RUNNING the deadline is re-armed
// for the new generation and the completion predicate is re-checked, which
// finalizes the lobby at once when no players remain.
func (s *Scheduler) Disconnect(lobbyID, peer uuid.UUID) {
	defer s.reg.Unregister(peer)

	l, ok := s.dir.Get(lobbyID)
	if !ok {
		return
	}

	l.mu.Lock()
	oldTick := l.Tick
	wasPlayer := l.removeClientLocked(peer)
	if !wasPlayer || l.Status == protocol.StatusFinished {
		l.mu.Unlock()
		return
	}

	// removeClientLocked rotated the tick; the deadline still armed for the
	// old generation would fire into a no-op and strand the lobby, so swap it
	// for one keyed to the new generation.
	running := l.Status == protocol.StatusRunning
	if running {
		s.reg.CancelTimer(oldTick)
		tick := l.Tick
		delay := time.Duration(l.TickLengthMilliSeconds) * time.Millisecond
		s.reg.ArmTimer(tick, delay, func() {
			s.advance(lobbyID, tick, causeDeadline)
		})
	}

	// The departure snapshot is enqueued before the lock drops so it cannot be
	// overtaken by the advance MaybeAdvance may trigger below.
	peers := l.peersLocked()
	s.fanOut(peers, l.snapshotLocked())
	l.mu.Unlock()

	log.Printf("👋 Player left lobby %s (%d clients remain)", lobbyID, len(peers))

	if running {
		s.MaybeAdvance(lobbyID)
	}
}

// fanOut marshals the snapshot once and enqueues it to every peer. Called with
// the lobby lock held, so enqueue order matches tick order; the sends are
// non-blocking and per-peer failures only drop that peer.
func (s *Scheduler) fanOut(peers []uuid.UUID, snap protocol.GameStateOut) {
	payload, err := json.Marshal(snap)
	if err != nil {
		log.Printf("📤 Dropping broadcast: %v", err)
		return
	}
	for _, peer := range peers {
		s.reg.SendText(peer, payload)
	}
	metrics.RecordBroadcast(len(peers))
}
