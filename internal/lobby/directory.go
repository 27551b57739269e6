package lobby

import (
	"errors"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"

	"tank-arena/internal/metrics"
	"tank-arena/internal/protocol"
)

var (
	// ErrLobbyNotFound maps to a control-plane 404.
	ErrLobbyNotFound = errors.New("lobby not found")
	// ErrInvalidTransition maps to a control-plane 422: the lobby is RUNNING
	// or already FINISHED and its status can no longer be patched.
	ErrInvalidTransition = errors.New("lobby status can no longer be changed")
)

// Directory is the process-wide lobby table. Its lock guards only the map;
// per-lobby state stays behind each lobby's own mutex.
type Directory struct {
	mu      sync.Mutex
	lobbies map[uuid.UUID]*Lobby

	tickLengthMillis int

	// OnRunning is invoked (outside all locks) when a lobby transitions
	// PENDING -> RUNNING; the bootstrap wires it to Scheduler.Start so the
	// lifecycle layer never imports the scheduler.
	OnRunning func(lobbyID uuid.UUID)
}

// NewDirectory creates an empty directory whose lobbies tick at the given
// length.
func NewDirectory(tickLengthMillis int) *Directory {
	return &Directory{
		lobbies:          make(map[uuid.UUID]*Lobby),
		tickLengthMillis: tickLengthMillis,
	}
}

// Create mints a new PENDING lobby and registers it.
func (d *Directory) Create() *Lobby {
	l := NewLobby(uuid.New(), d.tickLengthMillis)

	d.mu.Lock()
	d.lobbies[l.ID] = l
	n := len(d.lobbies)
	d.mu.Unlock()

	metrics.UpdateLobbies(n)
	log.Printf("🏟️ Lobby created with id %s", l.ID)
	return l
}

// Get looks up a lobby by id.
func (d *Directory) Get(id uuid.UUID) (*Lobby, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.lobbies[id]
	return l, ok
}

// List returns the control-plane summary of every lobby, ordered by id so
// successive calls are stable.
func (d *Directory) List() []protocol.LobbyOut {
	d.mu.Lock()
	lobbies := make([]*Lobby, 0, len(d.lobbies))
	for _, l := range d.lobbies {
		lobbies = append(lobbies, l)
	}
	d.mu.Unlock()

	out := make([]protocol.LobbyOut, 0, len(lobbies))
	for _, l := range lobbies {
		out = append(out, l.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// SetStatus applies a control-plane status transition. RUNNING and FINISHED
// lobbies reject every patch, including one naming their current status; a
// PENDING lobby accepts PENDING as a no-op. A PENDING -> RUNNING transition
// fires OnRunning after all locks are released.
func (d *Directory) SetStatus(id uuid.UUID, status protocol.LobbyStatus) error {
	l, ok := d.Get(id)
	if !ok {
		return ErrLobbyNotFound
	}

	l.mu.Lock()
	if l.Status != protocol.StatusPending {
		l.mu.Unlock()
		return ErrInvalidTransition
	}
	if l.Status == status {
		l.mu.Unlock()
		return nil
	}
	l.Status = status
	l.mu.Unlock()

	log.Printf("🏟️ Lobby %s is now %s", id, status)
	if status == protocol.StatusRunning && d.OnRunning != nil {
		d.OnRunning(id)
	}
	return nil
}
