// Package lobby implements the coordinator core: the per-lobby state
// container, the lifecycle directory, the connection registry and the tick
// scheduler. Each lobby is guarded by its own mutex; the directory and the
// registry carry their own. Lock order is directory -> lobby -> registry and
// no task ever touches two lobbies at once.
package lobby

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"tank-arena/internal/protocol"
	"tank-arena/internal/world"
)

// Client is one accepted connection's identity inside a lobby.
type Client struct {
	Type     protocol.ClientType
	Username string

	seq int // join order, drives formation seating
}

// GameState is the mutable world of one lobby, owned by it exclusively.
type GameState struct {
	Players  map[uuid.UUID]*world.Player
	Entities []*world.Projectile
}

// Lobby is the data container for one game. All fields are guarded by mu;
// collaborators mutate it only through the exported methods or, within this
// package, through the *Locked helpers while holding mu.
type Lobby struct {
	mu sync.Mutex

	ID                     uuid.UUID
	Status                 protocol.LobbyStatus
	Tick                   uuid.UUID
	Round                  int
	TickLengthMilliSeconds int

	Clients map[uuid.UUID]Client
	Pending map[uuid.UUID]protocol.ClientMessage
	Game    GameState

	nextSeq int
}

// NewLobby creates a PENDING lobby with a fresh tick id and empty state.
func NewLobby(id uuid.UUID, tickLengthMillis int) *Lobby {
	return &Lobby{
		ID:                     id,
		Status:                 protocol.StatusPending,
		Tick:                   uuid.New(),
		TickLengthMilliSeconds: tickLengthMillis,
		Clients:                make(map[uuid.UUID]Client),
		Pending:                make(map[uuid.UUID]protocol.ClientMessage),
		Game: GameState{
			Players: make(map[uuid.UUID]*world.Player),
		},
	}
}

// InputResult is the admission outcome for one client frame.
type InputResult int

const (
	InputAccepted InputResult = iota
	InputNotRunning
	InputNotAPlayer
	InputDuplicate
	InputStaleTick
)

func (r InputResult) String() string {
	switch r {
	case InputAccepted:
		return "accepted"
	case InputNotRunning:
		return "not_running"
	case InputNotAPlayer:
		return "not_a_player"
	case InputDuplicate:
		return "duplicate"
	case InputStaleTick:
		return "stale_tick"
	}
	return "unknown"
}

// InsertInput atomically validates and stores one client frame: the lobby
// must be RUNNING, the sender must be a PLAYER, the peer must not have spoken
// this tick and the frame's tick must match the current generation.
func (l *Lobby) InsertInput(peer uuid.UUID, msg protocol.ClientMessage) InputResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Status != protocol.StatusRunning {
		return InputNotRunning
	}
	c, ok := l.Clients[peer]
	if !ok || c.Type != protocol.ClientTypePlayer {
		return InputNotAPlayer
	}
	if _, dup := l.Pending[peer]; dup {
		return InputDuplicate
	}
	if msg.Tick != l.Tick {
		return InputStaleTick
	}

	l.Pending[peer] = msg
	return InputAccepted
}

// AddClient admits one connection. Spectators are always recorded; players
// are only admitted while the lobby is PENDING and a formation seat is free.
// For players the whole formation is re-seated and the tick rotated, and the
// hello frame to send back is returned.
func (l *Lobby) AddClient(peer uuid.UUID, clientType protocol.ClientType, username string) (*protocol.ClientHello, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if clientType == protocol.ClientTypeSpectator {
		l.nextSeq++
		l.Clients[peer] = Client{Type: clientType, Username: username, seq: l.nextSeq}
		return nil, nil
	}

	if l.Status != protocol.StatusPending {
		return nil, fmt.Errorf("Lobby with id '%s' is not open for new connections", l.ID)
	}
	if _, err := world.Formation(len(l.Game.Players) + 1); err != nil {
		return nil, err
	}

	l.nextSeq++
	l.Clients[peer] = Client{Type: clientType, Username: username, seq: l.nextSeq}
	l.Game.Players[peer] = world.NewPlayer(username)

	if err := l.reseatLocked(); err != nil {
		// Seat count was checked above; a failure here means the maps are
		// inconsistent, so undo the join rather than leave a half-added player.
		delete(l.Clients, peer)
		delete(l.Game.Players, peer)
		return nil, err
	}
	l.rotateTickLocked()

	hello := protocol.NewClientHello(l.Game.Players[peer].ID)
	return &hello, nil
}

// RemoveClient drops one connection from the lobby. Players removed while
// PENDING trigger a re-seat of the survivors; the tick rotates for any player
// leaving a non-FINISHED lobby so the next broadcast carries a fresh id.
func (l *Lobby) RemoveClient(peer uuid.UUID) (wasPlayer bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.removeClientLocked(peer)
}

func (l *Lobby) removeClientLocked(peer uuid.UUID) bool {
	c, ok := l.Clients[peer]
	delete(l.Clients, peer)
	delete(l.Pending, peer)
	if !ok || c.Type != protocol.ClientTypePlayer {
		return false
	}
	delete(l.Game.Players, peer)

	if l.Status == protocol.StatusPending {
		// Seat count only shrank, so re-seating cannot fail.
		_ = l.reseatLocked()
	}
	if l.Status != protocol.StatusFinished {
		l.rotateTickLocked()
	}
	return true
}

// rotateTickLocked starts a new input generation: fresh tick id, empty
// pending set. The round counter is advanced separately by the scheduler.
func (l *Lobby) rotateTickLocked() {
	l.Tick = uuid.New()
	l.Pending = make(map[uuid.UUID]protocol.ClientMessage)
}

// playerPeersLocked returns the PLAYER peer ids in join order.
func (l *Lobby) playerPeersLocked() []uuid.UUID {
	peers := make([]uuid.UUID, 0, len(l.Game.Players))
	for peer, c := range l.Clients {
		if c.Type == protocol.ClientTypePlayer {
			peers = append(peers, peer)
		}
	}
	sort.Slice(peers, func(i, j int) bool {
		return l.Clients[peers[i]].seq < l.Clients[peers[j]].seq
	})
	return peers
}

// peersLocked returns every connected peer id, players and spectators.
func (l *Lobby) peersLocked() []uuid.UUID {
	peers := make([]uuid.UUID, 0, len(l.Clients))
	for peer := range l.Clients {
		peers = append(peers, peer)
	}
	return peers
}

// reseatLocked reassigns spawn seats and colors to all players in join order.
func (l *Lobby) reseatLocked() error {
	peers := l.playerPeersLocked()
	spawns, err := world.Formation(len(peers))
	if err != nil {
		return err
	}
	for i, peer := range peers {
		color, err := world.PlayerColor(i + 1)
		if err != nil {
			return err
		}
		p := l.Game.Players[peer]
		p.X, p.Y, p.Rotation = spawns[i].X, spawns[i].Y, spawns[i].Rotation
		p.Color = color
	}
	return nil
}

func (l *Lobby) alivePlayersLocked() int {
	alive := 0
	for _, p := range l.Game.Players {
		if p.Alive() {
			alive++
		}
	}
	return alive
}

func (l *Lobby) spectatorsLocked() int {
	n := 0
	for _, c := range l.Clients {
		if c.Type == protocol.ClientTypeSpectator {
			n++
		}
	}
	return n
}

// allPlayersRespondedLocked is the early-advance completion predicate: every
// PLAYER peer has an entry in the pending set. Spectators do not participate;
// an empty player cohort is vacuously complete.
func (l *Lobby) allPlayersRespondedLocked() bool {
	for peer, c := range l.Clients {
		if c.Type != protocol.ClientTypePlayer {
			continue
		}
		if _, ok := l.Pending[peer]; !ok {
			return false
		}
	}
	return true
}

// Snapshot returns a broadcast-ready copy of the lobby's world.
func (l *Lobby) Snapshot() protocol.GameStateOut {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Lobby) snapshotLocked() protocol.GameStateOut {
	players := make([]protocol.PlayerOut, 0, len(l.Game.Players))
	for _, peer := range l.playerPeersLocked() {
		p := l.Game.Players[peer]
		players = append(players, protocol.PlayerOut{
			ID:                p.ID,
			Name:              p.Name,
			X:                 p.X,
			Y:                 p.Y,
			Rotation:          p.Rotation,
			Color:             p.Color,
			Health:            p.Health,
			LastActionSuccess: p.LastActionSuccess,
			ErrorMessage:      p.ErrorMessage,
			EntityType:        "PLAYER",
		})
	}

	entities := make([]protocol.ProjectileOut, 0, len(l.Game.Entities))
	for _, pr := range l.Game.Entities {
		entities = append(entities, protocol.ProjectileOut{
			ID:             pr.ID,
			X:              pr.X,
			Y:              pr.Y,
			PreviousX:      pr.PreviousX,
			PreviousY:      pr.PreviousY,
			Direction:      pr.Direction,
			TravelDistance: pr.TravelDistance,
		})
	}

	return protocol.GameStateOut{
		Tick:                   l.Tick,
		TickLengthMilliSeconds: l.TickLengthMilliSeconds,
		Players:                players,
		Entities:               entities,
		Spectators:             l.spectatorsLocked(),
	}
}

// Summary returns the control-plane view of the lobby.
func (l *Lobby) Summary() protocol.LobbyOut {
	l.mu.Lock()
	defer l.mu.Unlock()

	clients := make([]protocol.ClientOut, 0, len(l.Clients))
	for _, peer := range l.clientPeersBySeqLocked() {
		c := l.Clients[peer]
		clients = append(clients, protocol.ClientOut{ClientType: c.Type, Username: c.Username})
	}

	return protocol.LobbyOut{
		ID:         l.ID,
		Status:     l.Status,
		Clients:    clients,
		Spectators: l.spectatorsLocked(),
	}
}

func (l *Lobby) clientPeersBySeqLocked() []uuid.UUID {
	peers := l.peersLocked()
	sort.Slice(peers, func(i, j int) bool {
		return l.Clients[peers[i]].seq < l.Clients[peers[j]].seq
	})
	return peers
}
