// Package protocol declares the wire types of both external surfaces: the
// client transport frames (one JSON message per websocket text frame) and the
// control-plane request/response bodies.
package protocol

import (
	"github.com/google/uuid"

	"tank-arena/internal/world"
)

// LobbyStatus is the lobby lifecycle state. FINISHED is terminal.
type LobbyStatus string

const (
	StatusPending  LobbyStatus = "PENDING"
	StatusRunning  LobbyStatus = "RUNNING"
	StatusFinished LobbyStatus = "FINISHED"
)

// Valid reports whether the value is one of the three lifecycle states.
func (s LobbyStatus) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusFinished:
		return true
	}
	return false
}

// ClientType distinguishes acting players from read-only spectators.
type ClientType string

const (
	ClientTypePlayer    ClientType = "PLAYER"
	ClientTypeSpectator ClientType = "SPECTATOR"
)

// ParseClientType maps the clientType query parameter onto the closed set.
func ParseClientType(s string) (ClientType, bool) {
	switch ClientType(s) {
	case ClientTypePlayer:
		return ClientTypePlayer, true
	case ClientTypeSpectator:
		return ClientTypeSpectator, true
	}
	return "", false
}

// ClientMessage is the single client-to-server frame: one action for one
// tick. Degrees is only consulted by TURN.
type ClientMessage struct {
	Tick    uuid.UUID    `json:"tick"`
	Action  world.Action `json:"action"`
	Degrees *int         `json:"degrees"`
}

// ClientHello is sent to newly accepted PLAYER clients immediately after the
// join, before the first broadcast.
type ClientHello struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	PlayerID uuid.UUID `json:"player_id"`
}

// NewClientHello builds the canonical hello frame for a joined player.
func NewClientHello(playerID uuid.UUID) ClientHello {
	return ClientHello{Success: true, Message: "Connection successful.", PlayerID: playerID}
}

// PlayerOut is the broadcast representation of one player.
type PlayerOut struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	X                 int       `json:"x"`
	Y                 int       `json:"y"`
	Rotation          int       `json:"rotation"`
	Color             string    `json:"color"`
	Health            int       `json:"health"`
	LastActionSuccess bool      `json:"last_action_success"`
	ErrorMessage      string    `json:"error_message"`
	EntityType        string    `json:"entity_type"`
}

// ProjectileOut is the broadcast representation of one projectile. The source
// peer id is deliberately not serialized.
type ProjectileOut struct {
	ID             uuid.UUID `json:"id"`
	X              float64   `json:"x"`
	Y              float64   `json:"y"`
	PreviousX      float64   `json:"previous_x"`
	PreviousY      float64   `json:"previous_y"`
	Direction      int       `json:"direction"`
	TravelDistance float64   `json:"travel_distance"`
}

// GameStateOut is the per-tick snapshot fanned out to every client of a
// lobby, players and spectators alike.
type GameStateOut struct {
	Tick                   uuid.UUID       `json:"tick"`
	TickLengthMilliSeconds int             `json:"tick_length_milli_seconds"`
	Players                []PlayerOut     `json:"players"`
	Entities               []ProjectileOut `json:"entities"`
	Spectators             int             `json:"spectators"`
}

// ClientOut is the control-plane summary of one connected client.
type ClientOut struct {
	ClientType ClientType `json:"client_type"`
	Username   string     `json:"username"`
}

// LobbyOut is the control-plane summary of one lobby.
type LobbyOut struct {
	ID         uuid.UUID   `json:"id"`
	Status     LobbyStatus `json:"status"`
	Clients    []ClientOut `json:"clients"`
	Spectators int         `json:"spectators"`
}

// LobbyListOut is the GET /lobbies response body.
type LobbyListOut struct {
	Lobbies []LobbyOut `json:"lobbies"`
}

// LobbyCreateOut is the POST /lobbies response body.
type LobbyCreateOut struct {
	ID uuid.UUID `json:"id"`
}

// LobbyPatchIn is the PATCH /lobbies/{id} request body.
type LobbyPatchIn struct {
	Status LobbyStatus `json:"status"`
}
