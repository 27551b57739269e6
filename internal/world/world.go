// Package world contains the pure arena rules: spawn formations, action
// semantics and projectile physics. Everything here is deterministic and
// free of I/O; the lobby layer owns all locking and scheduling.
package world

import (
	"fmt"

	"github.com/google/uuid"
)

// Arena constants. The field is a 30x30 integer grid; player coordinates
// live in [0, MaxFieldSizeX-1] x [0, MaxFieldSizeY-1].
const (
	MaxFieldSizeX = 30
	MaxFieldSizeY = 30

	MaxRounds          = 500
	MaxPlayersPerLobby = 7

	TickLengthMilliSeconds             = 2000
	ProjectileUnitLengthTravelDistance = 6.0

	StartingHealth   = 100
	ProjectileDamage = 20
)

// Player is one tank on the grid. Rotation is in degrees, 0 facing +y and
// growing clockwise (90 faces +x).
type Player struct {
	ID                uuid.UUID
	Name              string
	X                 int
	Y                 int
	Rotation          int
	Color             string
	Health            int
	LastActionSuccess bool
	ErrorMessage      string
}

// NewPlayer creates a live player at the origin; the caller is expected to
// seat it via a formation before the first broadcast.
func NewPlayer(name string) *Player {
	return &Player{
		ID:                uuid.New(),
		Name:              name,
		Health:            StartingHealth,
		LastActionSuccess: true,
	}
}

// Alive reports whether the player can still act.
func (p *Player) Alive() bool {
	return p.Health > 0
}

// ResetActionState clears the per-tick action outcome. Called once at the
// start of every advance; only that tick's own action may flip it back.
func (p *Player) ResetActionState() {
	p.LastActionSuccess = true
	p.ErrorMessage = ""
}

func (p *Player) rejectAction(msg string) {
	p.LastActionSuccess = false
	p.ErrorMessage = msg
}

// Spawn is one formation seat: a position plus an initial facing.
type Spawn struct {
	X        int
	Y        int
	Rotation int
}

// startingFormations maps the player count to the ordered seats players are
// assigned in join order. The zero-player slot is intentionally empty.
var startingFormations = map[int][]Spawn{
	0: {},
	1: {{14, 14, 0}},
	2: {{5, 14, 270}, {24, 14, 90}},
	3: {{5, 14, 270}, {24, 14, 90}, {14, 5, 180}},
	4: {{5, 14, 270}, {24, 14, 90}, {14, 5, 180}, {14, 24, 0}},
	5: {{5, 5, 315}, {24, 5, 45}, {5, 24, 225}, {24, 24, 135}, {14, 14, 0}},
	6: {{5, 5, 315}, {24, 5, 45}, {5, 24, 225}, {24, 24, 135}, {5, 14, 270}, {24, 14, 90}},
	7: {{5, 5, 315}, {24, 5, 45}, {5, 24, 225}, {24, 24, 135}, {5, 14, 270}, {24, 14, 90}, {14, 14, 0}},
}

// playerColors is indexed by join order (1-based via PlayerColor).
var playerColors = []string{"red", "blue", "green", "purple", "orange", "yellow", "cyan"}

// Formation returns the seats for the given player count, or an error when
// no formation is maintained for that count.
func Formation(playerCount int) ([]Spawn, error) {
	spawns, ok := startingFormations[playerCount]
	if !ok {
		return nil, fmt.Errorf("Cannot add player, because no starting formation is maintained for the player count.")
	}
	return spawns, nil
}

// PlayerColor returns the color for the n-th player (1-based join order).
func PlayerColor(n int) (string, error) {
	if n < 1 || n > len(playerColors) {
		return "", fmt.Errorf("Could not get color for new player. Lobby already has %d players.", n-1)
	}
	return playerColors[n-1], nil
}
