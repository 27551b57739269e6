package world

import (
	"fmt"

	"github.com/google/uuid"
)

// Action is the closed set of per-tick commands a player may send.
type Action string

const (
	ActionShoot Action = "SHOOT"
	ActionTurn  Action = "TURN"
	ActionUp    Action = "UP"
	ActionDown  Action = "DOWN"
	ActionLeft  Action = "LEFT"
	ActionRight Action = "RIGHT"
)

// Valid reports whether the action is a member of the closed set. Anything
// else is a decode error and must be dropped before reaching Apply.
func (a Action) Valid() bool {
	switch a {
	case ActionShoot, ActionTurn, ActionUp, ActionDown, ActionLeft, ActionRight:
		return true
	}
	return false
}

// Canonical per-tick rejection strings. They are stored on the player and
// surfaced verbatim in the next broadcast.
const (
	errNoHealth           = "Message was not processed, because player has no more health left"
	errTurnMissingDegrees = "Cannot TURN, because no 'degrees' property was supplied"
	errTurnOutOfRange     = "Cannot TURN, because 'degrees' is not within range (0 - 360)"
)

func borderError(a Action) string {
	return fmt.Sprintf("Cannot move %s, because player is at border of field", a)
}

// Apply executes one action against the player and returns the projectile it
// spawned, if any. Failed actions mark the player but never move it; dead
// players reject every action. sourcePeer identifies the shooter so its own
// projectiles never damage it.
func Apply(p *Player, sourcePeer uuid.UUID, action Action, degrees *int) *Projectile {
	if !p.Alive() {
		p.rejectAction(errNoHealth)
		return nil
	}

	switch action {
	case ActionShoot:
		return &Projectile{
			ID:             uuid.New(),
			PreviousX:      float64(p.X),
			PreviousY:      float64(p.Y),
			X:              float64(p.X),
			Y:              float64(p.Y),
			Direction:      p.Rotation,
			TravelDistance: ProjectileUnitLengthTravelDistance,
			Source:         sourcePeer,
		}

	case ActionTurn:
		if degrees == nil {
			p.rejectAction(errTurnMissingDegrees)
			return nil
		}
		if *degrees < 0 || *degrees > 360 {
			p.rejectAction(errTurnOutOfRange)
			return nil
		}
		p.Rotation = *degrees

	case ActionUp:
		if p.Y+1 >= MaxFieldSizeY {
			p.rejectAction(borderError(action))
			return nil
		}
		p.Y++

	case ActionDown:
		if p.Y-1 < 0 {
			p.rejectAction(borderError(action))
			return nil
		}
		p.Y--

	case ActionLeft:
		if p.X-1 < 0 {
			p.rejectAction(borderError(action))
			return nil
		}
		p.X--

	case ActionRight:
		if p.X+1 >= MaxFieldSizeX {
			p.rejectAction(borderError(action))
			return nil
		}
		p.X++
	}

	return nil
}
