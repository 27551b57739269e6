package world

import (
	"math"

	"github.com/google/uuid"
)

// Projectile is a shot in flight. Positions are real-valued; hit detection
// happens on the integer cells swept during one tick of travel.
type Projectile struct {
	ID             uuid.UUID
	PreviousX      float64
	PreviousY      float64
	X              float64
	Y              float64
	Direction      int
	TravelDistance float64
	Source         uuid.UUID
}

// endPosition computes where the projectile lands after one tick. Direction 0
// faces +y and angles grow clockwise, so the x component uses cos(90-dir).
func (pr *Projectile) endPosition() (float64, float64) {
	rad := (90 - float64(pr.Direction)) * math.Pi / 180
	return pr.X + pr.TravelDistance*math.Cos(rad), pr.Y + pr.TravelDistance*math.Sin(rad)
}

// outOfField mirrors the culling bounds of the source: strictly-greater-than
// 30, so a projectile sitting exactly on the far edge survives one more tick
// even though players only occupy [0, 29].
func (pr *Projectile) outOfField() bool {
	return pr.X < 0 || pr.Y < 0 || pr.X > MaxFieldSizeX || pr.Y > MaxFieldSizeY
}

// StepProjectiles runs one physics tick: cull projectiles that left the
// field, sweep the survivors to their end positions and damage every player
// standing on a swept cell (the shooter's own projectiles excluded). It
// returns the surviving entity list; the input slice is not reused.
//
// The full swept line is re-evaluated every tick, so a projectile passing
// through the same player on consecutive ticks damages it each time.
func StepProjectiles(entities []*Projectile, players map[uuid.UUID]*Player) []*Projectile {
	kept := make([]*Projectile, 0, len(entities))

	for _, pr := range entities {
		if pr.outOfField() {
			continue
		}

		endX, endY := pr.endPosition()
		cells := sweptCells(pr.X, pr.Y, endX, endY)

		for peer, p := range players {
			if peer == pr.Source {
				continue
			}
			if _, hit := cells[cell{p.X, p.Y}]; hit {
				p.Health = max(0, p.Health-ProjectileDamage)
			}
		}

		pr.PreviousX, pr.PreviousY = pr.X, pr.Y
		pr.X, pr.Y = endX, endY
		kept = append(kept, pr)
	}

	return kept
}

type cell struct {
	x int
	y int
}

// sweptCells collects the integer grid cells on the midpoint line between the
// start and end position. The segment is sampled at half-unit steps and each
// sample rounds to its containing cell; the endpoint is always included.
func sweptCells(x0, y0, x1, y1 float64) map[cell]struct{} {
	steps := int(math.Ceil(math.Hypot(x1-x0, y1-y0) * 2))
	if steps < 1 {
		steps = 1
	}

	cells := make(map[cell]struct{}, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		cx := int(math.Round(x0 + (x1-x0)*t))
		cy := int(math.Round(y0 + (y1-y0)*t))
		cells[cell{cx, cy}] = struct{}{}
	}
	return cells
}
