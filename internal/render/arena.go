// Package render draws a lobby snapshot as a PNG for the control plane's
// frame endpoint. Purely read-only: it consumes a broadcast snapshot and
// never touches lobby state.
package render

import (
	"io"

	"github.com/fogleman/gg"

	"tank-arena/internal/protocol"
	"tank-arena/internal/world"
)

const (
	cellSize = 24 // pixels per grid cell
	margin   = 12
)

// colorHex maps the player color names onto render colors.
var colorHex = map[string]string{
	"red":    "#e74c3c",
	"blue":   "#3498db",
	"green":  "#2ecc71",
	"purple": "#9b59b6",
	"orange": "#e67e22",
	"yellow": "#f1c40f",
	"cyan":   "#1abc9c",
}

// EncodePNG renders the snapshot and writes it as PNG.
func EncodePNG(w io.Writer, snap protocol.GameStateOut) error {
	size := world.MaxFieldSizeX*cellSize + 2*margin
	dc := gg.NewContext(size, size)

	dc.SetHexColor("#1a1a2e")
	dc.Clear()

	drawGrid(dc)
	for _, pr := range snap.Entities {
		drawProjectile(dc, pr)
	}
	for _, p := range snap.Players {
		drawPlayer(dc, p)
	}

	return dc.EncodePNG(w)
}

// cellCenter converts grid coordinates to pixel coordinates, with field +y
// pointing up on screen.
func cellCenter(x, y float64) (float64, float64) {
	px := margin + (x+0.5)*cellSize
	py := margin + (float64(world.MaxFieldSizeY)-y-0.5)*cellSize
	return px, py
}

func drawGrid(dc *gg.Context) {
	dc.SetHexColor("#16213e")
	dc.SetLineWidth(1)
	for i := 0; i <= world.MaxFieldSizeX; i++ {
		p := float64(margin + i*cellSize)
		dc.DrawLine(p, margin, p, float64(margin+world.MaxFieldSizeY*cellSize))
		dc.DrawLine(margin, p, float64(margin+world.MaxFieldSizeX*cellSize), p)
	}
	dc.Stroke()
}

func drawPlayer(dc *gg.Context, p protocol.PlayerOut) {
	hex, ok := colorHex[p.Color]
	if !ok {
		hex = "#bdc3c7"
	}
	cx, cy := cellCenter(float64(p.X), float64(p.Y))

	// Tank body: a triangle pointing along the rotation (0 = field +y,
	// clockwise). Field +y is screen-up, so clockwise stays clockwise.
	dc.Push()
	dc.RotateAbout(gg.Radians(float64(p.Rotation)), cx, cy)
	dc.MoveTo(cx, cy-9)
	dc.LineTo(cx-7, cy+8)
	dc.LineTo(cx+7, cy+8)
	dc.ClosePath()
	if p.Health > 0 {
		dc.SetHexColor(hex)
	} else {
		dc.SetHexColor("#555555")
	}
	dc.Fill()
	dc.Pop()

	// Health bar above the tank.
	barW := float64(cellSize) - 4
	dc.SetHexColor("#333333")
	dc.DrawRectangle(cx-barW/2, cy-16, barW, 3)
	dc.Fill()
	dc.SetHexColor("#2ecc71")
	dc.DrawRectangle(cx-barW/2, cy-16, barW*float64(p.Health)/float64(world.StartingHealth), 3)
	dc.Fill()
}

func drawProjectile(dc *gg.Context, pr protocol.ProjectileOut) {
	x0, y0 := cellCenter(pr.PreviousX, pr.PreviousY)
	x1, y1 := cellCenter(pr.X, pr.Y)

	dc.SetHexColor("#f39c12")
	dc.SetLineWidth(2)
	dc.DrawLine(x0, y0, x1, y1)
	dc.Stroke()
	dc.DrawCircle(x1, y1, 4)
	dc.Fill()
}
