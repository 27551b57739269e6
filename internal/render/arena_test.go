package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/google/uuid"

	"tank-arena/internal/protocol"
	"tank-arena/internal/world"
)

func TestEncodePNG(t *testing.T) {
	snap := protocol.GameStateOut{
		Tick:                   uuid.New(),
		TickLengthMilliSeconds: world.TickLengthMilliSeconds,
		Players: []protocol.PlayerOut{
			{ID: uuid.New(), Name: "alice", X: 5, Y: 14, Rotation: 270, Color: "red", Health: 100, EntityType: "PLAYER"},
			{ID: uuid.New(), Name: "bob", X: 24, Y: 14, Rotation: 90, Color: "blue", Health: 0, EntityType: "PLAYER"},
			{ID: uuid.New(), Name: "carol", X: 14, Y: 14, Color: "no-such-color", Health: 60, EntityType: "PLAYER"},
		},
		Entities: []protocol.ProjectileOut{
			{ID: uuid.New(), X: 20, Y: 14, PreviousX: 14, PreviousY: 14, Direction: 90, TravelDistance: 6},
		},
	}

	var buf bytes.Buffer
	if err := EncodePNG(&buf, snap); err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a decodable PNG: %v", err)
	}
	wantSize := world.MaxFieldSizeX*cellSize + 2*margin
	bounds := img.Bounds()
	if bounds.Dx() != wantSize || bounds.Dy() != wantSize {
		t.Errorf("image is %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), wantSize, wantSize)
	}
}

func TestEncodePNGEmptyLobby(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, protocol.GameStateOut{Tick: uuid.New()}); err != nil {
		t.Fatalf("EncodePNG of an empty lobby failed: %v", err)
	}
}
