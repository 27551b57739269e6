package protocol

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"tank-arena/internal/world"
)

func TestParseClientType(t *testing.T) {
	if ct, ok := ParseClientType("PLAYER"); !ok || ct != ClientTypePlayer {
		t.Errorf("PLAYER parsed as %q, %v", ct, ok)
	}
	if ct, ok := ParseClientType("SPECTATOR"); !ok || ct != ClientTypeSpectator {
		t.Errorf("SPECTATOR parsed as %q, %v", ct, ok)
	}
	for _, s := range []string{"", "player", "Spectator", "ADMIN"} {
		if _, ok := ParseClientType(s); ok {
			t.Errorf("%q accepted as a client type", s)
		}
	}
}

func TestLobbyStatusValid(t *testing.T) {
	for _, s := range []LobbyStatus{StatusPending, StatusRunning, StatusFinished} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []LobbyStatus{"", "pending", "PAUSED"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestClientMessageDegreesOptional(t *testing.T) {
	var msg ClientMessage
	if err := json.Unmarshal([]byte(`{"tick":"`+uuid.NewString()+`","action":"UP"}`), &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Degrees != nil {
		t.Error("absent degrees decoded non-nil")
	}
	if msg.Action != world.ActionUp {
		t.Errorf("action = %q", msg.Action)
	}

	if err := json.Unmarshal([]byte(`{"tick":"`+uuid.NewString()+`","action":"TURN","degrees":90}`), &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Degrees == nil || *msg.Degrees != 90 {
		t.Error("degrees not decoded")
	}
}

func TestNewClientHello(t *testing.T) {
	id := uuid.New()
	hello := NewClientHello(id)
	if !hello.Success || hello.Message != "Connection successful." || hello.PlayerID != id {
		t.Errorf("hello = %+v", hello)
	}
}
