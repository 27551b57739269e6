package lobby

import (
	"testing"

	"github.com/google/uuid"

	"tank-arena/internal/protocol"
	"tank-arena/internal/world"
)

func newTestLobby() *Lobby {
	return NewLobby(uuid.New(), world.TickLengthMilliSeconds)
}

func addPlayer(t *testing.T, l *Lobby, name string) uuid.UUID {
	t.Helper()
	peer := uuid.New()
	hello, err := l.AddClient(peer, protocol.ClientTypePlayer, name)
	if err != nil {
		t.Fatalf("adding player %s: %v", name, err)
	}
	if hello == nil {
		t.Fatalf("player %s got no hello", name)
	}
	return peer
}

func TestAddPlayerClient(t *testing.T) {
	l := newTestLobby()
	peer := uuid.New()

	hello, err := l.AddClient(peer, protocol.ClientTypePlayer, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if hello == nil {
		t.Fatal("player join must produce a ClientHello")
	}
	if !hello.Success || hello.Message != "Connection successful." {
		t.Errorf("hello = %+v", hello)
	}
	if hello.PlayerID != l.Game.Players[peer].ID {
		t.Error("hello carries the wrong player id")
	}

	p := l.Game.Players[peer]
	if p.X != 14 || p.Y != 14 || p.Rotation != 0 {
		t.Errorf("single player seated at (%d,%d,%d), want (14,14,0)", p.X, p.Y, p.Rotation)
	}
	if p.Color != "red" {
		t.Errorf("first player color = %q, want red", p.Color)
	}
}

func TestAddSpectatorClient(t *testing.T) {
	l := newTestLobby()
	peer := uuid.New()

	hello, err := l.AddClient(peer, protocol.ClientTypeSpectator, "")
	if err != nil {
		t.Fatal(err)
	}
	if hello != nil {
		t.Error("spectator join must not produce a ClientHello")
	}
	if len(l.Game.Players) != 0 {
		t.Error("spectator join created a player")
	}
}

func TestTwoPlayersSeatedPerFormation(t *testing.T) {
	l := newTestLobby()
	p1 := addPlayer(t, l, "alice")
	p2 := addPlayer(t, l, "bob")

	a, b := l.Game.Players[p1], l.Game.Players[p2]
	if a.X != 5 || a.Y != 14 || a.Rotation != 270 {
		t.Errorf("first player at (%d,%d,%d), want (5,14,270)", a.X, a.Y, a.Rotation)
	}
	if b.X != 24 || b.Y != 14 || b.Rotation != 90 {
		t.Errorf("second player at (%d,%d,%d), want (24,14,90)", b.X, b.Y, b.Rotation)
	}
	if a.Color != "red" || b.Color != "blue" {
		t.Errorf("colors = %q, %q; want red, blue", a.Color, b.Color)
	}
}

func TestPlayerJoinRejectedWhenNotPending(t *testing.T) {
	for _, status := range []protocol.LobbyStatus{protocol.StatusRunning, protocol.StatusFinished} {
		t.Run(string(status), func(t *testing.T) {
			l := newTestLobby()
			l.Status = status

			_, err := l.AddClient(uuid.New(), protocol.ClientTypePlayer, "late")
			if err == nil {
				t.Fatal("player join must be rejected")
			}
			want := "Lobby with id '" + l.ID.String() + "' is not open for new connections"
			if err.Error() != want {
				t.Errorf("error = %q, want %q", err.Error(), want)
			}
			if len(l.Clients) != 0 || len(l.Game.Players) != 0 {
				t.Error("rejected join mutated lobby state")
			}
		})
	}
}

func TestSpectatorJoinAcceptedWhenRunning(t *testing.T) {
	l := newTestLobby()
	l.Status = protocol.StatusRunning

	if _, err := l.AddClient(uuid.New(), protocol.ClientTypeSpectator, ""); err != nil {
		t.Fatalf("spectator join rejected: %v", err)
	}
}

func TestEighthPlayerRejected(t *testing.T) {
	l := newTestLobby()
	for i := 0; i < world.MaxPlayersPerLobby; i++ {
		addPlayer(t, l, "p")
	}

	_, err := l.AddClient(uuid.New(), protocol.ClientTypePlayer, "late")
	if err == nil {
		t.Fatal("8th player join must fail")
	}
	want := "Cannot add player, because no starting formation is maintained for the player count."
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
	if len(l.Game.Players) != world.MaxPlayersPerLobby {
		t.Error("rejected join mutated the player set")
	}
}

func TestTickRotatesOnJoinAndLeaveDuringPending(t *testing.T) {
	l := newTestLobby()
	before := l.Tick

	peer := addPlayer(t, l, "alice")
	afterJoin := l.Tick
	if afterJoin == before {
		t.Error("tick did not rotate on player join")
	}

	if wasPlayer := l.RemoveClient(peer); !wasPlayer {
		t.Fatal("RemoveClient did not report a player")
	}
	if l.Tick == afterJoin {
		t.Error("tick did not rotate on player leave")
	}
}

func TestRemoveClientReseatsDuringPending(t *testing.T) {
	l := newTestLobby()
	p1 := addPlayer(t, l, "alice")
	p2 := addPlayer(t, l, "bob")

	l.RemoveClient(p1)

	b := l.Game.Players[p2]
	if b.X != 14 || b.Y != 14 || b.Rotation != 0 {
		t.Errorf("survivor at (%d,%d,%d), want re-seated (14,14,0)", b.X, b.Y, b.Rotation)
	}
	if b.Color != "red" {
		t.Errorf("survivor color = %q, want red after re-seat", b.Color)
	}
}

func TestRemoveSpectator(t *testing.T) {
	l := newTestLobby()
	peer := uuid.New()
	l.AddClient(peer, protocol.ClientTypeSpectator, "")

	if wasPlayer := l.RemoveClient(peer); wasPlayer {
		t.Error("spectator removal reported a player")
	}
	if len(l.Clients) != 0 {
		t.Error("spectator not removed")
	}
}

func TestInsertInput(t *testing.T) {
	l := newTestLobby()
	player := addPlayer(t, l, "alice")
	spectator := uuid.New()
	l.AddClient(spectator, protocol.ClientTypeSpectator, "")
	stranger := uuid.New()

	msg := func(tick uuid.UUID) protocol.ClientMessage {
		return protocol.ClientMessage{Tick: tick, Action: world.ActionUp}
	}

	if got := l.InsertInput(player, msg(l.Tick)); got != InputNotRunning {
		t.Errorf("PENDING lobby: got %v, want InputNotRunning", got)
	}

	l.Status = protocol.StatusRunning

	if got := l.InsertInput(spectator, msg(l.Tick)); got != InputNotAPlayer {
		t.Errorf("spectator input: got %v, want InputNotAPlayer", got)
	}
	if got := l.InsertInput(stranger, msg(l.Tick)); got != InputNotAPlayer {
		t.Errorf("unknown peer input: got %v, want InputNotAPlayer", got)
	}
	if got := l.InsertInput(player, msg(uuid.New())); got != InputStaleTick {
		t.Errorf("stale tick input: got %v, want InputStaleTick", got)
	}
	if got := l.InsertInput(player, msg(l.Tick)); got != InputAccepted {
		t.Errorf("valid input: got %v, want InputAccepted", got)
	}
	if got := l.InsertInput(player, msg(l.Tick)); got != InputDuplicate {
		t.Errorf("second input same tick: got %v, want InputDuplicate", got)
	}
	if len(l.Pending) != 1 {
		t.Errorf("pending inputs = %d, want 1", len(l.Pending))
	}
}

func TestSnapshot(t *testing.T) {
	l := newTestLobby()
	addPlayer(t, l, "alice")
	addPlayer(t, l, "bob")
	l.AddClient(uuid.New(), protocol.ClientTypeSpectator, "")

	snap := l.Snapshot()

	if snap.Tick != l.Tick {
		t.Error("snapshot tick mismatch")
	}
	if snap.TickLengthMilliSeconds != world.TickLengthMilliSeconds {
		t.Errorf("tick length = %d", snap.TickLengthMilliSeconds)
	}
	if len(snap.Players) != 2 {
		t.Fatalf("players = %d, want 2", len(snap.Players))
	}
	if snap.Players[0].Name != "alice" || snap.Players[1].Name != "bob" {
		t.Error("players not in join order")
	}
	if snap.Players[0].EntityType != "PLAYER" {
		t.Errorf("entity_type = %q", snap.Players[0].EntityType)
	}
	if len(snap.Entities) != 0 {
		t.Error("fresh lobby has entities")
	}
	if snap.Spectators != 1 {
		t.Errorf("spectators = %d, want 1", snap.Spectators)
	}
}

func TestSummary(t *testing.T) {
	l := newTestLobby()
	addPlayer(t, l, "alice")
	l.AddClient(uuid.New(), protocol.ClientTypeSpectator, "watcher")

	out := l.Summary()
	if out.ID != l.ID || out.Status != protocol.StatusPending {
		t.Errorf("summary = %+v", out)
	}
	if len(out.Clients) != 2 || out.Spectators != 1 {
		t.Errorf("clients = %d, spectators = %d", len(out.Clients), out.Spectators)
	}
	if out.Clients[0].ClientType != protocol.ClientTypePlayer || out.Clients[0].Username != "alice" {
		t.Errorf("first client = %+v", out.Clients[0])
	}
}

func TestCompletionPredicate(t *testing.T) {
	l := newTestLobby()
	p1 := addPlayer(t, l, "alice")
	p2 := addPlayer(t, l, "bob")
	l.AddClient(uuid.New(), protocol.ClientTypeSpectator, "")
	l.Status = protocol.StatusRunning

	l.mu.Lock()
	complete := l.allPlayersRespondedLocked()
	l.mu.Unlock()
	if complete {
		t.Error("predicate true with no inputs")
	}

	l.InsertInput(p1, protocol.ClientMessage{Tick: l.Tick, Action: world.ActionUp})
	l.mu.Lock()
	complete = l.allPlayersRespondedLocked()
	l.mu.Unlock()
	if complete {
		t.Error("predicate true with one of two inputs")
	}

	l.InsertInput(p2, protocol.ClientMessage{Tick: l.Tick, Action: world.ActionDown})
	l.mu.Lock()
	complete = l.allPlayersRespondedLocked()
	l.mu.Unlock()
	if !complete {
		t.Error("predicate false with all inputs present")
	}
}

func TestCompletionPredicateVacuouslyTrue(t *testing.T) {
	l := newTestLobby()
	l.AddClient(uuid.New(), protocol.ClientTypeSpectator, "")
	l.Status = protocol.StatusRunning

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.allPlayersRespondedLocked() {
		t.Error("predicate must be vacuously true with no players")
	}
}
