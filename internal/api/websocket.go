package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tank-arena/internal/lobby"
	"tank-arena/internal/metrics"
	"tank-arena/internal/protocol"
)

const (
	// sendQueueSize bounds the per-connection send queue. A client that
	// cannot drain snapshots this far behind is dropped.
	sendQueueSize = 32

	writeWait = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The game transport is origin-agnostic; admission happens on the URL.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GameServer is the client transport: it upgrades connections on
// /lobby/{id}, performs admission, and runs one message-router pump per
// accepted connection.
type GameServer struct {
	dir     *lobby.Directory
	reg     *lobby.Registry
	sched   *lobby.Scheduler
	limiter *IPRateLimiter
}

// NewGameServer wires the transport to the coordinator core.
func NewGameServer(dir *lobby.Directory, reg *lobby.Registry, sched *lobby.Scheduler) *GameServer {
	return &GameServer{
		dir:     dir,
		reg:     reg,
		sched:   sched,
		limiter: NewIPRateLimiter(DefaultRateLimitConfig),
	}
}

// Router returns the transport's HTTP handler. Any path without a lobby id
// still upgrades, so the canonical close reason can be delivered in-band.
func (g *GameServer) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Get("/lobby/{lobbyID}", g.handleConnect)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if c := g.upgrade(w, req); c != nil {
			metrics.RecordConnectionRejected("bad_url")
			c.closeWithReason("Could not find lobby id in path")
		}
	})
	return r
}

func (g *GameServer) upgrade(w http.ResponseWriter, r *http.Request) *wsConn {
	if !g.limiter.Allow(GetClientIP(r)) {
		metrics.RecordConnectionRejected("rate_limit")
		http.Error(w, "Too many connections", http.StatusTooManyRequests)
		return nil
	}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("🔌 WebSocket upgrade error: %v", err)
		return nil
	}
	return newWSConn(ws)
}

// handleConnect performs admission per the connect URL
// /lobby/{uuid}?clientType=PLAYER|SPECTATOR&username=... and, when accepted,
// runs the read pump until the peer closes. Every rejection is a close frame
// with code 1000 and the canonical reason.
func (g *GameServer) handleConnect(w http.ResponseWriter, r *http.Request) {
	c := g.upgrade(w, r)
	if c == nil {
		return
	}

	idStr := chi.URLParam(r, "lobbyID")
	lobbyID, err := uuid.Parse(idStr)
	if err != nil {
		metrics.RecordConnectionRejected("bad_url")
		c.closeWithReason(fmt.Sprintf("'%s' is not a valid UUID", idStr))
		return
	}

	if r.URL.RawQuery == "" {
		metrics.RecordConnectionRejected("bad_url")
		c.closeWithReason("Missing query string in URL")
		return
	}
	query := r.URL.Query()

	clientTypeStr := query.Get("clientType")
	if clientTypeStr == "" {
		metrics.RecordConnectionRejected("bad_url")
		c.closeWithReason("Missing 'clientType' parameter in supplied query parameters")
		return
	}
	clientType, ok := protocol.ParseClientType(clientTypeStr)
	if !ok {
		metrics.RecordConnectionRejected("bad_url")
		c.closeWithReason(fmt.Sprintf("%s is not a valid client type", clientTypeStr))
		return
	}

	username := query.Get("username")
	if clientType == protocol.ClientTypePlayer && username == "" {
		metrics.RecordConnectionRejected("bad_url")
		c.closeWithReason("Player clients must supply a 'username' via the query parameter")
		return
	}

	l, ok := g.dir.Get(lobbyID)
	if !ok {
		metrics.RecordConnectionRejected("lobby")
		c.closeWithReason(fmt.Sprintf("Could not find lobby with id '%s'", lobbyID))
		return
	}

	peer := uuid.New()
	hello, err := l.AddClient(peer, clientType, username)
	if err != nil {
		metrics.RecordConnectionRejected("admission")
		c.closeWithReason(err.Error())
		return
	}

	g.reg.Register(peer, c)
	log.Printf("🔌 %s '%s' joined lobby %s as peer %s", clientType, username, lobbyID, peer)

	if hello != nil {
		if payload, err := json.Marshal(hello); err == nil {
			g.reg.SendText(peer, payload)
		}
	}

	g.readPump(c, l, peer)
}

// readPump is the message router for one connection: it decodes frames,
// deposits accepted inputs and pokes the scheduler's early-advance check.
// Protocol errors are logged and dropped; the connection stays open. On exit
// the client leaves the lobby and the registry.
func (g *GameServer) readPump(c *wsConn, l *lobby.Lobby, peer uuid.UUID) {
	defer func() {
		g.sched.Disconnect(l.ID, peer)
		c.close()
	}()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		var msg protocol.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("📨 Dropping frame from peer %s: decode failed: %v", peer, err)
			continue
		}
		if !msg.Action.Valid() {
			log.Printf("📨 Dropping frame from peer %s: unknown action '%s'", peer, msg.Action)
			continue
		}

		result := l.InsertInput(peer, msg)
		metrics.RecordInput(result.String())
		if result != lobby.InputAccepted {
			log.Printf("📨 Dropping frame from peer %s: %s", peer, result)
			continue
		}

		go g.sched.MaybeAdvance(l.ID)
	}
}
