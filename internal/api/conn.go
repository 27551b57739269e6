package api

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var errConnClosed = errors.New("connection closed")
var errSendQueueFull = errors.New("send queue full")

// wsConn wraps one websocket connection behind a single-writer send queue.
// Only the writer goroutine touches the socket for data frames; close frames
// go through WriteControl, which gorilla permits alongside a concurrent
// writer.
type wsConn struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newWSConn(ws *websocket.Conn) *wsConn {
	c := &wsConn{
		ws:   ws,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
	go c.writePump()
	return c
}

// writePump is the single writer draining the send queue.
func (c *wsConn) writePump() {
	defer c.ws.Close()

	for {
		select {
		case payload := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// SendText enqueues one text frame. It implements lobby.Sender; an error
// means the peer should be unregistered.
func (c *wsConn) SendText(payload []byte) error {
	select {
	case <-c.done:
		return errConnClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return errConnClosed
	default:
		return errSendQueueFull
	}
}

// closeWithReason delivers a close frame with code 1000 (normal) and the
// given reason, then tears the connection down. Used for admission
// rejections.
func (c *wsConn) closeWithReason(reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	c.close()
}

// close shuts the writer down; the socket is closed by the pump.
func (c *wsConn) close() {
	c.once.Do(func() {
		close(c.done)
	})
}
