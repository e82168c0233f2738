// Package transport wraps a gorilla/websocket connection with the read-pump pattern used
// throughout this server: a single background goroutine drains the socket and publishes data
// frames on a channel, while control frames (ping/pong) are absorbed by gorilla's own handlers
// before ever reaching the channel - so callers never see anything but real payloads or the
// connection ending.
package transport

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/transcendence/pongserv/internal/protocol"
)

// MaxMessageBytes and MaxFrameBytes bound the size of what a client may send, matching the
// original server's WebSocketConfig (max_message_size=2KiB, max_frame_size=1KiB). gorilla does
// not expose a separate per-frame cap; ReadBufferSize approximates max_frame_size and
// SetReadLimit enforces max_message_size exactly. A WriteBufferSize of 0 does not disable write
// buffering in gorilla: the upgraded connection reuses the hijacked connection's write buffer.
const (
	MaxMessageBytes = 2 << 10
	MaxFrameBytes   = 1 << 10
	WriteBufferSize = 0
)

// Upgrader is the shared gorilla/websocket.Upgrader configured with the original server's
// buffer limits. CheckOrigin is permissive: this server authenticates via the hello message's
// database-backed id check, not same-origin policy.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  MaxFrameBytes,
	WriteBufferSize: WriteBufferSize,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Message is one data frame read off a Connection.
type Message struct {
	Type int
	Data []byte
}

// Connection is a single client's websocket, owned by exactly one goroutine at a time: the
// accept dispatcher hands it to a connection-handling goroutine, which may in turn hand it to
// the match-maker's executor/giver exchange. Because ownership never overlaps, no write mutex is
// needed.
type Connection struct {
	ws      *websocket.Conn
	id      string
	pongs   chan string
	reads   chan Message
	readErr error
}

// NewConnection wraps an upgraded websocket connection.
func NewConnection(ws *websocket.Conn, id string) *Connection {
	c := &Connection{ws: ws, id: id, pongs: make(chan string, 1)}
	ws.SetReadLimit(MaxMessageBytes)
	ws.SetPongHandler(func(appData string) error {
		select {
		case c.pongs <- appData:
		default:
		}
		return nil
	})
	return c
}

// ID returns the short identifier assigned to this connection at accept time.
func (c *Connection) ID() string { return c.id }

// RemoteAddr returns the remote network address of the underlying socket.
func (c *Connection) RemoteAddr() net.Addr { return c.ws.RemoteAddr() }

// Close closes the underlying connection.
func (c *Connection) Close() error { return c.ws.Close() }

// Pongs returns the channel on which received pong payloads are published. The channel has
// capacity 1: a pong that arrives while an earlier one is still unread is dropped, which is
// enough for callers such as the match-maker's keep-alive wait.
func (c *Connection) Pongs() <-chan string { return c.pongs }

// StartReading spawns the background read pump and returns the channel data frames arrive on.
// The channel is closed once a read error occurs; call LastReadError after closure to learn why.
func (c *Connection) StartReading() <-chan Message {
	c.reads = make(chan Message)
	go func() {
		defer close(c.reads)
		for {
			mt, data, err := c.ws.ReadMessage()
			if err != nil {
				c.readErr = err
				return
			}
			c.reads <- Message{Type: mt, Data: data}
		}
	}()
	return c.reads
}

// LastReadError returns the error that ended the read pump, classified into the sentinel
// protocol errors. Valid only after the channel from StartReading has been closed.
func (c *Connection) LastReadError() error {
	return ClassifyReadError(c.readErr)
}

// ClassifyReadError maps a gorilla/websocket read error to one of the protocol sentinel errors.
func ClassifyReadError(err error) error {
	if err == nil {
		return nil
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return fmt.Errorf("%w: %v", protocol.ErrTimeout, err)
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return fmt.Errorf("%w: %v", protocol.ErrConnectionLost, err)
	}
	if _, ok := err.(*websocket.CloseError); ok {
		return fmt.Errorf("%w: %v", protocol.ErrConnectionLost, err)
	}
	return fmt.Errorf("%w: %v", protocol.ErrConnectionError, err)
}

// WriteBinary writes a single binary data frame.
func (c *Connection) WriteBinary(data []byte) error {
	if err := c.ws.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("%w: %v", protocol.ErrConnectionError, err)
	}
	return nil
}

// WritePing writes a ping control frame with the given deadline for the write itself.
func (c *Connection) WritePing(payload []byte, deadline time.Time) error {
	if err := c.ws.WriteControl(websocket.PingMessage, payload, deadline); err != nil {
		return fmt.Errorf("%w: %v", protocol.ErrConnectionError, err)
	}
	return nil
}

// SetReadDeadline forwards to the underlying connection.
func (c *Connection) SetReadDeadline(t time.Time) error { return c.ws.SetReadDeadline(t) }
