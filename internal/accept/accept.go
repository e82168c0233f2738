// Package accept dispatches incoming TCP connections to per-connection goroutines: TCP accept,
// TLS handshake, WebSocket upgrade, then handoff.
package accept

import (
	"bufio"
	"crypto/tls"
	"errors"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/transcendence/pongserv/config"
	"github.com/transcendence/pongserv/internal/ids"
	"github.com/transcendence/pongserv/internal/transport"
)

// ErrTooManyFailures is returned once MaxAcceptFailures consecutive TCP accept errors have
// occurred; the caller should treat this as fatal to the listen loop.
var ErrTooManyFailures = errors.New("too many consecutive accept failures")

// Handler is invoked with each successfully upgraded connection, on its own goroutine.
type Handler func(conn *transport.Connection, id string)

// Generator dispatches connections accepted from a single listener to freshly spawned
// goroutines, tracking consecutive raw TCP accept failures only - a TLS or WebSocket upgrade
// failure never counts towards the failure threshold. tlsLogger and transportLogger are scoped to
// those subsystems' own console/file verbosity, independent of logger's (the raw TCP accept log).
type Generator struct {
	listener               *net.TCPListener
	tlsConfig              *tls.Config
	logger                 zerolog.Logger
	tlsLogger              zerolog.Logger
	transportLogger        zerolog.Logger
	consecutiveAcceptFails int
}

// NewGenerator wraps a bound TCP listener for dispatching.
func NewGenerator(listener *net.TCPListener, tlsConfig *tls.Config, logger, tlsLogger, transportLogger zerolog.Logger) *Generator {
	return &Generator{listener: listener, tlsConfig: tlsConfig, logger: logger, tlsLogger: tlsLogger, transportLogger: transportLogger}
}

// Next accepts, upgrades, and hands off a single connection, spawning handle on its own
// goroutine on success. It returns ErrTooManyFailures once the consecutive raw-accept failure
// threshold is hit, at which point the caller should stop calling Next.
func (g *Generator) Next(handle Handler) error {
	taskID := ids.NewTaskID()

	tcpConn, err := g.acceptWithOpts()
	if err != nil {
		return g.handleAcceptError(taskID, err)
	}
	g.consecutiveAcceptFails = 0

	g.logger.Trace().Str("task_id", taskID).Msg("accepted a TCP connection, upgrading to TLS")
	tlsConn := tls.Server(tcpConn, g.tlsConfig)
	if err := tlsConn.Handshake(); err != nil {
		g.tlsLogger.Warn().Str("task_id", taskID).Err(err).Msg("failed to upgrade a connection to TLS")
		return nil
	}

	g.logger.Trace().Str("task_id", taskID).Msg("accepted a TLS connection, upgrading to a websocket")
	ws, err := wsAccept(tlsConn)
	if err != nil {
		g.transportLogger.Info().Str("task_id", taskID).Err(err).Msg("failed to upgrade the TLS connection to a websocket")
		return nil
	}

	g.logger.Info().Str("task_id", taskID).Msg("established a websocket connection, spawning a task to handle it")
	conn := transport.NewConnection(ws, taskID)
	go handle(conn, taskID)
	return nil
}

func (g *Generator) acceptWithOpts() (*net.TCPConn, error) {
	conn, err := g.listener.AcceptTCP()
	if err != nil {
		return nil, err
	}
	if err := conn.SetNoDelay(true); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func (g *Generator) handleAcceptError(taskID string, err error) error {
	g.consecutiveAcceptFails++
	if g.consecutiveAcceptFails != config.MaxAcceptFailures {
		g.logger.Warn().Str("task_id", taskID).Err(err).
			Int("failure_count", g.consecutiveAcceptFails).Int("threshold", config.MaxAcceptFailures).
			Msg("accepting an incoming connection failed")
		return nil
	}
	g.logger.Error().Str("task_id", taskID).Err(err).
		Int("failure_count", g.consecutiveAcceptFails).Int("threshold", config.MaxAcceptFailures).
		Msg("accepting an incoming connection failed; threshold hit, treating this as fatal")
	return ErrTooManyFailures
}

// wsAccept upgrades a raw stream to a WebSocket server connection with small buffers, matching
// the original server's conservative framing limits. This server owns the TCP/TLS accept loop
// itself rather than running behind an http.Server, so the handshake's HTTP request is parsed
// directly off the connection and handed to gorilla's Upgrader through a minimal
// http.ResponseWriter that hijacks back to the same connection.
func wsAccept(conn net.Conn) (*websocket.Conn, error) {
	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
	req, err := http.ReadRequest(rw.Reader)
	if err != nil {
		return nil, err
	}
	hj := &hijackResponseWriter{conn: conn, rw: rw, header: make(http.Header)}
	return transport.Upgrader.Upgrade(hj, req, nil)
}

// hijackResponseWriter is the minimal http.ResponseWriter + http.Hijacker needed to let
// gorilla/websocket take over a connection that was never handled through an http.Server.
type hijackResponseWriter struct {
	conn   net.Conn
	rw     *bufio.ReadWriter
	header http.Header
	status int
}

func (h *hijackResponseWriter) Header() http.Header { return h.header }

func (h *hijackResponseWriter) Write(b []byte) (int, error) {
	if h.status == 0 {
		h.status = http.StatusOK
	}
	return h.rw.Write(b)
}

func (h *hijackResponseWriter) WriteHeader(statusCode int) { h.status = statusCode }

func (h *hijackResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return h.conn, h.rw, nil
}
