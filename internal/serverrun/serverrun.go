// Package serverrun assembles the accept loop, the match-maker, and graceful shutdown into the
// server's top-level run loop.
package serverrun

import (
	"context"
	"net"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/transcendence/pongserv/internal/accept"
	"github.com/transcendence/pongserv/internal/driver"
	"github.com/transcendence/pongserv/internal/logging"
	"github.com/transcendence/pongserv/internal/matchmaker"
	"github.com/transcendence/pongserv/internal/store"
	"github.com/transcendence/pongserv/internal/transport"
)

// liveSet tracks every connection currently owned by a handler goroutine, so shutdown can force
// them all closed instead of waiting on whatever a match happens to be doing.
type liveSet struct {
	mu    sync.Mutex
	conns map[*transport.Connection]struct{}
}

func (s *liveSet) add(c *transport.Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[c] = struct{}{}
}

func (s *liveSet) remove(c *transport.Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}

// closeAll forcibly closes every tracked connection. A handler whose read pump is blocked waiting
// on its client, or a match mid-tick, notices the closed socket on its next I/O and unwinds as an
// ordinary disconnect - no special abort signal is sent to clients.
func (s *liveSet) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		_ = c.Close()
	}
}

// Run accepts connections on listener until a SIGINT/SIGTERM arrives or the accept loop hits its
// consecutive-failure threshold, then aborts every in-flight connection and waits up to 5 seconds
// for the handler goroutines to unwind. logs supplies the per-component loggers (driver, matchmaker, store) so each
// subsystem's console/file verbosity is filtered independently, per task_id.
func Run(listener *net.TCPListener, generator *accept.Generator, st *store.Store, logs *logging.Logging) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logs.Component("driver")
	slot := &matchmaker.MatchSlot{}
	live := &liveSet{conns: make(map[*transport.Connection]struct{})}
	var connections errgroup.Group

	acceptErrC := make(chan error, 1)
	go func() {
		for {
			err := generator.Next(func(conn *transport.Connection, id string) {
				live.add(conn)
				connections.Go(func() error {
					defer live.remove(conn)
					defer conn.Close()
					driverLogger := logs.Component("driver").With().Str("task_id", id).Logger()
					matchmakerLogger := logs.Component("matchmaker").With().Str("task_id", id).Logger()
					storeLogger := logs.Component("store").With().Str("task_id", id).Logger()
					driver.Run(ctx, conn, slot, st, driverLogger, matchmakerLogger, storeLogger)
					return nil
				})
			})
			if err != nil {
				acceptErrC <- err
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("received a shutdown signal")
	case err := <-acceptErrC:
		logger.Error().Err(err).Msg("accept loop stopped due to too many consecutive failures")
		runErr = err
	}

	logger.Info().Msg("closing the listener and aborting in-flight connections...")
	_ = listener.Close()
	live.closeAll()

	// A handler stuck as a match-maker Executor with no partner left to arrive will keep waiting
	// on its handoff channel forever by design (see internal/matchmaker's recovery behavior), so
	// shutdown does not block indefinitely on every handler goroutine unwinding - it gives them a
	// grace period and then returns regardless.
	waitDone := make(chan struct{})
	go func() {
		_ = connections.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(5 * time.Second):
		logger.Warn().Msg("some connection handlers did not unwind before the shutdown grace period elapsed")
	}
	logger.Info().Msg("done, exiting")
	return runErr
}
