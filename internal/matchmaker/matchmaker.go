// Package matchmaker pairs two incoming connections requesting a matched remote 1v1 game onto a
// single goroutine that then runs their match. Unlike a room registry keyed by id, there is only
// ever one match waiting to be filled at a time: the first connection to arrive becomes the
// Executor and waits; the second becomes the Giver and hands its connection to the Executor,
// which goes on to run the game for both of them.
package matchmaker

import (
	"sync"

	"github.com/transcendence/pongserv/internal/transport"
)

// ConnData bundles a connection with its background read-pump channel and its authenticated id,
// the minimum a matched pair of goroutines needs to hand off to each other or to start a game.
type ConnData struct {
	Conn  *transport.Connection
	Reads <-chan transport.Message
	ID    string
}

// MatchSlot is the process-wide, single-match-at-a-time rendezvous point. The zero value is
// ready to use.
type MatchSlot struct {
	mu      sync.Mutex
	pending chan ConnData
}

// giverRole and executorRole are the two outcomes of contending for the slot.
type giverRole struct{ ch chan ConnData }
type executorRole struct{ ch chan ConnData }

type role interface{ isRole() }

func (giverRole) isRole()    {}
func (executorRole) isRole() {}

// extractRole decides, atomically, whether the caller is the first or second connection to
// reach the slot since it was last filled.
func (s *MatchSlot) extractRole() role {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		ch := s.pending
		s.pending = nil
		return giverRole{ch}
	}
	ch := make(chan ConnData, 1)
	s.pending = ch
	return executorRole{ch}
}
