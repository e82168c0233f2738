package matchmaker

import (
	"bytes"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/transcendence/pongserv/config"
	"github.com/transcendence/pongserv/internal/protocol"
)

// Pair is two connections ready to play a match together: Giver is whoever arrived second and
// handed its connection off; Joiner is the caller that had been waiting as the Executor.
type Pair struct {
	Giver, Joiner ConnData
}

// JoinOpponents determines this caller's role for the given connection and either hands it off
// to whoever is already waiting (returning ok=false, nothing to do but let the caller's
// goroutine end) or waits to receive another connection to pair with (returning the Pair).
//
// If this connection disconnects, times out, or violates the protocol while waiting as the
// Executor, the wait does not give up the slot: another connection may still claim it as Giver
// at any time, so this call keeps waiting on the same handoff channel and, once it eventually
// receives a Giver's connection, adopts that connection as its own identity and tries again -
// taking over a slot that looked stuck.
func JoinOpponents(initial ConnData, slot *MatchSlot, logger zerolog.Logger) (pair Pair, ok bool) {
	current := initial
	for {
		switch r := slot.extractRole().(type) {
		case giverRole:
			r.ch <- current
			return Pair{}, false

		case executorRole:
			data, err := waitForGiverData(r.ch, current)
			if err == nil {
				return Pair{Giver: data, Joiner: current}, true
			}
			logger.Info().Err(err).Str("task_id", current.ID).
				Msg("disconnection detected while waiting for an opponent; waiting for a giver to take over this slot")
			current = <-r.ch
			logger.Info().Str("task_id", current.ID).Msg("slot has been taken over by a new connection")
		}
	}
}

// waitForGiverData waits for a Giver to hand off its connection, meanwhile sending keep-alive
// pings and expecting nothing but their pongs from waiting's own connection: any real message, a mismatched
// or unsolicited pong, a ping-timeout, or a disconnect all end the wait with an error.
func waitForGiverData(ch <-chan ConnData, waiting ConnData) (ConnData, error) {
	pingTicker := time.NewTicker(config.MatchWaitPingIntervalSeconds * time.Second)
	defer pingTicker.Stop()

	var pongTimer *time.Timer
	var pongC <-chan time.Time
	defer func() {
		if pongTimer != nil {
			pongTimer.Stop()
		}
	}()

	for {
		select {
		case data := <-ch:
			return data, nil

		case <-pingTicker.C:
			if err := waiting.Conn.WritePing(config.PingPayload, time.Now().Add(2*time.Second)); err != nil {
				return ConnData{}, fmt.Errorf("%w: %v", protocol.ErrConnectionError, err)
			}
			if pongTimer != nil {
				pongTimer.Stop()
			}
			pongTimer = time.NewTimer(config.MatchWaitPongTimeoutSeconds * time.Second)
			pongC = pongTimer.C

		case <-pongC:
			return ConnData{}, protocol.ErrConnectionLost

		case payload, ok := <-waiting.Conn.Pongs():
			if !ok {
				return ConnData{}, protocol.ErrConnectionLost
			}
			if pongC == nil || !bytes.Equal([]byte(payload), config.PingPayload) {
				return ConnData{}, protocol.ErrProtocolViolation
			}
			pongC = nil

		case _, ok := <-waiting.Reads:
			if !ok {
				return ConnData{}, protocol.ErrConnectionLost
			}
			return ConnData{}, protocol.ErrProtocolViolation
		}
	}
}
