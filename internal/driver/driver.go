// Package driver implements the per-connection protocol entry point: receive the hello
// handshake, validate the requested protocol version and player identity, and dispatch to the
// requested game mode.
package driver

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/transcendence/pongserv/config"
	"github.com/transcendence/pongserv/internal/game"
	"github.com/transcendence/pongserv/internal/matchmaker"
	"github.com/transcendence/pongserv/internal/protocol"
	"github.com/transcendence/pongserv/internal/store"
	"github.com/transcendence/pongserv/internal/transport"
)

// Run drives a single accepted connection through the whole protocol: hello, auth, and whichever
// game mode was requested. It returns once the connection's work is entirely done; the caller is
// then free to close the underlying socket. matchmakerLogger and storeLogger are scoped to those
// subsystems' own console/file verbosity, independent of logger's.
func Run(ctx context.Context, conn *transport.Connection, slot *matchmaker.MatchSlot, st *store.Store, logger, matchmakerLogger, storeLogger zerolog.Logger) {
	logger.Info().Msg("beginning to unroll the protocol with a client")
	reads := conn.StartReading()

	hello, reads, err := receiveHello(conn, reads)
	if err != nil {
		logger.Info().Err(err).Msg("error while receiving a hello message")
		return
	}

	if !st.PlayerExists(ctx, hello.ID) {
		logger.Info().Str("requested_id", hello.ID).Msg("the client sent an id that doesn't exist in the users database")
		return
	}

	dispatch(conn, reads, hello, slot, st, logger, matchmakerLogger, storeLogger)
	logger.Info().Msg("protocol done")
}

// receiveHello waits for the client's Hello message, within the hello timeout, answering any
// pings transparently in the meantime (the transport layer absorbs those before they ever reach
// the reads channel).
func receiveHello(conn *transport.Connection, reads <-chan transport.Message) (protocol.Hello, <-chan transport.Message, error) {
	_ = conn.SetReadDeadline(time.Now().Add(config.HelloTimeoutSeconds * time.Second))
	msg, ok := <-reads
	_ = conn.SetReadDeadline(time.Time{})
	if !ok {
		return protocol.Hello{}, reads, conn.LastReadError()
	}
	hello, err := protocol.DecodeHello(msg.Data)
	if err != nil {
		return protocol.Hello{}, reads, err
	}
	return hello, reads, nil
}

func dispatch(conn *transport.Connection, reads <-chan transport.Message, hello protocol.Hello, slot *matchmaker.MatchSlot, st *store.Store, logger, matchmakerLogger, storeLogger zerolog.Logger) {
	if hello.ProtoVersion != config.SupportedProtoVersion {
		logger.Info().Uint8("proto_version", hello.ProtoVersion).Msg("received a request for an unsupported protocol version")
		return
	}
	switch protocol.GameMode(hello.GameMode) {
	case protocol.GameModeMatchedRemote1v1:
		launchGameMode0(conn, reads, hello.ID, slot, st, logger, matchmakerLogger, storeLogger)
	case protocol.GameModeLocal1v1:
		logger.Trace().Msg("[game mode 1] request received")
		game.PlayGameMode1(conn, reads, logger)
	default:
		logger.Info().Uint8("game_mode", hello.GameMode).Msg("received a request for an unsupported game mode")
	}
}

// launchGameMode0 joins this connection with another through the match-maker, then plays a
// match. A failed pre-game handshake (one side disconnects before the game actually starts)
// returns the surviving connection to match-making instead of treating it as fatal.
func launchGameMode0(conn *transport.Connection, reads <-chan transport.Message, id string, slot *matchmaker.MatchSlot, st *store.Store, logger, matchmakerLogger, storeLogger zerolog.Logger) {
	logger.Trace().Msg("[game mode 0] request received")
	current := matchmaker.ConnData{Conn: conn, Reads: reads, ID: id}
	for {
		pair, ok := matchmaker.JoinOpponents(current, slot, matchmakerLogger)
		if !ok {
			logger.Info().Msg("connection has been given away to another task")
			return
		}

		logger.Trace().Msg("two connections have been joined, playing a game")
		failedSide, err := game.PlayGameMode0(pair.Giver.Conn, pair.Joiner.Conn, pair.Giver.ID, pair.Joiner.ID, pair.Giver.Reads, pair.Joiner.Reads, st, logger, storeLogger)
		if err == nil {
			logger.Trace().Msg("the game has been played to completion")
			return
		}

		logger.Info().Err(err).Msg("game startup failed, returning the surviving player to match-making")
		if failedSide == protocol.SideLeft {
			current = pair.Joiner
		} else {
			current = pair.Giver
		}
	}
}
