package game

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/transcendence/pongserv/internal/protocol"
	"github.com/transcendence/pongserv/internal/transport"
)

// ResultRecorder persists the outcome of a completed mode-0 match. internal/store.Store
// implements this.
type ResultRecorder interface {
	RecordResult(ctx context.Context, leftUsername, rightUsername string, leftScore, rightScore int, winner protocol.Side, start, end time.Time) error
}

// PlayGameMode0 runs a matched remote 1v1 game between left and right to completion: the
// pre-game grace period, the tick loop, and recording the result to the database. A failure
// during the grace period is reported as (side, err) so the caller can return the surviving
// player to match-making, mirroring PlayingError::ClientError in the original design. storeLogger
// is scoped to the database-access subsystem's own console/file verbosity.
func PlayGameMode0(left, right *transport.Connection, leftID, rightID string, leftReads, rightReads <-chan transport.Message, recorder ResultRecorder, logger, storeLogger zerolog.Logger) (failedSide protocol.Side, startupErr error) {
	startTime := time.Now()
	if side, err := waitGame0Start(left, right, leftID, rightID, leftReads, rightReads); err != nil {
		return side, err
	}

	result := runGame0Loop(left, right, leftReads, rightReads, logger)
	endTime := time.Now()

	if result.WinType != WinTypeScoreReached {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := recorder.RecordResult(ctx, leftID, rightID, result.Score[0], result.Score[1], result.Winner, startTime, endTime); err != nil {
		storeLogger.Error().Err(err).Msg("database error while recording a finished game, result is lost")
	}
	return 0, nil
}

// PlayGameMode1 runs a local 1v1 game to completion on a single connection.
func PlayGameMode1(conn *transport.Connection, reads <-chan transport.Message, logger zerolog.Logger) {
	if err := waitGame1StartAndAnnounce(conn); err != nil {
		return
	}
	runGame1Loop(conn, reads, logger)
}
