package game

import (
	"time"

	"github.com/transcendence/pongserv/config"
	"github.com/transcendence/pongserv/internal/protocol"
	"github.com/transcendence/pongserv/internal/transport"
)

// waitGame0Start sends each player the game-mode-0 start announcement and then waits out the
// grace period, reading and discarding any message either client sends in the meantime. Returns
// an error naming the side whose start announcement could not be written or whose connection
// closed during the wait.
func waitGame0Start(left, right *transport.Connection, leftID, rightID string, leftReads, rightReads <-chan transport.Message) (protocol.Side, error) {
	startAt := time.Now().Add(config.GameStartGraceSeconds * time.Second)
	startMillis := uint64(startAt.UnixMilli())

	if err := left.WriteBinary(protocol.EncodeGameMode0Start(rightID, protocol.SideLeft, startMillis)); err != nil {
		return protocol.SideLeft, err
	}
	if err := right.WriteBinary(protocol.EncodeGameMode0Start(leftID, protocol.SideRight, startMillis)); err != nil {
		return protocol.SideRight, err
	}

	deadline := time.NewTimer(time.Until(startAt))
	defer deadline.Stop()
	for {
		select {
		case _, ok := <-leftReads:
			if !ok {
				return protocol.SideLeft, protocol.ErrConnectionLost
			}
		case _, ok := <-rightReads:
			if !ok {
				return protocol.SideRight, protocol.ErrConnectionLost
			}
		case <-deadline.C:
			return 0, nil
		}
	}
}

// waitGame1StartAndAnnounce sends the game-mode-1 start announcement and waits out the grace
// period before the running loop begins.
func waitGame1StartAndAnnounce(conn *transport.Connection) error {
	startAt := time.Now().Add(config.GameStartGraceSeconds * time.Second)
	if err := conn.WriteBinary(protocol.EncodeGameMode1Start(uint64(startAt.UnixMilli()))); err != nil {
		return err
	}
	time.Sleep(time.Until(startAt))
	return nil
}
