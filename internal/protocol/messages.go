// Package protocol implements the binary, CBOR-tuple-encoded wire messages exchanged with
// clients, and the sentinel errors produced while decoding them. Every message type is encoded
// as a CBOR array (the `cbor:",toarray"` struct tag), the Go equivalent of the original server's
// ciborium tuple serialization.
package protocol

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// GameMode identifies which of the two supported game modes a Hello message requests.
type GameMode uint8

const (
	GameModeMatchedRemote1v1 GameMode = 0
	GameModeLocal1v1         GameMode = 1
)

// Hello is the first message a client must send, within the hello timeout, to select a protocol
// version and a game mode.
type Hello struct {
	_           struct{} `cbor:",toarray"`
	ProtoVersion uint8
	ID           string
	GameMode     uint8
}

// DecodeHello decodes a Hello tuple from raw CBOR bytes.
func DecodeHello(data []byte) (Hello, error) {
	var h Hello
	if err := cbor.Unmarshal(data, &h); err != nil {
		return Hello{}, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	return h, nil
}

// InputMode0 carries the single pad-movement delta (-1, 0 or 1) a mode-0 client sends each tick.
type InputMode0 struct {
	_     struct{} `cbor:",toarray"`
	Delta int8
}

// DecodeInputMode0 decodes and range-checks a mode-0 input tuple.
func DecodeInputMode0(data []byte) (int8, error) {
	var m InputMode0
	if err := cbor.Unmarshal(data, &m); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	if m.Delta < -1 || m.Delta > 1 {
		return 0, fmt.Errorf("%w: input delta %d out of [-1,1]", ErrProtocolViolation, m.Delta)
	}
	return m.Delta, nil
}

// InputMode1 carries both pads' movement deltas, since a single local client drives both.
type InputMode1 struct {
	_              struct{} `cbor:",toarray"`
	LeftMovement   int8
	RightMovement  int8
}

// DecodeInputMode1 decodes and range-checks a mode-1 input tuple.
func DecodeInputMode1(data []byte) (left, right int8, err error) {
	var m InputMode1
	if err := cbor.Unmarshal(data, &m); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	if m.LeftMovement < -1 || m.LeftMovement > 1 || m.RightMovement < -1 || m.RightMovement > 1 {
		return 0, 0, fmt.Errorf("%w: movement out of [-1,1]", ErrProtocolViolation)
	}
	return m.LeftMovement, m.RightMovement, nil
}

// GameMode0Start announces the opponent, the recipient's side, and the start time to each of the
// two matched players.
type GameMode0Start struct {
	_              struct{} `cbor:",toarray"`
	EnemyUsername  string
	Side           uint8
	StartingTimeMS uint64
}

func EncodeGameMode0Start(enemyUsername string, side Side, startingTimeMS uint64) []byte {
	return mustMarshal(GameMode0Start{EnemyUsername: enemyUsername, Side: uint8(side), StartingTimeMS: startingTimeMS})
}

// GameMode1Start announces the start time for a solo, local-versus-local match.
type GameMode1Start struct {
	_              struct{} `cbor:",toarray"`
	StartingTimeMS uint64
}

func EncodeGameMode1Start(startingTimeMS uint64) []byte {
	return mustMarshal(GameMode1Start{StartingTimeMS: startingTimeMS})
}

// Server-to-client message type tags, matching the original protocol's msg_id discriminant.
const (
	msgIDPositionUpdate uint8 = 0
	msgIDPointScored    uint8 = 1
	msgIDGameCompleted  uint8 = 2
	msgIDGameAborted    uint8 = 3
)

// PositionUpdate reports the current ball and pad positions for a tick with no score change.
type PositionUpdate struct {
	_     struct{} `cbor:",toarray"`
	MsgID uint8
	LPadY float64
	RPadY float64
	BallX float64
	BallY float64
}

func EncodePositionUpdate(lPadY, rPadY, ballX, ballY float64) []byte {
	return mustMarshal(PositionUpdate{MsgID: msgIDPositionUpdate, LPadY: lPadY, RPadY: rPadY, BallX: ballX, BallY: ballY})
}

// PointScored reports the side that just scored a point (the opponent let the ball out) and the
// new rally's initial element positions.
type PointScored struct {
	_     struct{} `cbor:",toarray"`
	MsgID uint8
	Side  uint8
	LPadY float64
	RPadY float64
	BallX float64
	BallY float64
}

func EncodePointScored(winSide Side, lPadY, rPadY, ballX, ballY float64) []byte {
	return mustMarshal(PointScored{MsgID: msgIDPointScored, Side: uint8(winSide), LPadY: lPadY, RPadY: rPadY, BallX: ballX, BallY: ballY})
}

// GameCompleted reports the winner of a match that reached the winning score.
type GameCompleted struct {
	_     struct{} `cbor:",toarray"`
	MsgID uint8
	Side  uint8
}

func EncodeGameCompleted(winner Side) []byte {
	return mustMarshal(GameCompleted{MsgID: msgIDGameCompleted, Side: uint8(winner)})
}

// GameAborted reports that the match ended early because the opponent withdrew.
type GameAborted struct {
	_     struct{} `cbor:",toarray"`
	MsgID uint8
}

func EncodeGameAborted() []byte {
	return mustMarshal(GameAborted{MsgID: msgIDGameAborted})
}

func mustMarshal(v interface{}) []byte {
	b, err := cbor.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("protocol: could not serialize %T: %v", v, err))
	}
	return b
}
