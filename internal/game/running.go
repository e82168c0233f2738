package game

import (
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/transcendence/pongserv/config"
	"github.com/transcendence/pongserv/internal/physics"
	"github.com/transcendence/pongserv/internal/protocol"
	"github.com/transcendence/pongserv/internal/transport"
)

func seed() int64 { return time.Now().UnixNano() }

// runningState holds the ball, pads, score, and serve side of a match in progress.
type runningState struct {
	ballX, ballY float64
	angle        float64
	lPadY, rPadY float64
	serviceSide  protocol.Side
	serviceGen   physics.ServiceGenerator
	scores       [2]int
}

const (
	initialBallX = config.Ratio/2.0 - config.BallRadius
	initialBallY = 1.0/2.0 - config.BallRadius
)

func newRunningState(rng *rand.Rand) runningState {
	side := protocol.SideLeft
	if rng.Intn(2) == 1 {
		side = protocol.SideRight
	}
	gen := physics.NewServiceGenerator()
	return runningState{
		ballX:       initialBallX,
		ballY:       initialBallY,
		angle:       gen.GenAngle(side, rng),
		lPadY:       (1.0 - config.PadHeight) / 2.0,
		rPadY:       (1.0 - config.PadHeight) / 2.0,
		serviceSide: side,
		serviceGen:  gen,
	}
}

func (rs *runningState) endGame() [2]int { return rs.scores }

func (rs *runningState) moveElements(lPadDy, rPadDy float64) {
	rs.lPadY = clamp(rs.lPadY+lPadDy*config.PadMovementPerTick, 0.0, 1.0-config.PadHeight)
	rs.rPadY = clamp(rs.rPadY+rPadDy*config.PadMovementPerTick, 0.0, 1.0-config.PadHeight)
	rs.ballX += config.BallMovementPerTick * math.Cos(rs.angle)
	rs.ballY -= config.BallMovementPerTick * math.Sin(rs.angle)
}

func (rs *runningState) resetElements(rng *rand.Rand) {
	rs.ballX, rs.ballY = initialBallX, initialBallY
	rs.serviceSide = rs.serviceSide.Opposite()
	rs.angle = rs.serviceGen.GenAngle(rs.serviceSide, rng)
}

// updateOnTick advances the state by one tick and returns whether the match is now over, the
// result if so, and the message to broadcast either way.
func (rs *runningState) updateOnTick(rng *rand.Rand, lPadDy, rPadDy float64) (done bool, result Result, message []byte) {
	rs.moveElements(lPadDy, rPadDy)

	rs.ballX, rs.ballY, rs.angle = physics.BounceOffPads(rs.ballX, rs.ballY, rs.angle, rs.lPadY, rs.rPadY)

	if outSide, hit := physics.SideOfBallCollisionWithWall(rs.ballX); hit {
		winSide := outSide.Opposite()
		rs.scores[winSide]++
		if rs.scores[winSide] != config.WinningScore {
			rs.resetElements(rng)
			msg := protocol.EncodePointScored(winSide, rs.lPadY, rs.rPadY, rs.ballX, rs.ballY)
			return false, Result{}, msg
		}
		msg := protocol.EncodeGameCompleted(winSide)
		return true, Result{Score: rs.scores, Winner: winSide, WinType: WinTypeScoreReached}, msg
	}

	rs.ballY, rs.angle = physics.BounceOffHorizontalEdges(rs.ballY, rs.angle)
	msg := protocol.EncodePositionUpdate(rs.lPadY, rs.rPadY, rs.ballX, rs.ballY)
	return false, Result{}, msg
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// runGame0Loop drives a matched remote 1v1 game until completion or a disconnect, which is
// treated as a withdrawal rather than a program error.
func runGame0Loop(left, right *transport.Connection, leftReads, rightReads <-chan transport.Message, logger zerolog.Logger) Result {
	rng := rand.New(rand.NewSource(seed()))
	rs := newRunningState(rng)
	var lPadDy, rPadDy float64

	ticker := time.NewTicker(time.Second / config.TicksPerSecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			done, result, message := rs.updateOnTick(rng, lPadDy, rPadDy)
			if done {
				sendResult(left, right, result, logger)
				return result
			}
			if failedSide, err := combinedSend(left, right, message); err != nil {
				logger.Info().Err(err).Str("side", failedSide.String()).Msg("combined send failed mid-game")
				result := Result{Score: rs.endGame(), Winner: failedSide.Opposite(), WinType: WinTypeWithdrawal}
				sendResult(left, right, result, logger)
				return result
			}

		case msg, ok := <-leftReads:
			if !ok {
				result := Result{Score: rs.endGame(), Winner: protocol.SideRight, WinType: WinTypeWithdrawal}
				sendResult(left, right, result, logger)
				return result
			}
			delta, err := protocol.DecodeInputMode0(msg.Data)
			if err != nil {
				result := Result{Score: rs.endGame(), Winner: protocol.SideRight, WinType: WinTypeWithdrawal}
				sendResult(left, right, result, logger)
				return result
			}
			lPadDy = float64(delta)

		case msg, ok := <-rightReads:
			if !ok {
				result := Result{Score: rs.endGame(), Winner: protocol.SideLeft, WinType: WinTypeWithdrawal}
				sendResult(left, right, result, logger)
				return result
			}
			delta, err := protocol.DecodeInputMode0(msg.Data)
			if err != nil {
				result := Result{Score: rs.endGame(), Winner: protocol.SideLeft, WinType: WinTypeWithdrawal}
				sendResult(left, right, result, logger)
				return result
			}
			rPadDy = float64(delta)
		}
	}
}

func sendResult(left, right *transport.Connection, result Result, logger zerolog.Logger) {
	switch result.WinType {
	case WinTypeScoreReached:
		msg := protocol.EncodeGameCompleted(result.Winner)
		_, _ = combinedSend(left, right, msg)
	case WinTypeWithdrawal:
		msg := protocol.EncodeGameAborted()
		var winnerConn *transport.Connection
		if result.Winner == protocol.SideLeft {
			winnerConn = left
		} else {
			winnerConn = right
		}
		if err := winnerConn.WriteBinary(msg); err != nil {
			logger.Info().Err(err).Msg("could not notify the remaining player of the withdrawal")
		}
	}
}

// runGame1Loop drives a local 1v1 game, one client controlling both pads, until completion or
// disconnect. Client updates are rate-limited to MaxClientUpdatesPerSecond by not reading further
// input messages until the cooldown interval elapses; those messages stay pending, not dropped.
func runGame1Loop(conn *transport.Connection, reads <-chan transport.Message, logger zerolog.Logger) {
	rng := rand.New(rand.NewSource(seed()))
	rs := newRunningState(rng)
	var lPadDy, rPadDy float64

	ticker := time.NewTicker(time.Second / config.TicksPerSecond)
	defer ticker.Stop()
	cooldown := time.NewTimer(time.Second / config.MaxClientUpdatesPerSecond)
	defer cooldown.Stop()

	// gatedReads is nilled out while the cadence cooldown is active so the select below never
	// consumes from it; the unbuffered channel's sender (the read pump) then simply blocks,
	// leaving the client's next input pending rather than read-and-discarded.
	gatedReads := reads

	for {
		select {
		case <-ticker.C:
			done, _, message := rs.updateOnTick(rng, lPadDy, rPadDy)
			// On the terminal tick, message is already the encoded GameCompleted (see
			// updateOnTick); sending it here is the only GameCompleted frame this match emits.
			if err := conn.WriteBinary(message); err != nil {
				return
			}
			if done {
				return
			}

		case <-cooldown.C:
			gatedReads = reads

		case msg, ok := <-gatedReads:
			if !ok {
				return
			}
			left, right, err := protocol.DecodeInputMode1(msg.Data)
			if err != nil {
				return
			}
			lPadDy, rPadDy = float64(left), float64(right)
			cooldown.Reset(time.Second / config.MaxClientUpdatesPerSecond)
			gatedReads = nil
		}
	}
}
