package game

import (
	"math/rand"
	"testing"

	"github.com/transcendence/pongserv/config"
	"github.com/transcendence/pongserv/internal/protocol"
)

func TestUpdateOnTickScoreNeverDecreases(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	rs := newRunningState(rng)
	prevLeft, prevRight := rs.scores[0], rs.scores[1]
	for i := 0; i < 200_000; i++ {
		done, _, _ := rs.updateOnTick(rng, 0, 0)
		if rs.scores[0] < prevLeft || rs.scores[1] < prevRight {
			t.Fatalf("score decreased at tick %d: %v", i, rs.scores)
		}
		prevLeft, prevRight = rs.scores[0], rs.scores[1]
		if done {
			return
		}
	}
}

func TestUpdateOnTickPadsStayClamped(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	rs := newRunningState(rng)
	for i := 0; i < 5000; i++ {
		// Drive both pads hard towards the bottom edge every tick.
		if done, _, _ := rs.updateOnTick(rng, 1, 1); done {
			break
		}
		if rs.lPadY < 0 || rs.lPadY > 1.0-config.PadHeight {
			t.Fatalf("left pad escaped [0, 1-PadHeight] at tick %d: %v", i, rs.lPadY)
		}
		if rs.rPadY < 0 || rs.rPadY > 1.0-config.PadHeight {
			t.Fatalf("right pad escaped [0, 1-PadHeight] at tick %d: %v", i, rs.rPadY)
		}
	}
}

func TestUpdateOnTickEndsGameAtWinningScore(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	rs := newRunningState(rng)
	rs.scores[protocol.SideLeft] = config.WinningScore - 1
	// Force the ball out on the right wall to award left the winning point.
	rs.ballX = config.Ratio + 1
	rs.ballY = 0.5
	done, result, _ := rs.updateOnTick(rng, 0, 0)
	if !done {
		t.Fatalf("expected the game to be done once the winning score is reached")
	}
	if result.Winner != protocol.SideLeft {
		t.Errorf("winner = %v, want left", result.Winner)
	}
	if result.WinType != WinTypeScoreReached {
		t.Errorf("win type = %v, want WinTypeScoreReached", result.WinType)
	}
	if result.Score[protocol.SideLeft] != config.WinningScore {
		t.Errorf("left score = %d, want %d", result.Score[protocol.SideLeft], config.WinningScore)
	}
}

func TestUpdateOnTickResetsAfterNonWinningPoint(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	rs := newRunningState(rng)
	servingSideBefore := rs.serviceSide
	rs.ballX = -1
	rs.ballY = 0.5
	done, _, _ := rs.updateOnTick(rng, 0, 0)
	if done {
		t.Fatalf("a single point below the winning score should not end the game")
	}
	if rs.ballX != initialBallX || rs.ballY != initialBallY {
		t.Errorf("ball was not reset to its initial position: (%v, %v)", rs.ballX, rs.ballY)
	}
	if rs.serviceSide == servingSideBefore {
		t.Errorf("serve should switch sides after a point")
	}
}

func TestUpdateOnTickBallStaysInBoundsAbsentAScore(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	rs := newRunningState(rng)
	for i := 0; i < 50_000; i++ {
		done, _, _ := rs.updateOnTick(rng, 0, 0)
		if done {
			return
		}
		if rs.ballX < 0 || rs.ballX > config.Ratio-config.BallEdge {
			t.Fatalf("ball left [0, RATIO-BALL_EDGE] without a scoring event at tick %d: x=%v", i, rs.ballX)
		}
	}
}
