package physics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/transcendence/pongserv/config"
	"github.com/transcendence/pongserv/internal/protocol"
)

const bias = 1.0e-7

func TestServiceAngles(t *testing.T) {
	gen := NewServiceGenerator()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		angle := gen.GenAngle(protocol.SideLeft, rng)
		if !(5.0*math.Pi/6-bias <= angle && angle <= 7.0*math.Pi/6+bias) {
			t.Fatalf("left service angle %v out of range", angle)
		}
	}
	for i := 0; i < 50; i++ {
		angle := gen.GenAngle(protocol.SideRight, rng)
		inUpperBand := 0.0*math.Pi/6-bias <= angle && angle <= 1.0*math.Pi/6+bias
		inLowerBand := 11.0*math.Pi/6-bias <= angle && angle <= 12.0*math.Pi/6+bias
		if !inUpperBand && !inLowerBand {
			t.Fatalf("right service angle %v out of range", angle)
		}
	}
}

func TestSideOfBallCollisionWithWall(t *testing.T) {
	tooLeft := 0.0 - 10.0*bias
	tooRight := (config.Ratio - config.BallEdge) + 10.0*bias
	valid := config.Ratio / 2.0

	if side, ok := SideOfBallCollisionWithWall(tooLeft); !ok || side != protocol.SideLeft {
		t.Errorf("expected left wall collision, got side=%v ok=%v", side, ok)
	}
	if side, ok := SideOfBallCollisionWithWall(tooRight); !ok || side != protocol.SideRight {
		t.Errorf("expected right wall collision, got side=%v ok=%v", side, ok)
	}
	if _, ok := SideOfBallCollisionWithWall(valid); ok {
		t.Errorf("expected no wall collision for a ball in the middle of the court")
	}
}

func TestBounceOffHorizontalEdges(t *testing.T) {
	const amount = 10.0 * bias
	verticalUp := math.Pi / 2
	verticalDown := 3 * math.Pi / 2

	ballYTop := 0.0 - amount
	newY, newAngle := BounceOffHorizontalEdges(ballYTop, verticalUp)
	if !within(newY, amount, bias) {
		t.Errorf("expected y near %v, got %v", amount, newY)
	}
	if !within(newAngle, verticalDown, bias) {
		t.Errorf("expected angle near %v, got %v", verticalDown, newAngle)
	}

	ballYBot := (1.0 - config.BallEdge) + amount
	newY, newAngle = BounceOffHorizontalEdges(ballYBot, verticalDown)
	expectedY := (1.0 - config.BallEdge) - amount
	if !within(newY, expectedY, bias) {
		t.Errorf("expected y near %v, got %v", expectedY, newY)
	}
	if !within(newAngle, verticalUp, bias) {
		t.Errorf("expected angle near %v, got %v", verticalUp, newAngle)
	}

	ballYMid := 0.5
	newY, newAngle = BounceOffHorizontalEdges(ballYMid, verticalUp)
	if newY != ballYMid || newAngle != verticalUp {
		t.Errorf("expected no bounce in the middle of the court, got y=%v angle=%v", newY, newAngle)
	}
}

func within(got, want, tolerance float64) bool {
	return want-tolerance <= got && got <= want+tolerance
}
