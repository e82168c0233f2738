// Package physics implements the pure, side-effect-free functions that move and bounce the ball
// and check collisions with the court's walls and pads. None of these functions touch I/O or
// time; callers own the clock and the random source so behavior stays testable.
package physics

import (
	"math"
	"math/rand"

	"github.com/transcendence/pongserv/config"
	"github.com/transcendence/pongserv/internal/protocol"
)

// ServiceGenerator samples the opening angle of a service for either side, using the same
// distributions as the original engine: the left side serves in a narrow band around pi (nearly
// straight left), the right side serves in one of two narrow bands around 0 (nearly straight
// right), chosen by a coin flip.
type ServiceGenerator struct{}

// NewServiceGenerator returns a ready-to-use ServiceGenerator; it carries no state.
func NewServiceGenerator() ServiceGenerator {
	return ServiceGenerator{}
}

// GenAngle samples a service angle for the given side using rng.
func (ServiceGenerator) GenAngle(side protocol.Side, rng *rand.Rand) float64 {
	switch side {
	case protocol.SideLeft:
		lo := math.Pi - config.HalfServiceAngleAmpl
		hi := math.Pi + config.HalfServiceAngleAmpl
		return lo + rng.Float64()*(hi-lo)
	default:
		if rng.Intn(2) == 0 {
			lo, hi := 0.0, config.HalfServiceAngleAmpl
			return lo + rng.Float64()*(hi-lo)
		}
		lo, hi := 2*math.Pi-config.HalfServiceAngleAmpl, 2*math.Pi
		return lo + rng.Float64()*(hi-lo)
	}
}

// SideOfBallCollisionWithWall reports which side wall, if any, the ball has gone past.
func SideOfBallCollisionWithWall(ballX float64) (protocol.Side, bool) {
	switch {
	case ballX < 0.0:
		return protocol.SideLeft, true
	case ballX+config.BallEdge > config.Ratio:
		return protocol.SideRight, true
	default:
		return 0, false
	}
}

// BounceOffHorizontalEdges reflects the ball off the top and bottom walls, returning the
// corrected y position and angle. If no collision occurred, the inputs are returned unchanged.
func BounceOffHorizontalEdges(ballY, angle float64) (float64, float64) {
	switch {
	case ballY <= 0.0:
		collision := 0.0 - ballY
		return 0.0 + collision, 2*math.Pi - angle
	case ballY+config.BallEdge >= 1.0:
		collision := (ballY + config.BallEdge) - 1.0
		return 1.0 - collision - config.BallEdge, 2*math.Pi - angle
	default:
		return ballY, angle
	}
}

// BounceOffPads reflects the ball off the left or right pad if it collides with one, returning
// the corrected ball position and angle. If no collision occurred, the inputs are returned
// unchanged.
func BounceOffPads(ballX, ballY, angle, lPadY, rPadY float64) (float64, float64, float64) {
	if ballPadCollide(ballX, ballY, 0.0, lPadY) {
		collisionAmount := config.PadWidth - ballX
		collisionX := config.PadWidth
		collisionY, ok := leftPadCollisionY(ballY, angle, collisionAmount)
		if !ok {
			return ballX, ballY, angle
		}
		newAngle := (0.0 + config.HalfBounceAngleAmpl) - padBounceAngle(collisionY, lPadY)
		if newAngle < 0.0 {
			newAngle += 2 * math.Pi
		}
		dist := distance(ballX, ballY, collisionX, collisionY)
		return collisionX + dist*math.Cos(newAngle), collisionY - dist*math.Sin(newAngle), newAngle
	}
	if ballPadCollide(ballX, ballY, config.Ratio-config.PadWidth, rPadY) {
		collisionAmount := (ballX + config.BallEdge) - (config.Ratio - config.PadWidth)
		collisionX := config.Ratio - config.PadWidth - config.BallEdge
		collisionY, ok := rightPadCollisionY(ballY, angle, collisionAmount)
		if !ok {
			return ballX, ballY, angle
		}
		newAngle := (math.Pi - config.HalfBounceAngleAmpl) + padBounceAngle(collisionY, rPadY)
		dist := distance(ballX, ballY, collisionX, collisionY)
		return collisionX + dist*math.Cos(newAngle), collisionY - dist*math.Sin(newAngle), newAngle
	}
	return ballX, ballY, angle
}

func leftPadCollisionY(ballY, angle, collisionAmount float64) (float64, bool) {
	halfPi := math.Pi / 2
	switch {
	case halfPi <= angle && angle <= 2*halfPi:
		return ballY + collisionAmount/math.Tan(angle-halfPi), true
	case 2*halfPi < angle && angle <= 3*halfPi:
		return ballY - collisionAmount*math.Tan(angle-math.Pi), true
	default:
		return 0, false
	}
}

func rightPadCollisionY(ballY, angle, collisionAmount float64) (float64, bool) {
	halfPi := math.Pi / 2
	switch {
	case 0 <= angle && angle <= halfPi:
		return ballY + collisionAmount*math.Tan(angle), true
	case 3*halfPi <= angle && angle <= 4*halfPi:
		return ballY - collisionAmount/math.Tan(angle-3*halfPi), true
	default:
		return 0, false
	}
}

func distance(x1, y1, x2, y2 float64) float64 {
	return math.Sqrt(math.Pow(x1-x2, 2) + math.Pow(y1-y2, 2))
}

// ballPadCollide reports whether the ball overlaps the axis-aligned pad rectangle at (padX, padY).
func ballPadCollide(ballX, ballY, padX, padY float64) bool {
	if ballY <= padY+config.PadHeight && ballY+config.BallEdge >= padY {
		if ballX <= padX+config.PadWidth && ballX+config.BallEdge >= padX {
			return true
		}
	}
	return false
}

// padBounceAngle computes the bounce angle offset from where along the pad's height the ball hit.
func padBounceAngle(ballY, padY float64) float64 {
	ballCenterRelativeToPad := (ballY + config.BallRadius) - padY
	amplitudeRatio := ballCenterRelativeToPad / config.PadHeight
	return amplitudeRatio * config.PadBounceAngleAmpl
}
