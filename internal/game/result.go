// Package game runs an authoritative Pong match to completion: the pre-game grace period, the
// fixed-tick physics loop, and the terminal accounting of who won and why.
package game

import "github.com/transcendence/pongserv/internal/protocol"

// WinType records why a match ended.
type WinType int

const (
	// WinTypeScoreReached means the winner reached the winning score under normal play.
	WinTypeScoreReached WinType = iota
	// WinTypeWithdrawal means the winner's opponent disconnected.
	WinTypeWithdrawal
)

// Result is the outcome of a completed match.
type Result struct {
	Score   [2]int
	Winner  protocol.Side
	WinType WinType
}
