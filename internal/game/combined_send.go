package game

import "github.com/transcendence/pongserv/internal/protocol"

// combinedSendResult pairs a write outcome with the side it was sent to.
type combinedSendResult struct {
	side protocol.Side
	err  error
}

// combinedSend writes the same payload to both connections concurrently and reports which side,
// if any, failed - the Go equivalent of the original server's CombinedSend future, which polled
// both sinks together and surfaced whichever one errored first.
func combinedSend(left, right writer, data []byte) (protocol.Side, error) {
	results := make(chan combinedSendResult, 2)
	go func() { results <- combinedSendResult{protocol.SideLeft, left.WriteBinary(data)} }()
	go func() { results <- combinedSendResult{protocol.SideRight, right.WriteBinary(data)} }()

	var failed *combinedSendResult
	for i := 0; i < 2; i++ {
		r := <-results
		if r.err != nil && failed == nil {
			failed = &r
		}
	}
	if failed != nil {
		return failed.side, failed.err
	}
	return 0, nil
}

// writer is the narrow subset of transport.Connection that combinedSend and the game loops need,
// kept as an interface so the loops can be exercised with fakes in tests.
type writer interface {
	WriteBinary(data []byte) error
}
