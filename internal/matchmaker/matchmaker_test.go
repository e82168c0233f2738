package matchmaker

import (
	"testing"
	"time"

	"github.com/transcendence/pongserv/internal/transport"
)

func connData(id string) ConnData {
	// A zero Connection's Pongs channel is nil, so the executor's wait never sees a pong.
	return ConnData{Conn: &transport.Connection{}, ID: id}
}

func closedReads() <-chan transport.Message {
	ch := make(chan transport.Message)
	close(ch)
	return ch
}

func TestExtractRoleFirstCallerIsExecutor(t *testing.T) {
	slot := &MatchSlot{}
	switch slot.extractRole().(type) {
	case executorRole:
	default:
		t.Fatalf("first caller on an empty slot should be the executor")
	}
}

func TestExtractRoleSecondCallerIsGiver(t *testing.T) {
	slot := &MatchSlot{}
	slot.extractRole()
	switch slot.extractRole().(type) {
	case giverRole:
	default:
		t.Fatalf("second caller on a filled slot should be the giver")
	}
}

func TestJoinOpponentsPairsGiverAndJoiner(t *testing.T) {
	slot := &MatchSlot{}
	executorResult := make(chan Pair, 1)

	go func() {
		pair, ok := JoinOpponents(connData("executor"), slot, testLogger())
		if !ok {
			t.Error("executor should have received a pair")
			return
		}
		executorResult <- pair
	}()

	// Give the executor goroutine time to register itself as waiting before the giver arrives.
	time.Sleep(20 * time.Millisecond)

	pair, ok := JoinOpponents(connData("giver"), slot, testLogger())
	if ok {
		t.Fatalf("the giver should give its connection away, not receive a pair")
	}
	if pair != (Pair{}) {
		t.Fatalf("giver's returned pair should be zero-valued, got %+v", pair)
	}

	select {
	case got := <-executorResult:
		if got.Giver.ID != "giver" || got.Joiner.ID != "executor" {
			t.Errorf("pair = %+v, want Giver=giver Joiner=executor", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the executor to receive its pair")
	}
}

// TestJoinOpponentsStuckSlotTakeover exercises the recovery path: the original executor's wait
// fails immediately (its own connection is already gone), but it does not give up the slot -
// it keeps waiting and adopts the next Giver's connection as its own identity, then succeeds on
// a second Giver after that.
func TestJoinOpponentsStuckSlotTakeover(t *testing.T) {
	slot := &MatchSlot{}
	result := make(chan Pair, 1)

	deadExecutor := ConnData{Conn: &transport.Connection{}, ID: "dead-executor", Reads: closedReads()}
	go func() {
		pair, ok := JoinOpponents(deadExecutor, slot, testLogger())
		if !ok {
			t.Error("the taken-over slot should eventually produce a pair")
			return
		}
		result <- pair
	}()

	time.Sleep(20 * time.Millisecond)

	firstGiver := connData("first-giver") // nil Reads: blocks forever, never errors
	if _, ok := JoinOpponents(firstGiver, slot, testLogger()); ok {
		t.Fatalf("a giver call should never itself receive a pair")
	}

	// The recovering executor has now adopted first-giver's identity and is waiting again.
	time.Sleep(20 * time.Millisecond)

	secondGiver := connData("second-giver")
	if _, ok := JoinOpponents(secondGiver, slot, testLogger()); ok {
		t.Fatalf("a giver call should never itself receive a pair")
	}

	select {
	case got := <-result:
		if got.Giver.ID != "second-giver" || got.Joiner.ID != "first-giver" {
			t.Errorf("pair = %+v, want Giver=second-giver Joiner=first-giver", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the recovered slot to produce a pair")
	}
}
