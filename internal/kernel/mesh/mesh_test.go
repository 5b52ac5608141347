package mesh

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/josephwere/NeuroEdge/internal/logger"
)

func TestSendAndReceive(t *testing.T) {
	m := NewMessaging(logger.Nop{})
	node := &Node{ID: "node-1", IsActive: true}

	m.SendMessage(node, "hello")
	m.SendMessage(node, "world")
	m.ReceiveMessage(node, "ack")

	if diff := cmp.Diff([]string{"hello", "world"}, m.ReadOutbox("node-1")); diff != "" {
		t.Errorf("outbox mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ack"}, m.ReadInbox("node-1")); diff != "" {
		t.Errorf("inbox mismatch (-want +got):\n%s", diff)
	}

	history := m.History(0)
	if len(history) != 3 {
		t.Fatalf("history length: got %d want 3", len(history))
	}
	if history[0].Direction != "outbound" || history[2].Direction != "inbound" {
		t.Errorf("unexpected history directions: %+v", history)
	}
}

func TestNilNodeSkipped(t *testing.T) {
	m := NewMessaging(logger.Nop{})
	m.SendMessage(nil, "dropped")
	m.ReceiveMessage(nil, "dropped")
	if got := len(m.History(0)); got != 0 {
		t.Errorf("nil node messages must not be recorded, got %d", got)
	}

	r := NewRouting(logger.Nop{})
	if r.RouteMessage(nil, "dropped") {
		t.Error("routing to nil node should report failure")
	}
}

func TestInactiveNodeNotRouted(t *testing.T) {
	r := NewRouting(logger.Nop{})
	if r.RouteMessage(&Node{ID: "n", IsActive: false}, "msg") {
		t.Error("routing to inactive node should report failure")
	}
	if got := len(r.History(0)); got != 0 {
		t.Errorf("failed routes must not be recorded, got %d", got)
	}
}

func TestHistoryLimit(t *testing.T) {
	m := NewMessaging(logger.Nop{})
	node := &Node{ID: "n"}
	for i := 0; i < 10; i++ {
		m.SendMessage(node, fmt.Sprintf("msg-%d", i))
	}

	recent := m.History(3)
	if len(recent) != 3 {
		t.Fatalf("limited history length: got %d want 3", len(recent))
	}
	if recent[2].Message != "msg-9" {
		t.Errorf("expected newest record last, got %q", recent[2].Message)
	}
	if recent[0].Message != "msg-7" {
		t.Errorf("expected third-newest record first, got %q", recent[0].Message)
	}

	// A limit beyond the history size returns everything.
	if got := len(m.History(100)); got != 10 {
		t.Errorf("oversize limit: got %d want 10", got)
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	r := NewRouting(logger.Nop{})
	r.RouteMessage(&Node{ID: "n", IsActive: true}, "one")

	first := r.History(0)
	first[0].Message = "mutated"

	if got := r.History(0)[0].Message; got != "one" {
		t.Errorf("internal history mutated through returned slice: %q", got)
	}
}

func TestHistoryBounded(t *testing.T) {
	r := NewRouting(logger.Nop{})
	node := &Node{ID: "n", IsActive: true}
	for i := 0; i < maxRouteHistory+50; i++ {
		r.RouteMessage(node, "msg")
	}
	if got := len(r.History(0)); got != maxRouteHistory {
		t.Errorf("route history should be trimmed to %d, got %d", maxRouteHistory, got)
	}
}
