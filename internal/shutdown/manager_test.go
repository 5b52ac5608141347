package shutdown

import (
	"testing"
	"time"

	"github.com/josephwere/NeuroEdge/internal/logger"
)

func TestShutdownReverseOrder(t *testing.T) {
	m := NewManager(logger.Nop{})

	var order []string
	m.Register(Func(func() { order = append(order, "first") }))
	m.Register(Func(func() { order = append(order, "second") }))
	m.Register(Func(func() { order = append(order, "third") }))

	m.Shutdown()

	want := []string{"third", "second", "first"}
	if len(order) != len(want) {
		t.Fatalf("shutdown order %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("shutdown order %v, want %v", order, want)
		}
	}
}

func TestShutdownIdempotent(t *testing.T) {
	m := NewManager(logger.Nop{})

	count := 0
	m.Register(Func(func() { count++ }))

	m.Shutdown()
	m.Shutdown()

	if count != 1 {
		t.Errorf("component shut down %d times, want 1", count)
	}
}

func TestContextCancelledOnShutdown(t *testing.T) {
	m := NewManager(logger.Nop{})

	select {
	case <-m.Context().Done():
		t.Fatal("context should be live before shutdown")
	default:
	}

	m.Shutdown()

	select {
	case <-m.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("context should be cancelled after shutdown")
	}

	select {
	case <-m.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}
