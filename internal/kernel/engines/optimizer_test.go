package engines

import (
	"sync"
	"testing"
	"time"

	"github.com/josephwere/NeuroEdge/internal/eventbus"
	"github.com/josephwere/NeuroEdge/internal/logger"
)

func TestOptimize(t *testing.T) {
	o := NewComputeOptimizer(nil, logger.Nop{})

	tests := []struct {
		name       string
		metrics    map[string]interface{}
		wantAction string
	}{
		{"nil metrics", nil, "none"},
		{
			"high cpu",
			map[string]interface{}{"cpu_load": 0.95, "queue_ms": 50.0, "memory_load": 0.5},
			"scale_up",
		},
		{
			"long queue",
			map[string]interface{}{"cpu_load": 0.3, "queue_ms": 1200.0, "memory_load": 0.5},
			"scale_up",
		},
		{
			"idle",
			map[string]interface{}{"cpu_load": 0.1, "queue_ms": 20.0, "memory_load": 0.2},
			"scale_down",
		},
		{
			"steady state",
			map[string]interface{}{"cpu_load": 0.5, "queue_ms": 300.0, "memory_load": 0.6},
			"rebalance",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := o.Optimize(tt.metrics)
			if got := rec["action"]; got != tt.wantAction {
				t.Errorf("action: got %v want %v", got, tt.wantAction)
			}
		})
	}
}

func TestStartPublishesRecommendation(t *testing.T) {
	bus := eventbus.NewBus(16)
	defer bus.Shutdown()

	o := NewComputeOptimizer(bus, logger.Nop{})
	o.Start()

	var mu sync.Mutex
	var got map[string]interface{}
	bus.Subscribe("compute:optimized", eventbus.HandlerFunc{
		ID: "test",
		Fn: func(event eventbus.Event) {
			mu.Lock()
			got = event.Data
			mu.Unlock()
		},
	})

	bus.Publish(eventbus.Event{
		Name: "compute:optimize",
		Data: map[string]interface{}{"cpu_load": 0.95, "queue_ms": 900.0, "memory_load": 0.7},
	})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		done := got != nil
		mu.Unlock()
		if done {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if got == nil {
		t.Fatal("no recommendation published")
	}
	if got["action"] != "scale_up" {
		t.Errorf("action: got %v want scale_up", got["action"])
	}
}
