// Package engines hosts kernel-side engines driven by the event bus.
package engines

import (
	"github.com/josephwere/NeuroEdge/internal/eventbus"
	"github.com/josephwere/NeuroEdge/internal/logger"
)

// ComputeOptimizer turns load metrics published on "compute:optimize"
// into scaling recommendations published on "compute:optimized".
type ComputeOptimizer struct {
	bus *eventbus.Bus
	log logger.Logger
}

func NewComputeOptimizer(bus *eventbus.Bus, log logger.Logger) *ComputeOptimizer {
	return &ComputeOptimizer{bus: bus, log: log}
}

func (o *ComputeOptimizer) Name() string { return "ComputeOptimizer" }

func (o *ComputeOptimizer) Start() {
	o.bus.Subscribe("compute:optimize", eventbus.HandlerFunc{
		ID: o.Name(),
		Fn: func(event eventbus.Event) {
			recommendation := o.Optimize(event.Data)
			o.bus.Publish(eventbus.Event{
				Name:   "compute:optimized",
				Source: o.Name(),
				Data:   recommendation,
			})
		},
	})
	o.log.Info(o.Name(), "started", nil)
}

func (o *ComputeOptimizer) Stop() {
	o.log.Info(o.Name(), "stopped", nil)
}

// Optimize produces a recommendation from the metrics map. Missing or
// malformed metrics yield the "none" action rather than an error: the
// optimizer is advisory.
func (o *ComputeOptimizer) Optimize(metrics map[string]interface{}) map[string]interface{} {
	recommendation := map[string]interface{}{
		"action":          "none",
		"priority":        "low",
		"reason":          "insufficient metrics",
		"scale_factor":    1.0,
		"target_queue_ms": 200,
	}
	if metrics == nil {
		return recommendation
	}

	cpu, _ := metrics["cpu_load"].(float64)
	queue, _ := metrics["queue_ms"].(float64)
	mem, _ := metrics["memory_load"].(float64)

	switch {
	case cpu > 0.85 || queue > 800:
		recommendation["action"] = "scale_up"
		recommendation["priority"] = "high"
		recommendation["reason"] = "high cpu/queue pressure"
		recommendation["scale_factor"] = 1.5
	case cpu < 0.2 && mem < 0.4 && queue < 100:
		recommendation["action"] = "scale_down"
		recommendation["priority"] = "medium"
		recommendation["reason"] = "sustained under-utilization"
		recommendation["scale_factor"] = 0.8
	default:
		recommendation["action"] = "rebalance"
		recommendation["priority"] = "medium"
		recommendation["reason"] = "maintain throughput with balanced load"
	}

	o.log.Debug(o.Name(), "optimization complete", recommendation)
	return recommendation
}
