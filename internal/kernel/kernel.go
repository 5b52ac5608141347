// Package kernel wires the NeuroEdge core together: the event bus, agent
// guard, mesh, discovery registry, compute optimizer and the ML
// orchestrator client. The HTTP API and the desktop shell are thin layers
// over this package.
package kernel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/josephwere/NeuroEdge/internal/config"
	"github.com/josephwere/NeuroEdge/internal/eventbus"
	"github.com/josephwere/NeuroEdge/internal/kernel/discovery"
	"github.com/josephwere/NeuroEdge/internal/kernel/engines"
	"github.com/josephwere/NeuroEdge/internal/kernel/guard"
	"github.com/josephwere/NeuroEdge/internal/kernel/mesh"
	"github.com/josephwere/NeuroEdge/internal/logger"
	"github.com/josephwere/NeuroEdge/internal/orchestrator"
	"github.com/josephwere/NeuroEdge/internal/store"
)

const busBufferSize = 256

// Inference is the surface the kernel needs from an inference backend.
type Inference interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageTasker runs image tasks for execute commands carrying an image
// payload. Implemented by the vision engine; kept as an interface so the
// kernel does not depend on the OpenCV stack.
type ImageTasker interface {
	Thumbnail(ctx context.Context, sourcePath string, maxEdge int) (string, error)
}

// memoryStatser is implemented by image engines that account for their
// native allocations.
type memoryStatser interface {
	MemoryStats() map[string]int64
}

type Kernel struct {
	cfg       *config.Config
	log       logger.Logger
	bus       *eventbus.Bus
	guard     *guard.Guard
	registry  *discovery.Registry
	messaging *mesh.Messaging
	routing   *mesh.Routing
	optimizer *engines.ComputeOptimizer
	client    *orchestrator.Client
	local     Inference
	vision    ImageTasker
	store     *store.Store
	health    *HealthManager
}

// New builds the kernel. The store may be nil for store-less operation
// (history then stays in memory only).
func New(cfg *config.Config, log logger.Logger, st *store.Store) *Kernel {
	bus := eventbus.NewBus(busBufferSize)

	k := &Kernel{
		cfg:       cfg,
		log:       log,
		bus:       bus,
		guard:     guard.New(cfg.Guard.EthicsDenyPatterns, log),
		registry:  discovery.NewRegistry(),
		messaging: mesh.NewMessaging(log),
		routing:   mesh.NewRouting(log),
		optimizer: engines.NewComputeOptimizer(bus, log),
		client:    orchestrator.NewClient(cfg.Orchestrator.Address, log),
		store:     st,
		health:    NewHealthManager(),
	}

	if st != nil {
		sink := store.NewSink(st, log)
		k.messaging.SetSink(sink)
		k.routing.SetSink(sink)
	}

	if cfg.Ollama.Model != "" {
		local, err := orchestrator.NewLocalEngine(cfg.Ollama.BaseURL, cfg.Ollama.Model, log)
		if err != nil {
			log.Warning("Kernel", "local inference disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			k.local = local
		}
	}

	return k
}

// SetVision attaches the image task engine.
func (k *Kernel) SetVision(v ImageTasker) {
	k.vision = v
	if v != nil {
		k.registry.RegisterCapability(discovery.Capability{
			Name:         "vision",
			Kind:         "engine",
			Capabilities: []string{"thumbnail", "grayscale"},
		})
	}
}

// SetLocalInference overrides the inference backend, used by tests.
func (k *Kernel) SetLocalInference(inf Inference) { k.local = inf }

func (k *Kernel) Bus() *eventbus.Bus { return k.bus }

func (k *Kernel) Guard() *guard.Guard { return k.guard }

func (k *Kernel) Registry() *discovery.Registry { return k.registry }

func (k *Kernel) Messaging() *mesh.Messaging { return k.messaging }

func (k *Kernel) Routing() *mesh.Routing { return k.routing }

func (k *Kernel) Health() *HealthManager { return k.health }

func (k *Kernel) Store() *store.Store { return k.store }

// VisionMemoryStats returns the vision engine's native allocation
// accounting, or nil when no engine (or a non-accounting one) is attached.
func (k *Kernel) VisionMemoryStats() map[string]int64 {
	if s, ok := k.vision.(memoryStatser); ok {
		return s.MemoryStats()
	}
	return nil
}

// Start registers the kernel in the mesh and starts bus-driven engines.
func (k *Kernel) Start() {
	k.registry.RegisterNode(mesh.Node{
		ID:       "kernel",
		Name:     "neuroedge-kernel",
		Kind:     "kernel",
		Address:  k.cfg.ListenAddress,
		IsActive: true,
	})
	k.registry.RegisterCapability(discovery.Capability{
		Name:         "optimizer",
		Kind:         "engine",
		Capabilities: []string{"compute:optimize"},
	})

	k.optimizer.Start()

	k.health.SetHealthy("eventbus")
	k.health.SetHealthy("mesh")
	k.health.SetHealthy("optimizer")
	if k.store != nil {
		k.health.SetHealthy("store")
	}

	k.log.Info("Kernel", "started", map[string]interface{}{
		"local_inference": k.local != nil,
		"vision":          k.vision != nil,
		"store":           k.store != nil,
	})
}

// Shutdown stops engines and drains the bus.
func (k *Kernel) Shutdown() {
	k.optimizer.Stop()
	k.bus.Shutdown()
	k.log.Info("Kernel", "stopped", nil)
}

// ApplyConfig propagates reloadable settings, used by config hot reload.
func (k *Kernel) ApplyConfig(cfg *config.Config) {
	k.guard.SetDenyPatterns(cfg.Guard.EthicsDenyPatterns)
}

// Execute runs one command through the guard and dispatches it by type.
// The returned Response is always non-nil; failures are folded into it.
func (k *Kernel) Execute(ctx context.Context, cmd Command) Response {
	cmd.Normalize()

	action := cmd.Action()
	if action == "" {
		return Response{
			ID:        cmd.ID,
			Success:   false,
			Stderr:    "empty payload action",
			Timestamp: nowRFC3339(),
		}
	}

	if !k.guard.PreExecutionCheckWithContext("kernel-api", action, cmd.Metadata) {
		return Response{
			ID:        cmd.ID,
			Success:   false,
			Stderr:    "task blocked by agent guard",
			Timestamp: nowRFC3339(),
		}
	}

	var resp Response
	switch cmd.Type {
	case "chat", "ai_inference":
		resp = k.runInference(ctx, cmd, action)
	default:
		resp = k.runExecute(ctx, cmd, action)
	}

	k.bus.Publish(eventbus.Event{
		Name:   "command:executed",
		Source: "kernel",
		Data: map[string]interface{}{
			"id":      resp.ID,
			"type":    cmd.Type,
			"success": resp.Success,
		},
	})
	return resp
}

func (k *Kernel) runInference(ctx context.Context, cmd Command, action string) Response {
	k.recordTask(ctx, cmd.ID, cmd.Type, "pending", action, "")

	if k.local != nil {
		out, err := k.local.Generate(ctx, action)
		if err == nil {
			k.recordTask(ctx, cmd.ID, cmd.Type, "success", action, out)
			return Response{
				ID:        cmd.ID,
				Success:   true,
				Stdout:    out,
				Timestamp: nowRFC3339(),
				Data: map[string]interface{}{
					"type":      cmd.Type,
					"component": "local-inference",
				},
			}
		}
		k.log.Warning("Kernel", "local inference failed, falling back to orchestrator", map[string]interface{}{
			"task":  cmd.ID,
			"error": err.Error(),
		})
	}

	taskResp, err := k.client.SubmitTask(ctx, &orchestrator.TaskRequest{
		EngineName: cmd.Type,
		TaskID:     cmd.ID,
		InputData:  action,
	})
	if err != nil {
		k.recordTask(ctx, cmd.ID, cmd.Type, "failed", action, err.Error())
		return Response{
			ID:        cmd.ID,
			Success:   false,
			Stderr:    err.Error(),
			Timestamp: nowRFC3339(),
		}
	}

	k.recordTask(ctx, cmd.ID, cmd.Type, taskResp.Status, action, taskResp.OutputData)
	return Response{
		ID:        cmd.ID,
		Success:   taskResp.Status == "success",
		Stdout:    taskResp.OutputData,
		Timestamp: nowRFC3339(),
		Data: map[string]interface{}{
			"type":      cmd.Type,
			"component": "ml-orchestrator",
		},
	}
}

func (k *Kernel) runExecute(ctx context.Context, cmd Command, action string) Response {
	if imagePath, ok := cmd.Payload["image"].(string); ok && imagePath != "" && k.vision != nil {
		outPath, err := k.vision.Thumbnail(ctx, imagePath, 0)
		if err != nil {
			return Response{
				ID:        cmd.ID,
				Success:   false,
				Stderr:    fmt.Sprintf("image task failed: %v", err),
				Timestamp: nowRFC3339(),
			}
		}
		return Response{
			ID:        cmd.ID,
			Success:   true,
			Stdout:    outPath,
			Timestamp: nowRFC3339(),
			Data: map[string]interface{}{
				"type":      cmd.Type,
				"component": "vision-engine",
			},
		}
	}

	return Response{
		ID:        cmd.ID,
		Success:   true,
		Stdout:    fmt.Sprintf("kernel accepted %s: %s", cmd.Type, action),
		Timestamp: nowRFC3339(),
		Data: map[string]interface{}{
			"type":      cmd.Type,
			"received":  action,
			"component": "kernel-api",
		},
	}
}

// IngestEvent publishes an externally supplied event onto the bus and
// records it when a store is attached.
func (k *Kernel) IngestEvent(ctx context.Context, name, source string, data map[string]interface{}) {
	if source == "" {
		source = "external"
	}
	k.bus.Publish(eventbus.Event{Name: name, Source: source, Data: data})

	if k.store != nil {
		payload, _ := json.Marshal(data)
		if err := k.store.SaveEvent(ctx, name, source, string(payload), time.Now()); err != nil {
			k.log.Warning("Kernel", "event not persisted", map[string]interface{}{
				"event": name,
				"error": err.Error(),
			})
		}
	}
}

func (k *Kernel) recordTask(ctx context.Context, id, engine, status, input, output string) {
	if k.store == nil {
		return
	}
	err := k.store.UpsertTask(ctx, store.TaskRow{
		ID:     id,
		Engine: engine,
		Status: status,
		Input:  input,
		Output: output,
	})
	if err != nil {
		k.log.Warning("Kernel", "task not persisted", map[string]interface{}{
			"task":  id,
			"error": err.Error(),
		})
	}
}
