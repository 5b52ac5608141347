package kernel

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/josephwere/NeuroEdge/internal/config"
	"github.com/josephwere/NeuroEdge/internal/logger"
)

type fakeInference struct {
	out string
	err error
}

func (f fakeInference) Generate(ctx context.Context, prompt string) (string, error) {
	return f.out, f.err
}

type fakeVision struct {
	out string
	err error
}

func (f fakeVision) Thumbnail(ctx context.Context, sourcePath string, maxEdge int) (string, error) {
	return f.out, f.err
}

func newTestKernel(t *testing.T) *Kernel {
	t.Helper()
	cfg := config.Default()
	cfg.Ollama.Model = "" // no real backend in tests
	cfg.Orchestrator.Address = "http://127.0.0.1:1"
	k := New(cfg, logger.Nop{}, nil)
	k.Start()
	t.Cleanup(k.Shutdown)
	return k
}

func TestNormalizeCommand(t *testing.T) {
	cmd := Command{}
	cmd.Normalize()
	if !strings.HasPrefix(cmd.ID, "kernel-") {
		t.Errorf("generated id should carry the kernel prefix, got %q", cmd.ID)
	}
	if cmd.Payload == nil {
		t.Error("payload should be initialised")
	}
	if cmd.Type != "execute" {
		t.Errorf("unknown type should normalize to execute, got %q", cmd.Type)
	}

	cmd = Command{ID: "keep", Type: "ai_inference"}
	cmd.Normalize()
	if cmd.ID != "keep" || cmd.Type != "ai_inference" {
		t.Errorf("explicit fields should survive: %+v", cmd)
	}

	// Known types keep their original spelling, whitespace included.
	cmd = Command{Type: " chat "}
	cmd.Normalize()
	if cmd.Type != " chat " {
		t.Errorf("known type should pass through untrimmed, got %q", cmd.Type)
	}
}

func TestCommandAction(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
		want    string
	}{
		{"code wins", map[string]interface{}{"code": "a", "command": "b", "message": "c"}, "a"},
		{"command second", map[string]interface{}{"command": "b", "message": "c"}, "b"},
		{"message last", map[string]interface{}{"message": "c"}, "c"},
		{"blank skipped", map[string]interface{}{"code": "  ", "message": "c"}, "c"},
		{"non-string skipped", map[string]interface{}{"code": 42, "message": "c"}, "c"},
		{"empty payload", map[string]interface{}{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := Command{Payload: tt.payload}
			if got := cmd.Action(); got != tt.want {
				t.Errorf("Action() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExecuteEmptyAction(t *testing.T) {
	k := newTestKernel(t)
	resp := k.Execute(context.Background(), Command{Type: "execute"})
	if resp.Success {
		t.Error("empty action should fail")
	}
	if resp.Stderr != "empty payload action" {
		t.Errorf("stderr: got %q", resp.Stderr)
	}
	if resp.ID == "" || resp.Timestamp == "" {
		t.Errorf("id and timestamp should be set: %+v", resp)
	}
}

func TestExecuteGuardBlocks(t *testing.T) {
	k := newTestKernel(t)
	resp := k.Execute(context.Background(), Command{
		Type:    "execute",
		Payload: map[string]interface{}{"command": "rm -rf /"},
	})
	if resp.Success {
		t.Error("guard should block the command")
	}
	if !strings.Contains(resp.Stderr, "blocked") {
		t.Errorf("stderr: got %q", resp.Stderr)
	}
}

func TestExecuteAck(t *testing.T) {
	k := newTestKernel(t)
	resp := k.Execute(context.Background(), Command{
		ID:      "cmd-1",
		Type:    "execute",
		Payload: map[string]interface{}{"command": "reindex catalogue"},
	})
	if !resp.Success {
		t.Fatalf("expected success: %+v", resp)
	}
	if want := "kernel accepted execute: reindex catalogue"; resp.Stdout != want {
		t.Errorf("stdout: got %q want %q", resp.Stdout, want)
	}
}

func TestExecuteInferenceLocal(t *testing.T) {
	k := newTestKernel(t)
	k.SetLocalInference(fakeInference{out: "the answer"})

	resp := k.Execute(context.Background(), Command{
		Type:    "chat",
		Payload: map[string]interface{}{"message": "what is the answer"},
	})
	if !resp.Success {
		t.Fatalf("expected success: %+v", resp)
	}
	if resp.Stdout != "the answer" {
		t.Errorf("stdout: got %q", resp.Stdout)
	}
	data, _ := resp.Data.(map[string]interface{})
	if data["component"] != "local-inference" {
		t.Errorf("component: got %v", data["component"])
	}
}

func TestExecuteInferenceFallsBack(t *testing.T) {
	k := newTestKernel(t)
	// Local backend fails; the orchestrator address points nowhere, so the
	// fallback also fails, but as a normalized failed response.
	k.SetLocalInference(fakeInference{err: errors.New("model not loaded")})

	resp := k.Execute(context.Background(), Command{
		ID:      "task-9",
		Type:    "ai_inference",
		Payload: map[string]interface{}{"message": "hello"},
	})
	if resp.Success {
		t.Error("expected failure when both backends are down")
	}
	if resp.ID != "task-9" {
		t.Errorf("id should be preserved, got %q", resp.ID)
	}
}

func TestExecuteImageTask(t *testing.T) {
	k := newTestKernel(t)
	k.SetVision(fakeVision{out: "/tmp/thumb.png"})

	resp := k.Execute(context.Background(), Command{
		Type: "execute",
		Payload: map[string]interface{}{
			"command": "thumbnail",
			"image":   "/tmp/in.png",
		},
	})
	if !resp.Success {
		t.Fatalf("expected success: %+v", resp)
	}
	if resp.Stdout != "/tmp/thumb.png" {
		t.Errorf("stdout: got %q", resp.Stdout)
	}

	k.SetVision(fakeVision{err: errors.New("decode failed")})
	resp = k.Execute(context.Background(), Command{
		Type: "execute",
		Payload: map[string]interface{}{
			"command": "thumbnail",
			"image":   "/tmp/in.png",
		},
	})
	if resp.Success {
		t.Error("vision failure should fail the command")
	}
}

type fakeAccountingVision struct {
	fakeVision
	stats map[string]int64
}

func (f fakeAccountingVision) MemoryStats() map[string]int64 { return f.stats }

func TestVisionMemoryStats(t *testing.T) {
	k := newTestKernel(t)

	if got := k.VisionMemoryStats(); got != nil {
		t.Errorf("no engine attached, stats should be nil, got %v", got)
	}

	k.SetVision(fakeVision{})
	if got := k.VisionMemoryStats(); got != nil {
		t.Errorf("non-accounting engine, stats should be nil, got %v", got)
	}

	k.SetVision(fakeAccountingVision{stats: map[string]int64{"active_mats": 3}})
	got := k.VisionMemoryStats()
	if got == nil || got["active_mats"] != 3 {
		t.Errorf("accounting engine stats should pass through, got %v", got)
	}
}

func TestHealthManager(t *testing.T) {
	h := NewHealthManager()
	h.SetHealthy("mesh")
	h.SetUnhealthy("store", errors.New("disk full"))

	statuses := h.StatusesSnapshot()
	if len(statuses) != 2 {
		t.Fatalf("status count: got %d want 2", len(statuses))
	}
	for _, s := range statuses {
		switch s.Name {
		case "mesh":
			if !s.Healthy {
				t.Error("mesh should be healthy")
			}
		case "store":
			if s.Healthy || s.LastError == nil {
				t.Errorf("store should be unhealthy with error: %+v", s)
			}
		}
		if s.LastCheck.IsZero() {
			t.Errorf("last check should be stamped: %+v", s)
		}
	}
}
