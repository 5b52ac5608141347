package store

import (
	"context"
	"testing"
	"time"
)

// setupTestStore opens an in-memory database for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("in-memory test database opening error: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("unexpected db close error: %v", err)
		}
	})
	return s
}

func TestMessages(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	now := time.Now()
	for _, body := range []string{"first", "second", "third"} {
		if err := s.SaveMessage(ctx, "outbound", "node-1", body, now); err != nil {
			t.Fatalf("save message: %v", err)
		}
	}

	rows, err := s.RecentMessages(ctx, 2)
	if err != nil {
		t.Fatalf("recent messages: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("row count: got %d want 2", len(rows))
	}
	if rows[0].Body != "third" {
		t.Errorf("expected newest first, got %q", rows[0].Body)
	}
	if rows[0].Direction != "outbound" || rows[0].NodeID != "node-1" {
		t.Errorf("unexpected row: %+v", rows[0])
	}
}

func TestRoutes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.SaveRoute(ctx, "node-2", "routed payload", time.Now()); err != nil {
		t.Fatalf("save route: %v", err)
	}

	rows, err := s.RecentRoutes(ctx, 0)
	if err != nil {
		t.Fatalf("recent routes: %v", err)
	}
	if len(rows) != 1 || rows[0].NodeID != "node-2" {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestTaskUpsert(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	task := TaskRow{ID: "task-1", Engine: "reasoning", Status: "pending", Input: `{"text":"hi"}`}
	if err := s.UpsertTask(ctx, task); err != nil {
		t.Fatalf("insert task: %v", err)
	}

	task.Status = "success"
	task.Output = `{"answer":"hello"}`
	if err := s.UpsertTask(ctx, task); err != nil {
		t.Fatalf("update task: %v", err)
	}

	got, err := s.Task(ctx, "task-1")
	if err != nil {
		t.Fatalf("fetch task: %v", err)
	}
	if got.Status != "success" {
		t.Errorf("status: got %q want %q", got.Status, "success")
	}
	if got.Output != `{"answer":"hello"}` {
		t.Errorf("output: got %q", got.Output)
	}
	if got.Input != `{"text":"hi"}` {
		t.Errorf("input should survive upsert, got %q", got.Input)
	}
}

func TestTaskNotFound(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.Task(context.Background(), "ghost"); err == nil {
		t.Error("expected error for unknown task")
	}
}

func TestEvents(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.SaveEvent(ctx, "compute:optimize", "api", `{"cpu_load":0.9}`, time.Now()); err != nil {
		t.Fatalf("save event: %v", err)
	}

	rows, err := s.RecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("recent events: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "compute:optimize" {
		t.Errorf("unexpected rows: %+v", rows)
	}
}
