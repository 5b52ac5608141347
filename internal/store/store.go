// Package store persists kernel history: mesh messages, routes, tasks and
// ingested events. The backend is SQLite through the pure Go driver so
// desktop builds need no C toolchain beyond the vision stack.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx" // helper library
	_ "modernc.org/sqlite"    // pure go sqlite driver
)

// Store wraps the sqlx connection with application-specific operations.
type Store struct {
	*sqlx.DB
}

// MessageRow mirrors the messages table.
type MessageRow struct {
	ID        int64     `db:"id" json:"id"`
	Direction string    `db:"direction" json:"direction"`
	NodeID    string    `db:"node_id" json:"node_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RouteRow mirrors the routes table.
type RouteRow struct {
	ID        int64     `db:"id" json:"id"`
	NodeID    string    `db:"node_id" json:"node_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TaskRow mirrors the tasks table.
type TaskRow struct {
	ID        string    `db:"id" json:"id"`
	Engine    string    `db:"engine" json:"engine"`
	Status    string    `db:"status" json:"status"`
	Input     string    `db:"input" json:"input"`
	Output    string    `db:"output" json:"output"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// EventRow mirrors the events table.
type EventRow struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Source    string    `db:"source" json:"source"`
	Payload   string    `db:"payload" json:"payload"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// New opens (or creates) the database at dbPath and ensures the schema.
// In-memory databases for tests must use "file::memory:?cache=shared".
func New(dbPath string) (*Store, error) {
	dataSource := dbPath
	if !strings.Contains(dbPath, ":memory:") {
		dataSource = fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", dbPath)
	}

	dbDB, err := sql.Open("sqlite", dataSource)
	if err != nil {
		return nil, fmt.Errorf("could not open database %q: %w", dbPath, err)
	}
	if err := dbDB.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping database %q: %w", dbPath, err)
	}

	s := &Store{DB: sqlx.NewDb(dbDB, "sqlite")}
	if err := s.initSchema(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("could not initialise schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.Exec(schema)
	return err
}

// SaveMessage records a mesh message.
func (s *Store) SaveMessage(ctx context.Context, direction, nodeID, body string, at time.Time) error {
	_, err := s.ExecContext(ctx,
		`INSERT INTO messages (direction, node_id, body, created_at) VALUES (?, ?, ?, ?)`,
		direction, nodeID, body, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("could not save message: %w", err)
	}
	return nil
}

// SaveRoute records a routed delivery.
func (s *Store) SaveRoute(ctx context.Context, nodeID, body string, at time.Time) error {
	_, err := s.ExecContext(ctx,
		`INSERT INTO routes (node_id, body, created_at) VALUES (?, ?, ?)`,
		nodeID, body, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("could not save route: %w", err)
	}
	return nil
}

// SaveEvent records an ingested bus event.
func (s *Store) SaveEvent(ctx context.Context, name, source, payload string, at time.Time) error {
	_, err := s.ExecContext(ctx,
		`INSERT INTO events (name, source, payload, created_at) VALUES (?, ?, ?, ?)`,
		name, source, payload, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("could not save event: %w", err)
	}
	return nil
}

// UpsertTask inserts the task or, when the id exists, updates its status
// and output.
func (s *Store) UpsertTask(ctx context.Context, task TaskRow) error {
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	_, err := s.NamedExecContext(ctx, `
		INSERT INTO tasks (id, engine, status, input, output, created_at, updated_at)
		VALUES (:id, :engine, :status, :input, :output, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			output = excluded.output,
			updated_at = excluded.updated_at`,
		task,
	)
	if err != nil {
		return fmt.Errorf("could not upsert task %q: %w", task.ID, err)
	}
	return nil
}

// Task fetches a task by id.
func (s *Store) Task(ctx context.Context, id string) (TaskRow, error) {
	var task TaskRow
	err := s.GetContext(ctx, &task, `SELECT * FROM tasks WHERE id = ?`, id)
	if err != nil {
		return TaskRow{}, fmt.Errorf("could not fetch task %q: %w", id, err)
	}
	return task, nil
}

// RecentMessages returns up to limit messages, newest first.
func (s *Store) RecentMessages(ctx context.Context, limit int) ([]MessageRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows := []MessageRow{}
	err := s.SelectContext(ctx, &rows,
		`SELECT * FROM messages ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("could not fetch messages: %w", err)
	}
	return rows, nil
}

// RecentRoutes returns up to limit routes, newest first.
func (s *Store) RecentRoutes(ctx context.Context, limit int) ([]RouteRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows := []RouteRow{}
	err := s.SelectContext(ctx, &rows,
		`SELECT * FROM routes ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("could not fetch routes: %w", err)
	}
	return rows, nil
}

// RecentEvents returns up to limit events, newest first.
func (s *Store) RecentEvents(ctx context.Context, limit int) ([]EventRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows := []EventRow{}
	err := s.SelectContext(ctx, &rows,
		`SELECT * FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("could not fetch events: %w", err)
	}
	return rows, nil
}
