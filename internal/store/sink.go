package store

import (
	"context"
	"time"

	"github.com/josephwere/NeuroEdge/internal/kernel/mesh"
	"github.com/josephwere/NeuroEdge/internal/logger"
)

// sinkTimeout bounds each background write so a wedged database cannot
// leak goroutines indefinitely.
const sinkTimeout = 5 * time.Second

// Sink adapts the Store to the mesh record interfaces. Writes are
// best-effort: failures are logged, never surfaced to the mesh.
type Sink struct {
	store *Store
	log   logger.Logger
}

func NewSink(store *Store, log logger.Logger) *Sink {
	return &Sink{store: store, log: log}
}

func (s *Sink) SaveMessage(record mesh.MessageRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := s.store.SaveMessage(ctx, record.Direction, record.NodeID, record.Message, record.Timestamp); err != nil {
		s.log.Warning("StoreSink", "message not persisted", map[string]interface{}{
			"node":  record.NodeID,
			"error": err.Error(),
		})
	}
}

func (s *Sink) SaveRoute(record mesh.RouteRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := s.store.SaveRoute(ctx, record.NodeID, record.Message, record.Timestamp); err != nil {
		s.log.Warning("StoreSink", "route not persisted", map[string]interface{}{
			"node":  record.NodeID,
			"error": err.Error(),
		})
	}
}
