package mesh

import (
	"sync"
	"time"

	"github.com/josephwere/NeuroEdge/internal/logger"
)

// maxRouteHistory bounds the in-memory route log.
const maxRouteHistory = 5000

type RouteRecord struct {
	NodeID    string    `json:"node_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RouteSink receives route records for durable storage.
type RouteSink interface {
	SaveRoute(record RouteRecord)
}

// Routing handles message delivery across nodes.
type Routing struct {
	mu      sync.Mutex
	history []RouteRecord
	sink    RouteSink
	log     logger.Logger
}

func NewRouting(log logger.Logger) *Routing {
	return &Routing{
		history: make([]RouteRecord, 0, 256),
		log:     log,
	}
}

func (r *Routing) SetSink(sink RouteSink) {
	r.mu.Lock()
	r.sink = sink
	r.mu.Unlock()
}

// RouteMessage routes a message to an active target node and records the
// route. Inactive and nil nodes are skipped.
func (r *Routing) RouteMessage(node *Node, message string) bool {
	if node == nil {
		r.log.Warning("Routing", "routing skipped, node is nil", nil)
		return false
	}
	if !node.IsActive {
		r.log.Warning("Routing", "routing skipped, node inactive", map[string]interface{}{
			"node": node.ID,
		})
		return false
	}

	record := RouteRecord{
		NodeID:    node.ID,
		Message:   message,
		Timestamp: time.Now(),
	}
	r.mu.Lock()
	r.history = append(r.history, record)
	if len(r.history) > maxRouteHistory {
		r.history = r.history[len(r.history)-maxRouteHistory:]
	}
	sink := r.sink
	r.mu.Unlock()

	if sink != nil {
		go sink.SaveRoute(record)
	}

	r.log.Debug("Routing", "message routed", map[string]interface{}{
		"node": node.ID,
	})
	return true
}

// History returns the most recent records, all of them when limit <= 0.
func (r *Routing) History(limit int) []RouteRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit >= len(r.history) {
		out := make([]RouteRecord, len(r.history))
		copy(out, r.history)
		return out
	}
	start := len(r.history) - limit
	out := make([]RouteRecord, limit)
	copy(out, r.history[start:])
	return out
}
