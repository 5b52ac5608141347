package mesh

import (
	"sync"
	"time"

	"github.com/josephwere/NeuroEdge/internal/logger"
)

// maxMessageHistory bounds the in-memory transcript.
const maxMessageHistory = 10000

type MessageRecord struct {
	Direction string    `json:"direction"`
	NodeID    string    `json:"node_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordSink receives message records for durable storage. Persistence is
// best-effort and must not block message flow.
type RecordSink interface {
	SaveMessage(record MessageRecord)
}

// Messaging handles sending and receiving messages between nodes.
type Messaging struct {
	mu      sync.Mutex
	inbox   map[string][]string
	outbox  map[string][]string
	history []MessageRecord
	sink    RecordSink
	log     logger.Logger
}

func NewMessaging(log logger.Logger) *Messaging {
	return &Messaging{
		inbox:   make(map[string][]string),
		outbox:  make(map[string][]string),
		history: make([]MessageRecord, 0, 512),
		log:     log,
	}
}

// SetSink attaches a durable record sink.
func (m *Messaging) SetSink(sink RecordSink) {
	m.mu.Lock()
	m.sink = sink
	m.mu.Unlock()
}

func (m *Messaging) pushHistory(direction, nodeID, message string) {
	record := MessageRecord{
		Direction: direction,
		NodeID:    nodeID,
		Message:   message,
		Timestamp: time.Now(),
	}
	m.history = append(m.history, record)
	if len(m.history) > maxMessageHistory {
		m.history = m.history[len(m.history)-maxMessageHistory:]
	}
	if m.sink != nil {
		go m.sink.SaveMessage(record)
	}
}

// SendMessage queues an outbound message for a node.
func (m *Messaging) SendMessage(node *Node, message string) {
	if node == nil {
		m.log.Warning("Messaging", "send skipped, node is nil", nil)
		return
	}
	m.mu.Lock()
	m.outbox[node.ID] = append(m.outbox[node.ID], message)
	m.pushHistory("outbound", node.ID, message)
	m.mu.Unlock()
	m.log.Debug("Messaging", "message sent", map[string]interface{}{
		"node": node.ID,
	})
}

// ReceiveMessage registers a received message from a node.
func (m *Messaging) ReceiveMessage(node *Node, message string) {
	if node == nil {
		m.log.Warning("Messaging", "receive skipped, node is nil", nil)
		return
	}
	m.mu.Lock()
	m.inbox[node.ID] = append(m.inbox[node.ID], message)
	m.pushHistory("inbound", node.ID, message)
	m.mu.Unlock()
	m.log.Debug("Messaging", "message received", map[string]interface{}{
		"node": node.ID,
	})
}

func (m *Messaging) ReadInbox(nodeID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.inbox[nodeID]
	out := make([]string, len(items))
	copy(out, items)
	return out
}

func (m *Messaging) ReadOutbox(nodeID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.outbox[nodeID]
	out := make([]string, len(items))
	copy(out, items)
	return out
}

// History returns the most recent records, all of them when limit <= 0.
func (m *Messaging) History(limit int) []MessageRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit >= len(m.history) {
		out := make([]MessageRecord, len(m.history))
		copy(out, m.history)
		return out
	}
	start := len(m.history) - limit
	out := make([]MessageRecord, limit)
	copy(out, m.history[start:])
	return out
}
