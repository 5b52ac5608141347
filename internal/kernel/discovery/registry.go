// Package discovery keeps the registry of mesh nodes and the capabilities
// advertised by agents and engines. Snapshots feed the /kernel/nodes and
// /kernel/capabilities endpoints.
package discovery

import (
	"sync"
	"time"

	"github.com/josephwere/NeuroEdge/internal/kernel/mesh"
)

// Capability describes what a registered agent or engine can do.
type Capability struct {
	Name         string   `json:"name"`
	Kind         string   `json:"kind"`
	Capabilities []string `json:"capabilities"`
}

type Registry struct {
	mu           sync.RWMutex
	nodes        map[string]mesh.Node
	capabilities map[string]Capability
}

func NewRegistry() *Registry {
	return &Registry{
		nodes:        make(map[string]mesh.Node),
		capabilities: make(map[string]Capability),
	}
}

// RegisterNode adds or refreshes a node. LastSeen is stamped here.
func (r *Registry) RegisterNode(node mesh.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	node.LastSeen = time.Now()
	r.nodes[node.ID] = node
}

// MarkInactive flags a node without removing it from the registry.
func (r *Registry) MarkInactive(nodeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if node, ok := r.nodes[nodeID]; ok {
		node.IsActive = false
		r.nodes[nodeID] = node
	}
}

// Node returns the node and whether it is registered.
func (r *Registry) Node(nodeID string) (mesh.Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	node, ok := r.nodes[nodeID]
	return node, ok
}

// Nodes returns a snapshot of all registered nodes.
func (r *Registry) Nodes() []mesh.Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]mesh.Node, 0, len(r.nodes))
	for _, node := range r.nodes {
		out = append(out, node)
	}
	return out
}

// RegisterCapability advertises an agent or engine capability set.
func (r *Registry) RegisterCapability(cap Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[cap.Name] = cap
}

// Capabilities returns a snapshot of all registered capabilities.
func (r *Registry) Capabilities() []Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Capability, 0, len(r.capabilities))
	for _, cap := range r.capabilities {
		out = append(out, cap)
	}
	return out
}
