// Package mesh tracks the kernel's peer nodes and the messages routed
// between them. History is bounded so a long-running kernel cannot grow
// without limit; durable history belongs to the store.
package mesh

import "time"

// Node is a peer in the NeuroEdge mesh: another kernel, an agent or an
// engine endpoint.
type Node struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Kind     string    `json:"kind"`
	Address  string    `json:"address"`
	IsActive bool      `json:"is_active"`
	LastSeen time.Time `json:"last_seen"`
}
