package kernel

import (
	"sync"
	"time"
)

// ComponentStatus is one component's health as served by /kernel/health.
type ComponentStatus struct {
	Name      string    `json:"component"`
	Healthy   bool      `json:"healthy"`
	LastCheck time.Time `json:"last_check"`
	LastError error     `json:"-"`
}

// HealthManager tracks per-component health for the kernel.
type HealthManager struct {
	mu       sync.RWMutex
	statuses map[string]ComponentStatus
}

func NewHealthManager() *HealthManager {
	return &HealthManager{statuses: make(map[string]ComponentStatus)}
}

func (h *HealthManager) SetHealthy(name string) {
	h.set(name, true, nil)
}

func (h *HealthManager) SetUnhealthy(name string, err error) {
	h.set(name, false, err)
}

func (h *HealthManager) set(name string, healthy bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses[name] = ComponentStatus{
		Name:      name,
		Healthy:   healthy,
		LastCheck: time.Now(),
		LastError: err,
	}
}

// StatusesSnapshot returns a copy of all component states.
func (h *HealthManager) StatusesSnapshot() []ComponentStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]ComponentStatus, 0, len(h.statuses))
	for _, s := range h.statuses {
		out = append(out, s)
	}
	return out
}
