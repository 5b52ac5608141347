package vision

import "sync"

// MemoryStats reports native Mat allocation pressure. Go's runtime stats
// do not see OpenCV memory, so the wrappers account for it themselves.
type MemoryStats struct {
	Allocated   int64 `json:"allocated"`
	Released    int64 `json:"released"`
	ActiveMats  int64 `json:"active_mats"`
	ActiveBytes int64 `json:"active_bytes"`
}

// memoryTracker accumulates allocation statistics for every wrapped Mat.
type memoryTracker struct {
	mu    sync.Mutex
	stats MemoryStats
}

// tracker is shared by all Mats in the process.
var tracker = &memoryTracker{}

func (t *memoryTracker) trackAlloc(bytes int64) {
	t.mu.Lock()
	t.stats.Allocated++
	t.stats.ActiveMats++
	t.stats.ActiveBytes += bytes
	t.mu.Unlock()
}

func (t *memoryTracker) trackRelease(bytes int64) {
	t.mu.Lock()
	t.stats.Released++
	t.stats.ActiveMats--
	t.stats.ActiveBytes -= bytes
	t.mu.Unlock()
}

func (t *memoryTracker) snapshot() MemoryStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// CurrentMemoryStats returns the process-wide Mat accounting.
func CurrentMemoryStats() MemoryStats {
	return tracker.snapshot()
}
