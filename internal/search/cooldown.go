package search

import (
	"sync"
	"time"
)

// Cooldown gates repeated external lookups for the same query string.
// Allow records the attempt when it returns true. The default backing is
// per-process memory, so under horizontal scale-out the window is
// best-effort rather than a global guarantee; swap in a shared-store
// implementation if that matters for a deployment.
type Cooldown interface {
	Allow(key string, now time.Time) bool
}

type MemoryCooldown struct {
	Window time.Duration

	mu   sync.Mutex
	seen map[string]time.Time
}

func NewMemoryCooldown(window time.Duration) *MemoryCooldown {
	if window <= 0 {
		window = 60 * time.Second
	}
	return &MemoryCooldown{
		Window: window,
		seen:   make(map[string]time.Time),
	}
}

func (m *MemoryCooldown) Allow(key string, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if last, ok := m.seen[key]; ok && now.Sub(last) < m.Window {
		return false
	}
	m.seen[key] = now
	return true
}
