// Package throttle bounds burst request rates per caller identity. The guard
// is in-process and best-effort: it is not durable and not shared across
// instances.
package throttle

import (
	"sync"
	"time"
)

// UnknownKey buckets callers whose network identity cannot be determined.
const UnknownKey = "unknown"

type Guard struct {
	mu          sync.Mutex
	minInterval time.Duration
	lastSeen    map[string]time.Time

	// now is swappable in tests
	now func() time.Time
}

func NewGuard(minInterval time.Duration) *Guard {
	return &Guard{
		minInterval: minInterval,
		lastSeen:    make(map[string]time.Time),
		now:         time.Now,
	}
}

// Allow records the call for key and reports whether it may proceed. A call
// arriving sooner than the minimum interval after the last allowed call for
// the same key is rejected without refreshing the timestamp.
func (g *Guard) Allow(key string) bool {
	if key == "" {
		key = UnknownKey
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if last, ok := g.lastSeen[key]; ok && now.Sub(last) < g.minInterval {
		return false
	}
	g.lastSeen[key] = now
	return true
}

// Prune drops entries idle for longer than maxIdle and returns how many were
// removed. Scheduled periodically so the map does not grow without bound.
func (g *Guard) Prune(maxIdle time.Duration) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	removed := 0
	for key, last := range g.lastSeen {
		if now.Sub(last) > maxIdle {
			delete(g.lastSeen, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked caller identities.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.lastSeen)
}
