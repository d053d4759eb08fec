package cache

import "sync"

// InflightGate tracks submissions currently in flight, keyed by draft or
// worksheet identity. Nothing else stops a double-click from firing two
// submissions, so handlers take the gate before calling the service.
type InflightGate struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewInflightGate() *InflightGate {
	return &InflightGate{keys: make(map[string]struct{})}
}

// Begin claims the key. It returns false when a submission for the same
// key is already running.
func (g *InflightGate) Begin(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.keys[key]; busy {
		return false
	}
	g.keys[key] = struct{}{}
	return true
}

// End releases the key regardless of the submission outcome.
func (g *InflightGate) End(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
}
