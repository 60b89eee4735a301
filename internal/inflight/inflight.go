// Package inflight serializes mutating calls per resource key: a second call
// for a key that is still outstanding is rejected rather than queued.
package inflight

import "sync"

// Guard tracks which resource keys have an outstanding call.
type Guard struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

// New returns an empty guard.
func New() *Guard {
	return &Guard{busy: make(map[string]struct{})}
}

// Acquire marks key busy. It returns a release func and true, or nil and false
// when key is already busy.
func (g *Guard) Acquire(key string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.busy[key]; ok {
		return nil, false
	}
	g.busy[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.busy, key)
			g.mu.Unlock()
		})
	}, true
}

// Busy reports whether key has an outstanding call.
func (g *Guard) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.busy[key]
	return ok
}
