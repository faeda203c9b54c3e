package server

import (
	"slices"
	"sync"
)

// Registry maps each online user to the id of their live connection. A user
// has at most one entry and the most recent connection wins.
type Registry struct {
	mu       sync.RWMutex
	conns    map[int]string
	onChange func(online []int)
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[int]string),
	}
}

// OnChange sets the callback invoked with the online user ids after every
// registry mutation. It runs while the registry lock is held, so callbacks
// observe changes in the order they were applied and must not call back
// into the registry.
func (r *Registry) OnChange(fn func(online []int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

func (r *Registry) Register(userId int, connId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[userId] = connId
	r.notify()
}

func (r *Registry) Unregister(userId int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, userId)
	r.notify()
}

// UnregisterConn removes userId only while it still points at connId, so a
// connection that was replaced by a newer one cannot evict it on close.
// It reports whether the entry was removed.
func (r *Registry) UnregisterConn(userId int, connId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := false
	if cur, ok := r.conns[userId]; ok && cur == connId {
		delete(r.conns, userId)
		removed = true
	}

	r.notify()
	return removed
}

func (r *Registry) Lookup(userId int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connId, ok := r.conns[userId]
	return connId, ok
}

func (r *Registry) Online() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.online()
}

func (r *Registry) online() []int {
	ids := make([]int, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (r *Registry) notify() {
	if r.onChange != nil {
		r.onChange(r.online())
	}
}
