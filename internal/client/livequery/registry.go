// Package livequery re-runs read queries when the tables they read change.
//
// The store calls Notify with the set of tables a transaction touched, after
// that transaction has committed. Every Subscription registered on one of
// those tables receives a signal. Signals coalesce: a subscriber that is busy
// reloading sees at most one pending signal, no matter how many commits
// happened in the meantime.
package livequery

import (
	"sync"
)

// Registry tracks subscriptions by table name. The zero value is not usable;
// call NewRegistry.
type Registry struct {
	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	closed bool
}

func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscription receives a signal on C after each commit that touched one of
// its tables. C is closed when the subscription is cancelled or the registry
// is closed.
type Subscription struct {
	C <-chan struct{}

	ch     chan struct{}
	reg    *Registry
	tables []string
	once   sync.Once
}

// Subscribe registers interest in tables. On a closed registry the returned
// subscription is already closed.
func (r *Registry) Subscribe(tables ...string) *Subscription {
	ch := make(chan struct{}, 1)
	s := &Subscription{C: ch, ch: ch, reg: r, tables: tables}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		s.once.Do(func() { close(ch) })
		return s
	}
	for _, t := range tables {
		set, ok := r.subs[t]
		if !ok {
			set = make(map[*Subscription]struct{})
			r.subs[t] = set
		}
		set[s] = struct{}{}
	}
	return s
}

// Notify signals every subscription registered on any of tables.
func (r *Registry) Notify(tables ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	for _, t := range tables {
		for s := range r.subs[t] {
			select {
			case s.ch <- struct{}{}:
			default:
			}
		}
	}
}

// Len returns the number of live subscriptions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[*Subscription]struct{})
	for _, set := range r.subs {
		for s := range set {
			seen[s] = struct{}{}
		}
	}
	return len(seen)
}

// Close closes every subscription. Further Notify calls are ignored.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for _, set := range r.subs {
		for s := range set {
			s.once.Do(func() { close(s.ch) })
		}
	}
	r.subs = nil
}

// Cancel unregisters the subscription and closes C. Safe to call more than once.
func (s *Subscription) Cancel() {
	r := s.reg
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range s.tables {
		if set, ok := r.subs[t]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(r.subs, t)
			}
		}
	}
	s.once.Do(func() { close(s.ch) })
}
