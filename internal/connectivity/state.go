// Package connectivity tracks whether the upstream content APIs are reachable.
package connectivity

import "sync"

// State is the process-wide online/offline flag. Subscribers hear about
// each genuine transition exactly once; setting the current value again is
// a no-op.
type State struct {
	mu     sync.Mutex
	online bool
	subs   map[int]func(bool)
	nextID int
}

func NewState(online bool) *State {
	return &State{online: online, subs: make(map[int]func(bool))}
}

func (s *State) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// Set records the new state and notifies subscribers when it changed.
// Callbacks run on the caller's goroutine, outside the lock.
func (s *State) Set(online bool) {
	s.mu.Lock()
	if s.online == online {
		s.mu.Unlock()
		return
	}
	s.online = online
	subs := make([]func(bool), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(online)
	}
}

// Subscribe registers fn for future transitions. The returned func removes it.
func (s *State) Subscribe(fn func(bool)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
