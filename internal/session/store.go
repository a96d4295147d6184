package session

import (
	"sync"

	"github.com/google/uuid"
)

// Store is the observable state container. All mutation goes through
// Dispatch, which applies the reducer under one mutex and then notifies
// subscribers with the new snapshot; two dispatches never interleave.
type Store struct {
	mu    sync.Mutex
	state State
	subs  map[string]func(State)
}

func NewStore() *Store {
	return &Store{state: initialState()}
}

// State returns the current snapshot. The snapshot is detached: mutating it
// does not affect the store.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Dispatch applies ev and notifies every subscriber with the resulting
// snapshot. Subscribers run on the dispatching goroutine, outside the lock.
func (s *Store) Dispatch(ev Event) {
	s.mu.Lock()
	s.state = reduce(s.state, ev)
	snapshot := s.state.clone()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// Subscribe registers fn for every future dispatch. The returned func
// removes exactly this registration and is safe to call more than once.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs == nil {
		s.subs = make(map[string]func(State))
	}
	id := uuid.NewString()
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
