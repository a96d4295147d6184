package provider

import (
	"sync"

	"github.com/google/uuid"
)

// hub fans auth events out to subscribers. Events are emitted from the
// goroutine that completed the auth call; callbacks must not block for long.
type hub struct {
	mu   sync.Mutex
	subs map[string]func(AuthEvent, *Session)
}

// subscribe registers fn and returns an unsubscribe func tied to this
// registration only. Unsubscribing twice is a no-op.
func (h *hub) subscribe(fn func(AuthEvent, *Session)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[string]func(AuthEvent, *Session))
	}
	id := uuid.NewString()
	h.subs[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

func (h *hub) emit(ev AuthEvent, s *Session) {
	h.mu.Lock()
	fns := make([]func(AuthEvent, *Session), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(ev, s)
	}
}
