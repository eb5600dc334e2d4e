package flow

import "sync"

// Sessions maps user ids to their session stores, creating stores on first
// use. Sessions are transient: a restart empties them, and that is the
// documented durability contract for entries.
type Sessions struct {
	mu      sync.Mutex
	stores  map[string]*Store
	onEvent func(userID string, ev Event)
	opts    []Option
}

// NewSessions creates a session registry. onEvent, when non-nil, receives
// every store event tagged with the owning user id. opts are applied to each
// store created.
func NewSessions(onEvent func(userID string, ev Event), opts ...Option) *Sessions {
	return &Sessions{
		stores:  make(map[string]*Store),
		onEvent: onEvent,
		opts:    opts,
	}
}

// For returns the store for a user, creating it if needed.
func (s *Sessions) For(userID string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	if store, ok := s.stores[userID]; ok {
		return store
	}

	opts := s.opts
	if s.onEvent != nil {
		opts = append(append([]Option(nil), s.opts...), WithEventFunc(func(ev Event) {
			s.onEvent(userID, ev)
		}))
	}
	store := NewStore(opts...)
	s.stores[userID] = store
	return store
}

// Drop removes a user's session, discarding all transient state.
func (s *Sessions) Drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stores, userID)
}
