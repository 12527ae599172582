// Package session holds the per-browser Session Store: a reducer-style
// transition function and the context object that applies it.
package session

import (
	"sync"

	"github.com/almacen/admin-console/internal/core/domain"
)

// ActionType names a session transition.
type ActionType string

// ActionSignIn is the only recognised action.
const ActionSignIn ActionType = "SIGNIN"

// Action is dispatched to a Store.
type Action struct {
	Type    ActionType
	Payload *domain.UserRecord
}

// SignIn builds the SIGNIN action for a successful authentication payload.
func SignIn(payload domain.UserRecord) Action {
	p := payload.Clone()
	return Action{Type: ActionSignIn, Payload: &p}
}

// Reduce is the pure transition function. SIGNIN replaces user and roles
// wholesale and marks the session signed. Any other action, or a SIGNIN
// without payload, leaves the state untouched.
func Reduce(state domain.SessionState, action Action) domain.SessionState {
	switch action.Type {
	case ActionSignIn:
		if action.Payload == nil {
			return state
		}
		user := action.Payload.Clone()
		return domain.SessionState{
			Signed: true,
			User:   &user,
			Roles:  user.Clone().Roles,
		}
	default:
		return state
	}
}

// Store is the explicit session context passed to the components that read
// or mutate the session.
type Store struct {
	mu        sync.RWMutex
	state     domain.SessionState
	listeners map[int]func(domain.SessionState)
	nextID    int
}

// NewStore creates a Store seeded with initial. Use domain.SessionState{} for
// a fresh, unsigned session.
func NewStore(initial domain.SessionState) *Store {
	return &Store{
		state:     initial.Clone(),
		listeners: make(map[int]func(domain.SessionState)),
	}
}

// Dispatch applies action and notifies subscribers with the new state.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, action)
	next := s.state.Clone()
	fns := make([]func(domain.SessionState), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next.Clone())
	}
}

// State returns a copy of the current state.
func (s *Store) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Subscribe registers fn to be called after every dispatch. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(domain.SessionState)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
