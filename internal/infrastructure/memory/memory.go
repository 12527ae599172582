// Package memory provides in-process session storage for development and
// tests. State is lost on restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/almacen/admin-console/internal/core/domain"
)

type sessionEntry struct {
	state     domain.SessionState
	expiresAt time.Time
}

// SessionRepository keeps sessions in a map with sliding expiry.
type SessionRepository struct {
	mu       sync.Mutex
	sessions map[string]sessionEntry
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionRepository{
		sessions: make(map[string]sessionEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *SessionRepository) Load(_ context.Context, id string) (domain.SessionState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	if r.now().After(e.expiresAt) {
		delete(r.sessions, id)
		return domain.SessionState{}, domain.ErrSessionNotFound
	}

	e.expiresAt = r.now().Add(r.ttl)
	r.sessions[id] = e
	return e.state.Clone(), nil
}

func (r *SessionRepository) Save(_ context.Context, id string, state domain.SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[id] = sessionEntry{state: state.Clone(), expiresAt: r.now().Add(r.ttl)}
	return nil
}

// InFlightGuard is a process-local set of running sign-ins.
type InFlightGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func NewInFlightGuard() *InFlightGuard {
	return &InFlightGuard{running: make(map[string]struct{})}
}

func (g *InFlightGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.running[key]; busy {
		return false, nil
	}
	g.running[key] = struct{}{}
	return true, nil
}

func (g *InFlightGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	delete(g.running, key)
	g.mu.Unlock()
	return nil
}
