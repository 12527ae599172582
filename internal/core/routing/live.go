package routing

import (
	"sync"

	"github.com/almacen/admin-console/internal/core/domain"
	"github.com/almacen/admin-console/internal/core/session"
)

// Live keeps a route tree in step with a session.Store. The tree is
// recomputed on every dispatch, never on a timer.
type Live struct {
	mu          sync.RWMutex
	tree        Tree
	unsubscribe func()
	onResolve   func(domain.SessionState)
}

// Bind resolves the tree for the store's current state and subscribes to
// future changes. onResolve, when non-nil, is called after every resolution.
func Bind(store *session.Store, onResolve func(domain.SessionState)) *Live {
	l := &Live{onResolve: onResolve}
	l.update(store.State())
	l.unsubscribe = store.Subscribe(l.update)
	return l
}

func (l *Live) update(state domain.SessionState) {
	tree := Resolve(state)

	l.mu.Lock()
	l.tree = tree
	l.mu.Unlock()

	if l.onResolve != nil {
		l.onResolve(state)
	}
}

// Tree returns the current route tree.
func (l *Live) Tree() Tree {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tree
}

// Close stops following the store.
func (l *Live) Close() {
	if l.unsubscribe != nil {
		l.unsubscribe()
	}
}
