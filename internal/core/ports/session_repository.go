package ports

import (
	"context"

	"github.com/almacen/admin-console/internal/core/domain"
)

// SessionRepository persists session state by session id.
type SessionRepository interface {
	// Load returns domain.ErrSessionNotFound for unknown or expired ids.
	Load(ctx context.Context, id string) (domain.SessionState, error)
	Save(ctx context.Context, id string, state domain.SessionState) error
}

// InFlightGuard allows at most one outstanding sign-in per session.
type InFlightGuard interface {
	// Acquire reports false when a sign-in for key is already running.
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}
