package ports

import (
	"context"

	"github.com/almacen/admin-console/internal/core/domain"
)

// AuthGateway performs the single credential check against the
// authentication service (POST /auth/signin).
type AuthGateway interface {
	SignIn(ctx context.Context, username, password string) (*domain.UserRecord, error)
}
