package ports

import (
	"context"

	"github.com/almacen/admin-console/internal/core/domain"
	"github.com/almacen/admin-console/internal/core/session"
)

// Credentials is the sign-in form input.
type Credentials struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// SignInOutcome tells the caller where a successful sign-in lands.
type SignInOutcome struct {
	Kind domain.RoleKind
	// RouteKey is "admin", "client" or "user"; empty for unrecognised roles.
	RouteKey string
	// Path is the navigation target: "/<RouteKey>" or "/".
	Path string
	User domain.UserRecord
}

// Authenticator validates credentials, calls the authentication service and
// signs the given session in on success.
type Authenticator interface {
	SignIn(ctx context.Context, sessionID string, store *session.Store, creds Credentials) (SignInOutcome, error)
}
