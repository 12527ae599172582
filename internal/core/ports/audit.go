package ports

import (
	"context"

	"github.com/almacen/admin-console/internal/core/domain"
)

// AuditRepository stores sign-in attempts.
type AuditRepository interface {
	InsertAttempt(ctx context.Context, attempt *domain.SignInAttempt) error
}

// AuditRecorder accepts attempts for asynchronous persistence. Record must
// not block the sign-in path.
type AuditRecorder interface {
	Record(attempt domain.SignInAttempt)
}
