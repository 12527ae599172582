package ports

import (
	"context"

	"github.com/almacen/admin-console/internal/core/domain"
)

// Account is a directory entry used when the console authenticates locally.
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	Person       domain.Person
	Roles        []domain.Role
}

// AccountRepository looks up directory accounts.
type AccountRepository interface {
	// FindByUsername returns domain.ErrAccountNotFound when absent.
	FindByUsername(ctx context.Context, username string) (*Account, error)
}
