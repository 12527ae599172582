package gateway

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/almacen/admin-console/internal/core/domain"
	"github.com/almacen/admin-console/internal/core/ports"
)

// LocalGateway authenticates against the console's own account directory.
type LocalGateway struct {
	accounts ports.AccountRepository
}

func NewLocalGateway(accounts ports.AccountRepository) *LocalGateway {
	return &LocalGateway{accounts: accounts}
}

func (g *LocalGateway) SignIn(ctx context.Context, username, password string) (*domain.UserRecord, error) {
	acc, err := g.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, ErrRejected
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return nil, ErrRejected
	}

	rec := domain.UserRecord{Person: acc.Person, Roles: acc.Roles}
	rec = rec.Clone()
	return &rec, nil
}
