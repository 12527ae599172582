package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/almacen/admin-console/internal/core/domain"
)

func TestSessionRepository_RoundTrip(t *testing.T) {
	repo := NewSessionRepository(time.Hour)
	ctx := context.Background()

	if _, err := repo.Load(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	state := domain.SessionState{
		Signed: true,
		User:   &domain.UserRecord{Person: domain.Person{Name: "Ana"}, Roles: []domain.Role{{Name: domain.UserRoleName}}},
		Roles:  []domain.Role{{Name: domain.UserRoleName}},
	}
	if err := repo.Save(ctx, "sid", state); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Load(ctx, "sid")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Signed || got.User.Person.Name != "Ana" {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestSessionRepository_Expiry(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	now := time.Now()
	repo.now = func() time.Time { return now }

	_ = repo.Save(context.Background(), "sid", domain.SessionState{Signed: true})

	now = now.Add(2 * time.Minute)
	if _, err := repo.Load(context.Background(), "sid"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func TestInFlightGuard(t *testing.T) {
	g := NewInFlightGuard()
	ctx := context.Background()

	if ok, _ := g.Acquire(ctx, "a"); !ok {
		t.Fatalf("expected first acquire to succeed")
	}
	if ok, _ := g.Acquire(ctx, "a"); ok {
		t.Fatalf("expected second acquire to fail")
	}
	if ok, _ := g.Acquire(ctx, "b"); !ok {
		t.Fatalf("keys must be independent")
	}

	_ = g.Release(ctx, "a")
	if ok, _ := g.Acquire(ctx, "a"); !ok {
		t.Fatalf("expected acquire after release")
	}
}
