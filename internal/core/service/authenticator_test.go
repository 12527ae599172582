package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/almacen/admin-console/internal/core/domain"
	"github.com/almacen/admin-console/internal/core/ports"
	"github.com/almacen/admin-console/internal/core/routing"
	"github.com/almacen/admin-console/internal/core/session"
	"github.com/almacen/admin-console/internal/pkg/validation"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubGateway struct {
	user  *domain.UserRecord
	err   error
	calls int
}

func (g *stubGateway) SignIn(_ context.Context, _, _ string) (*domain.UserRecord, error) {
	g.calls++
	return g.user, g.err
}

type stubGuard struct {
	busy       bool
	acquireErr error
	acquired   []string
	released   []string
}

func (g *stubGuard) Acquire(_ context.Context, key string) (bool, error) {
	if g.acquireErr != nil {
		return false, g.acquireErr
	}
	if g.busy {
		return false, nil
	}
	g.acquired = append(g.acquired, key)
	return true, nil
}

func (g *stubGuard) Release(_ context.Context, key string) error {
	g.released = append(g.released, key)
	return nil
}

type stubRecorder struct {
	attempts []domain.SignInAttempt
}

func (r *stubRecorder) Record(a domain.SignInAttempt) {
	r.attempts = append(r.attempts, a)
}

func newAuthenticator(gw *stubGateway, guard *stubGuard, rec *stubRecorder) *AuthenticatorService {
	return NewAuthenticator(gw, guard, rec, validation.New(), zerolog.Nop())
}

func record(roleName string) *domain.UserRecord {
	return &domain.UserRecord{
		Person: domain.Person{Name: "Ana", Surname: "Lopez"},
		Roles:  []domain.Role{{Name: roleName}},
	}
}

var goodCreds = ports.Credentials{Username: "erielit", Password: "secret"}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestAuthenticator_EmptyFieldsBlocked(t *testing.T) {
	cases := []ports.Credentials{
		{Username: "", Password: "secret"},
		{Username: "erielit", Password: ""},
		{},
	}

	for _, creds := range cases {
		gw := &stubGateway{user: record(domain.AdminRoleName)}
		guard := &stubGuard{}
		store := session.NewStore(domain.SessionState{})

		_, err := newAuthenticator(gw, guard, &stubRecorder{}).SignIn(context.Background(), "sid", store, creds)

		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError for %+v, got %v", creds, err)
		}
		if gw.calls != 0 {
			t.Fatalf("gateway must not be called for %+v", creds)
		}
		if len(guard.acquired) != 0 {
			t.Fatalf("guard must not be taken for invalid input")
		}
		if store.State().Signed {
			t.Fatalf("session must stay unsigned")
		}
	}
}

func TestAuthenticator_AdminSignIn(t *testing.T) {
	gw := &stubGateway{user: record(domain.AdminRoleName)}
	rec := &stubRecorder{}
	store := session.NewStore(domain.SessionState{})

	out, err := newAuthenticator(gw, &stubGuard{}, rec).SignIn(context.Background(), "sid", store, goodCreds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Path != "/admin" || out.RouteKey != "admin" || out.Kind != domain.RoleAdmin {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if !store.State().Signed {
		t.Fatalf("expected signed session")
	}

	tree := routing.Resolve(store.State())
	if len(tree.Routes[0].Children) != 1 || tree.Routes[0].Children[0].Path != "admin" {
		t.Fatalf("expected admin route, got %+v", tree.Routes[0].Children)
	}

	if len(rec.attempts) != 1 || rec.attempts[0].Outcome != domain.AttemptSignedIn || rec.attempts[0].Role != domain.AdminRoleName {
		t.Fatalf("expected signed_in audit record, got %+v", rec.attempts)
	}
}

func TestAuthenticator_ClientScenario(t *testing.T) {
	gw := &stubGateway{user: record(domain.ClientRoleName)}
	store := session.NewStore(domain.SessionState{})

	out, err := newAuthenticator(gw, &stubGuard{}, &stubRecorder{}).SignIn(context.Background(), "sid", store, goodCreds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Path != "/client" {
		t.Fatalf("expected /client, got %s", out.Path)
	}

	state := store.State()
	if !state.Signed {
		t.Fatalf("expected signed session")
	}
	leaf, _ := routing.Resolve(state).Match(out.Path).Leaf()
	if leaf.Path != "client" || leaf.View.Text != "Ana Lopez - CLIENT_ROLE" {
		t.Fatalf("unexpected active route: %+v", leaf)
	}
}

func TestAuthenticator_UnknownRoleStillSignsIn(t *testing.T) {
	gw := &stubGateway{user: record("GUEST_ROLE")}
	store := session.NewStore(domain.SessionState{})

	out, err := newAuthenticator(gw, &stubGuard{}, &stubRecorder{}).SignIn(context.Background(), "sid", store, goodCreds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Path != "/" || out.RouteKey != "" || out.Kind != domain.RoleUnknown {
		t.Fatalf("expected fallback to root, got %+v", out)
	}
	if !store.State().Signed {
		t.Fatalf("SIGNIN must be dispatched for unrecognised roles")
	}
	if n := len(routing.Resolve(store.State()).Routes[0].Children); n != 0 {
		t.Fatalf("expected no role route, got %d", n)
	}
}

func TestAuthenticator_GatewayFailureLeavesSession(t *testing.T) {
	cases := map[string]*stubGateway{
		"network error": {err: errors.New("dial tcp: connection refused")},
		"nil payload":   {},
		"no roles":      {user: &domain.UserRecord{Person: domain.Person{Name: "Ana"}}},
	}

	for name, gw := range cases {
		t.Run(name, func(t *testing.T) {
			rec := &stubRecorder{}
			guard := &stubGuard{}
			store := session.NewStore(domain.SessionState{})

			_, err := newAuthenticator(gw, guard, rec).SignIn(context.Background(), "sid", store, goodCreds)
			if !errors.Is(err, domain.ErrAuthentication) {
				t.Fatalf("expected ErrAuthentication, got %v", err)
			}
			if err.Error() != "incorrect username and/or password" {
				t.Fatalf("cause leaked into message: %q", err.Error())
			}
			if store.State().Signed {
				t.Fatalf("session must remain unsigned")
			}
			leaf, _ := routing.Resolve(store.State()).Match("/").Leaf()
			if leaf.View.Kind != routing.ViewSignIn {
				t.Fatalf("expected sign-in route to stay active, got %s", leaf.View.Kind)
			}
			if len(rec.attempts) != 1 || rec.attempts[0].Outcome != domain.AttemptRejected {
				t.Fatalf("expected rejected audit record, got %+v", rec.attempts)
			}
			if len(guard.released) != 1 {
				t.Fatalf("expected guard released after failure")
			}
		})
	}
}

func TestAuthenticator_InFlightRejected(t *testing.T) {
	gw := &stubGateway{user: record(domain.AdminRoleName)}
	store := session.NewStore(domain.SessionState{})

	_, err := newAuthenticator(gw, &stubGuard{busy: true}, &stubRecorder{}).SignIn(context.Background(), "sid", store, goodCreds)
	if !errors.Is(err, domain.ErrSignInInProgress) {
		t.Fatalf("expected ErrSignInInProgress, got %v", err)
	}
	if gw.calls != 0 {
		t.Fatalf("gateway must not be called while another sign-in is running")
	}
}

func TestAuthenticator_GuardKeyedBySession(t *testing.T) {
	guard := &stubGuard{}
	gw := &stubGateway{user: record(domain.UserRoleName)}

	_, err := newAuthenticator(gw, guard, &stubRecorder{}).SignIn(context.Background(), "abc", session.NewStore(domain.SessionState{}), goodCreds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(guard.acquired) != 1 || guard.acquired[0] != "signin:abc" {
		t.Fatalf("unexpected guard keys: %v", guard.acquired)
	}
	if len(guard.released) != 1 || guard.released[0] != "signin:abc" {
		t.Fatalf("guard not released: %v", guard.released)
	}
}

func TestAuthenticator_GuardErrorProceeds(t *testing.T) {
	gw := &stubGateway{user: record(domain.UserRoleName)}
	store := session.NewStore(domain.SessionState{})

	out, err := newAuthenticator(gw, &stubGuard{acquireErr: errors.New("redis down")}, &stubRecorder{}).
		SignIn(context.Background(), "sid", store, goodCreds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Path != "/user" || gw.calls != 1 {
		t.Fatalf("expected sign-in to proceed, got %+v (calls=%d)", out, gw.calls)
	}
}

func TestAuthenticator_NilGuardAndRecorder(t *testing.T) {
	gw := &stubGateway{user: record(domain.AdminRoleName)}
	svc := NewAuthenticator(gw, nil, nil, validation.New(), zerolog.Nop())

	if _, err := svc.SignIn(context.Background(), "sid", session.NewStore(domain.SessionState{}), goodCreds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthenticator_DispatchesPayloadVerbatim(t *testing.T) {
	gw := &stubGateway{user: &domain.UserRecord{
		Person: domain.Person{Name: "Ana", Surname: "O<Brien", Lastname: "<b>Ruiz</b>"},
		Roles:  []domain.Role{{Name: domain.AdminRoleName}, {Name: "AUDIT_<ROLE>"}},
	}}
	store := session.NewStore(domain.SessionState{})

	if _, err := newAuthenticator(gw, &stubGuard{}, &stubRecorder{}).SignIn(context.Background(), "sid", store, goodCreds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := store.State()
	if !reflect.DeepEqual(*state.User, *gw.user) {
		t.Fatalf("payload altered: %+v", *state.User)
	}
	if len(state.Roles) != 2 || state.Roles[1].Name != "AUDIT_<ROLE>" {
		t.Fatalf("roles altered: %+v", state.Roles)
	}

	// The store holds its own copy.
	gw.user.Person.Name = "changed"
	if store.State().User.Person.Name != "Ana" {
		t.Fatalf("store shares memory with the gateway payload")
	}
}
