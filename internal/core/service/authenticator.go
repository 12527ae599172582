package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/almacen/admin-console/internal/core/domain"
	"github.com/almacen/admin-console/internal/core/ports"
	"github.com/almacen/admin-console/internal/core/routing"
	"github.com/almacen/admin-console/internal/core/session"
)

const inFlightKeyPrefix = "signin:"

var errEmptyRoles = errors.New("authentication payload carries no roles")

// CredentialValidator checks the sign-in form before any network call.
type CredentialValidator interface {
	Validate(i any) error
}

// noopRecorder is used when no audit recorder is configured.
type noopRecorder struct{}

func (noopRecorder) Record(domain.SignInAttempt) {}

// AuthenticatorService implements ports.Authenticator.
type AuthenticatorService struct {
	gateway  ports.AuthGateway
	guard    ports.InFlightGuard
	audit    ports.AuditRecorder
	validate CredentialValidator
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthenticator(
	gateway ports.AuthGateway,
	guard ports.InFlightGuard,
	audit ports.AuditRecorder,
	validate CredentialValidator,
	log zerolog.Logger,
) *AuthenticatorService {
	if audit == nil {
		audit = noopRecorder{}
	}
	return &AuthenticatorService{
		gateway:  gateway,
		guard:    guard,
		audit:    audit,
		validate: validate,
		log:      log,
		now:      time.Now,
	}
}

// SignIn validates creds, calls the authentication service once and, on
// success, dispatches SIGNIN on store. The store is never touched on failure.
func (s *AuthenticatorService) SignIn(ctx context.Context, sessionID string, store *session.Store, creds ports.Credentials) (ports.SignInOutcome, error) {
	// 1. Required fields; never reaches the network.
	if err := s.validate.Validate(&creds); err != nil {
		return ports.SignInOutcome{}, err
	}

	// 2. One outstanding submission per session.
	if s.guard != nil {
		key := inFlightKeyPrefix + sessionID
		acquired, err := s.guard.Acquire(ctx, key)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("session", sessionID).Msg("in-flight guard unavailable, signing in anyway")
		case !acquired:
			return ports.SignInOutcome{}, domain.ErrSignInInProgress
		default:
			defer func() {
				// The request context may already be cancelled; release on a fresh one.
				if relErr := s.guard.Release(context.WithoutCancel(ctx), key); relErr != nil {
					s.log.Warn().Err(relErr).Str("session", sessionID).Msg("failed to release in-flight guard")
				}
			}()
		}
	}

	// 3. Authentication service call. The cause is logged, never surfaced.
	user, err := s.gateway.SignIn(ctx, creds.Username, creds.Password)
	if err == nil && (user == nil || len(user.Roles) == 0) {
		err = errEmptyRoles
	}
	if err != nil {
		s.log.Debug().Err(err).Str("username", creds.Username).Msg("sign-in rejected")
		s.audit.Record(domain.SignInAttempt{
			Username:  creds.Username,
			SessionID: sessionID,
			Outcome:   domain.AttemptRejected,
			Timestamp: s.now().UTC(),
		})
		return ports.SignInOutcome{}, domain.ErrAuthentication
	}

	record := user.Clone()
	primary, _ := record.PrimaryRole()

	// 4. SIGNIN is dispatched for every successful payload, recognised role
	// or not; only the destination depends on the role.
	store.Dispatch(session.SignIn(record))

	outcome := ports.SignInOutcome{
		Kind: primary.Kind(),
		Path: routing.RootPath,
		User: record,
	}
	if key, ok := routing.RoleRoutePath(outcome.Kind); ok {
		outcome.RouteKey = key
		outcome.Path = routing.RootPath + key
	}

	s.audit.Record(domain.SignInAttempt{
		Username:  creds.Username,
		SessionID: sessionID,
		Outcome:   domain.AttemptSignedIn,
		Role:      primary.Name,
		Timestamp: s.now().UTC(),
	})

	s.log.Info().
		Str("username", creds.Username).
		Str("role", primary.Name).
		Str("destination", outcome.Path).
		Msg("signed in")

	return outcome, nil
}
