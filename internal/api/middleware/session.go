package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/almacen/admin-console/internal/core/domain"
	"github.com/almacen/admin-console/internal/core/ports"
	"github.com/almacen/admin-console/internal/core/routing"
	"github.com/almacen/admin-console/internal/core/session"
)

const (
	CookieName = "almacen_session"

	ctxSessionID    = "session_id"
	ctxSessionStore = "session_store"
	ctxRoutes       = "routes"
)

var errInvalidSessionToken = errors.New("invalid session token")

// SessionCodec issues and verifies the signed session token carried by the
// session cookie (or an Authorization: Bearer header for API clients).
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionCodec(secret string, ttl time.Duration, secureCookie bool) *SessionCodec {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionCodec{secret: []byte(secret), ttl: ttl, secure: secureCookie, now: time.Now}
}

// Issue signs a token for session id sid.
func (sc *SessionCodec) Issue(sid string) (string, error) {
	now := sc.now()
	claims := jwt.MapClaims{
		"sid": sid,
		"iat": now.Unix(),
		"exp": now.Add(sc.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sc.secret)
}

// Parse returns the session id of a valid token.
func (sc *SessionCodec) Parse(token string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return sc.secret, nil
	}, jwt.WithTimeFunc(sc.now))
	if err != nil || !tkn.Valid {
		return "", errInvalidSessionToken
	}

	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", errInvalidSessionToken
	}
	return sid, nil
}

// Cookie wraps token in the HttpOnly session cookie.
func (sc *SessionCodec) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sc.ttl.Seconds()),
		HttpOnly: true,
		Secure:   sc.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Session loads the caller's session state and injects the session id, a
// session.Store and a live route tree into the echo context. Requests
// without a valid token get a fresh id, an empty unsigned state and a cookie
// carrying that id.
func Session(codec *SessionCodec, repo ports.SessionRepository, onResolve func(domain.SessionState), log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if token := tokenFromRequest(c.Request()); token != "" {
				if parsed, err := codec.Parse(token); err == nil {
					sid = parsed
				}
			}

			state := domain.SessionState{}
			if sid != "" {
				loaded, err := repo.Load(c.Request().Context(), sid)
				switch {
				case err == nil:
					state = loaded
				case errors.Is(err, domain.ErrSessionNotFound):
				default:
					log.Warn().Err(err).Str("session", sid).Msg("session load failed, continuing unsigned")
				}
			} else {
				// Anonymous visitors get their id up front so every submission
				// from the same browser shares one in-flight guard key.
				sid = uuid.NewString()
				token, err := codec.Issue(sid)
				if err != nil {
					return fmt.Errorf("issue session token: %w", err)
				}
				c.SetCookie(codec.Cookie(token))
			}

			store := session.NewStore(state)
			live := routing.Bind(store, onResolve)
			defer live.Close()

			c.Set(ctxSessionID, sid)
			c.Set(ctxSessionStore, store)
			c.Set(ctxRoutes, live)

			return next(c)
		}
	}
}

// SessionFrom returns what the Session middleware injected.
func SessionFrom(c echo.Context) (string, *session.Store, bool) {
	sid, _ := c.Get(ctxSessionID).(string)
	store, _ := c.Get(ctxSessionStore).(*session.Store)
	if sid == "" || store == nil {
		return "", nil, false
	}
	return sid, store, true
}

// RoutesFrom returns the live route tree bound to the request's session.
func RoutesFrom(c echo.Context) (*routing.Live, bool) {
	live, ok := c.Get(ctxRoutes).(*routing.Live)
	return live, ok
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.SplitN(r.Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
