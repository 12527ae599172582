package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/almacen/admin-console/internal/core/domain"
	"github.com/almacen/admin-console/internal/core/routing"
	"github.com/almacen/admin-console/internal/infrastructure/memory"
)

type failingRepo struct{}

func (failingRepo) Load(context.Context, string) (domain.SessionState, error) {
	return domain.SessionState{}, errors.New("redis down")
}

func (failingRepo) Save(context.Context, string, domain.SessionState) error { return nil }

func signedAdmin() domain.SessionState {
	rec := domain.UserRecord{
		Person: domain.Person{Name: "Ana", Surname: "Lopez"},
		Roles:  []domain.Role{{Name: domain.AdminRoleName}},
	}
	return domain.SessionState{Signed: true, User: &rec, Roles: rec.Roles}
}

func TestSessionCodec_RoundTrip(t *testing.T) {
	codec := NewSessionCodec("secret", time.Hour, true)

	token, err := codec.Issue("sid-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	sid, err := codec.Parse(token)
	if err != nil || sid != "sid-1" {
		t.Fatalf("parse: sid=%q err=%v", sid, err)
	}

	cookie := codec.Cookie(token)
	if cookie.Name != CookieName || !cookie.HttpOnly || !cookie.Secure || cookie.MaxAge != 3600 {
		t.Fatalf("unexpected cookie: %+v", cookie)
	}
}

func TestSessionCodec_Rejects(t *testing.T) {
	codec := NewSessionCodec("secret", time.Hour, false)

	other, _ := NewSessionCodec("other", time.Hour, false).Issue("sid")
	if _, err := codec.Parse(other); err == nil {
		t.Fatalf("expected signature mismatch to be rejected")
	}

	expired := NewSessionCodec("secret", time.Hour, false)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.Issue("sid")
	if _, err := codec.Parse(old); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}

	noSID, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if _, err := codec.Parse(noSID); err == nil {
		t.Fatalf("expected token without sid to be rejected")
	}

	if _, err := codec.Parse("not-a-token"); err == nil {
		t.Fatalf("expected garbage to be rejected")
	}
}

func runSession(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (string, domain.SessionState, routing.Tree) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var (
		sid   string
		state domain.SessionState
		tree  routing.Tree
	)
	handler := mw(func(c echo.Context) error {
		id, store, ok := SessionFrom(c)
		if !ok {
			t.Fatalf("session not injected")
		}
		live, ok := RoutesFrom(c)
		if !ok {
			t.Fatalf("routes not injected")
		}
		sid, state, tree = id, store.State(), live.Tree()
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return sid, state, tree
}

func TestSession_NoCookieStartsUnsigned(t *testing.T) {
	codec := NewSessionCodec("secret", time.Hour, false)
	mw := Session(codec, memory.NewSessionRepository(time.Hour), nil, zerolog.Nop())

	sid, state, tree := runSession(t, mw, httptest.NewRequest(http.MethodGet, "/", nil))
	if sid == "" {
		t.Fatalf("expected a fresh session id")
	}
	if state.Signed {
		t.Fatalf("expected unsigned state")
	}
	if tree.Routes[0].View.Kind != routing.ViewSignIn {
		t.Fatalf("expected sign-in tree")
	}
}

func TestSession_CookieLoadsState(t *testing.T) {
	codec := NewSessionCodec("secret", time.Hour, false)
	repo := memory.NewSessionRepository(time.Hour)
	_ = repo.Save(context.Background(), "sid-42", signedAdmin())

	token, _ := codec.Issue("sid-42")
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(codec.Cookie(token))

	resolved := 0
	mw := Session(codec, repo, func(domain.SessionState) { resolved++ }, zerolog.Nop())
	sid, state, tree := runSession(t, mw, req)

	if sid != "sid-42" || !state.Signed {
		t.Fatalf("expected stored session, got sid=%q state=%+v", sid, state)
	}
	if len(tree.Routes[0].Children) != 1 || tree.Routes[0].Children[0].Path != "admin" {
		t.Fatalf("expected admin route, got %+v", tree.Routes[0].Children)
	}
	if resolved != 1 {
		t.Fatalf("expected one resolution, got %d", resolved)
	}
}

func TestSession_BearerHeader(t *testing.T) {
	codec := NewSessionCodec("secret", time.Hour, false)
	repo := memory.NewSessionRepository(time.Hour)
	_ = repo.Save(context.Background(), "api-sid", signedAdmin())

	token, _ := codec.Issue("api-sid")
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)

	sid, state, _ := runSession(t, Session(codec, repo, nil, zerolog.Nop()), req)
	if sid != "api-sid" || !state.Signed {
		t.Fatalf("expected bearer session, got sid=%q", sid)
	}
}

func TestSession_InvalidCookieGetsFreshSession(t *testing.T) {
	codec := NewSessionCodec("secret", time.Hour, false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "tampered"})

	sid, state, _ := runSession(t, Session(codec, memory.NewSessionRepository(time.Hour), nil, zerolog.Nop()), req)
	if sid == "" || state.Signed {
		t.Fatalf("expected fresh unsigned session, got sid=%q state=%+v", sid, state)
	}
}

func TestSession_RepositoryErrorContinuesUnsigned(t *testing.T) {
	codec := NewSessionCodec("secret", time.Hour, false)
	token, _ := codec.Issue("sid")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(codec.Cookie(token))

	sid, state, _ := runSession(t, Session(codec, failingRepo{}, nil, zerolog.Nop()), req)
	if sid != "sid" || state.Signed {
		t.Fatalf("expected unsigned state with original sid, got sid=%q state=%+v", sid, state)
	}
}

func TestSession_FreshSessionGetsCookie(t *testing.T) {
	codec := NewSessionCodec("secret", time.Hour, false)
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	var sid string
	mw := Session(codec, memory.NewSessionRepository(time.Hour), nil, zerolog.Nop())
	err := mw(func(c echo.Context) error {
		sid, _, _ = SessionFrom(c)
		return nil
	})(c)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("expected one session cookie, got %+v", cookies)
	}
	parsed, err := codec.Parse(cookies[0].Value)
	if err != nil || parsed != sid {
		t.Fatalf("cookie carries %q (err=%v), context has %q", parsed, err, sid)
	}
}

func TestSession_ValidCookieNotReissued(t *testing.T) {
	codec := NewSessionCodec("secret", time.Hour, false)
	token, _ := codec.Issue("sid-7")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(codec.Cookie(token))

	e := echo.New()
	rec := httptest.NewRecorder()
	mw := Session(codec, memory.NewSessionRepository(time.Hour), nil, zerolog.Nop())
	if err := mw(func(echo.Context) error { return nil })(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if n := len(rec.Result().Cookies()); n != 0 {
		t.Fatalf("expected no new cookie, got %d", n)
	}
}
