package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/almacen/admin-console/internal/api/middleware"
	"github.com/almacen/admin-console/internal/api/view"
	"github.com/almacen/admin-console/internal/core/domain"
	"github.com/almacen/admin-console/internal/core/service"
	"github.com/almacen/admin-console/internal/infrastructure/memory"
	"github.com/almacen/admin-console/internal/pkg/validation"
)

type stubGateway struct {
	user  *domain.UserRecord
	err   error
	calls int
}

func (g *stubGateway) SignIn(_ context.Context, _, _ string) (*domain.UserRecord, error) {
	g.calls++
	return g.user, g.err
}

func userWithRole(role string) *domain.UserRecord {
	return &domain.UserRecord{
		Person: domain.Person{Name: "Ana", Surname: "Lopez"},
		Roles:  []domain.Role{{Name: role}},
	}
}

type testServer struct {
	e     *echo.Echo
	repo  *memory.SessionRepository
	codec *middleware.SessionCodec
}

// newTestServer wires the session-scoped routes the same way the router
// does, with memory storage and a stubbed gateway.
func newTestServer(t *testing.T, gw *stubGateway) *testServer {
	t.Helper()

	e := echo.New()
	e.Renderer = view.NewRenderer()

	repo := memory.NewSessionRepository(time.Hour)
	codec := middleware.NewSessionCodec("test-secret", time.Hour, false)
	auth := service.NewAuthenticator(gw, memory.NewInFlightGuard(), nil, validation.New(), zerolog.Nop())

	authHandler := NewAuthHandler(auth, repo, codec, zerolog.Nop())
	pageHandler := NewPageHandler()
	routeHandler := NewRouteHandler()

	g := e.Group("", middleware.Session(codec, repo, nil, zerolog.Nop()))
	g.POST("/signin", authHandler.SignInForm)
	g.POST("/api/auth/signin", authHandler.SignInAPI)
	g.GET("/api/session", authHandler.Session)
	g.GET("/api/routes", routeHandler.List)
	g.GET("/*", pageHandler.Show)

	return &testServer{e: e, repo: repo, codec: codec}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func formRequest(path, username, password string) *http.Request {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// sessionCookie returns the last session cookie set by the response, which
// is the signed one when a sign-in rotated the id.
func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.CookieName {
			found = c
		}
	}
	if found == nil {
		t.Fatalf("no session cookie in response")
	}
	return found
}
