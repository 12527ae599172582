package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/almacen/admin-console/internal/api/view"
	"github.com/almacen/admin-console/internal/core/domain"
	"github.com/almacen/admin-console/internal/core/ports"
	"github.com/almacen/admin-console/internal/core/routing"
	"github.com/almacen/admin-console/internal/core/session"
	"github.com/almacen/admin-console/internal/pkg/metrics"
)

// TokenIssuer mints the session cookie after a successful sign-in.
type TokenIssuer interface {
	Issue(sid string) (string, error)
	Cookie(token string) *http.Cookie
}

type AuthHandler struct {
	auth     ports.Authenticator
	sessions ports.SessionRepository
	tokens   TokenIssuer
	log      zerolog.Logger
	newID    func() string
}

func NewAuthHandler(auth ports.Authenticator, sessions ports.SessionRepository, tokens TokenIssuer, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, tokens: tokens, log: log, newID: uuid.NewString}
}

type signInRequest struct {
	Username string `json:"username" example:"erielit"`
	Password string `json:"password" example:"secret"`
}

type signInResponse struct {
	// Destination is "admin", "client", "user" or empty for roles without a dashboard.
	Destination string              `json:"destination"`
	Path        string              `json:"path"`
	Token       string              `json:"token"`
	Session     domain.SessionState `json:"session"`
	Routes      []routing.Route     `json:"routes"`
}

type sessionResponse struct {
	Signed   bool               `json:"signed"`
	User     *domain.UserRecord `json:"user"`
	Roles    []domain.Role      `json:"roles"`
	Identity string             `json:"identity,omitempty"`
}

// SignInAPI signs the caller's session in.
//
// @Summary      Sign in
// @Description  Validates the credentials, calls the authentication service and signs the session in. The response carries the destination route for the primary role.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  signInResponse
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]any
// @Failure      429   {object}  map[string]string
// @Router       /api/auth/signin [post]
func (h *AuthHandler) SignInAPI(c echo.Context) error {
	sid, store, err := sessionFromContext(c)
	if err != nil {
		return err
	}

	var creds ports.Credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	out, err := h.signIn(c.Request().Context(), sid, store, creds)
	if err != nil {
		return err
	}

	token, err := h.commit(c, store)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, signInResponse{
		Destination: out.RouteKey,
		Path:        out.Path,
		Token:       token,
		Session:     store.State(),
		Routes:      treeFromContext(c, store).Routes,
	})
}

// SignInForm handles the sign-in page's form post. Failures re-render the
// page; success redirects to the role's dashboard.
func (h *AuthHandler) SignInForm(c echo.Context) error {
	sid, store, err := sessionFromContext(c)
	if err != nil {
		return err
	}

	var creds ports.Credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	page := view.PageData{
		Title:       "Sign in",
		CurrentPath: routing.RootPath,
		Form:        view.SignInForm{Username: creds.Username},
	}

	out, err := h.signIn(c.Request().Context(), sid, store, creds)
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		page.Form.Errors = ve.Fields
		return c.Render(http.StatusUnprocessableEntity, "signin.html", page)
	case errors.Is(err, domain.ErrAuthentication):
		page.Flash = &view.FlashMessage{Type: "error", Title: "Error", Message: domain.ErrAuthentication.Error()}
		return c.Render(http.StatusUnauthorized, "signin.html", page)
	case errors.Is(err, domain.ErrSignInInProgress):
		page.Flash = &view.FlashMessage{Type: "info", Title: "Please wait", Message: "a sign-in for this session is already running"}
		return c.Render(http.StatusConflict, "signin.html", page)
	case err != nil:
		return err
	}

	if _, err := h.commit(c, store); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, out.Path)
}

// Session returns the caller's session state.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /api/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	_, store, err := sessionFromContext(c)
	if err != nil {
		return err
	}

	state := store.State()
	return c.JSON(http.StatusOK, sessionResponse{
		Signed:   state.Signed,
		User:     state.User,
		Roles:    state.Roles,
		Identity: state.Identity(),
	})
}

func (h *AuthHandler) signIn(ctx context.Context, sid string, store *session.Store, creds ports.Credentials) (ports.SignInOutcome, error) {
	start := time.Now()
	out, err := h.auth.SignIn(ctx, sid, store, creds)
	metrics.SignInDuration.Observe(time.Since(start).Seconds())
	metrics.SignInAttemptsTotal.WithLabelValues(outcomeLabel(err)).Inc()
	return out, err
}

// commit moves the signed state to a fresh session id and hands out its
// cookie. The id issued to the anonymous visitor is never authenticated.
func (h *AuthHandler) commit(c echo.Context, store *session.Store) (string, error) {
	sid := h.newID()
	if err := h.sessions.Save(c.Request().Context(), sid, store.State()); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	token, err := h.tokens.Issue(sid)
	if err != nil {
		return "", fmt.Errorf("issue session token: %w", err)
	}
	c.SetCookie(h.tokens.Cookie(token))
	return token, nil
}

func outcomeLabel(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return string(domain.AttemptSignedIn)
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, domain.ErrSignInInProgress):
		return "in_progress"
	default:
		return string(domain.AttemptRejected)
	}
}
