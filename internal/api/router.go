package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/almacen/admin-console/internal/api/docs"
	"github.com/almacen/admin-console/internal/api/handler"
	"github.com/almacen/admin-console/internal/api/middleware"
	"github.com/almacen/admin-console/internal/api/view"
	"github.com/almacen/admin-console/internal/core/domain"
	"github.com/almacen/admin-console/internal/core/ports"
	"github.com/almacen/admin-console/internal/pkg/metrics"
	"github.com/almacen/admin-console/internal/pkg/validation"
)

// Deps are the collaborators NewRouter wires into handlers.
type Deps struct {
	Log           zerolog.Logger
	Authenticator ports.Authenticator
	Sessions      ports.SessionRepository
	Codec         *middleware.SessionCodec
	// Health lists the backing services probed by /health/ready.
	Health map[string]handler.DependencyCheck

	// SignInRate is the sustained sign-in requests per second per client IP.
	SignInRate  float64
	SignInBurst int

	// Registerer and Gatherer back the HTTP metrics; a fresh registry is
	// used when nil.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = view.NewRenderer()
	e.Validator = validation.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	if d.Registerer == nil || d.Gatherer == nil {
		reg := prometheus.NewRegistry()
		d.Registerer, d.Gatherer = reg, reg
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.Secure())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "admin_console",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	session := middleware.Session(d.Codec, d.Sessions, observeResolution, d.Log)
	signInLimit := signInLimiter(d.SignInRate, d.SignInBurst)

	authHandler := handler.NewAuthHandler(d.Authenticator, d.Sessions, d.Codec, d.Log)
	pageHandler := handler.NewPageHandler()
	routeHandler := handler.NewRouteHandler()

	// --- Health probes and metrics (no session required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Health)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))

	// --- JSON API ---
	apiGroup := e.Group("/api", session)
	apiGroup.POST("/auth/signin", authHandler.SignInAPI, signInLimit)
	apiGroup.GET("/session", authHandler.Session)
	apiGroup.GET("/routes", routeHandler.List)

	// --- API docs (admin sessions only) ---
	docs := e.Group("/swagger", session, middleware.RequireRole(domain.RoleAdmin))
	docs.GET("/*", echoSwagger.WrapHandler)

	// --- Pages ---
	e.POST("/signin", authHandler.SignInForm, session, signInLimit)
	e.GET("/*", pageHandler.Show, session)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

// signInLimiter throttles sign-in submissions per client IP.
func signInLimiter(perSecond float64, burst int) echo.MiddlewareFunc {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = 5
	}

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many sign-in attempts, try again later")
		},
	})
}

func observeResolution(state domain.SessionState) {
	label := "anonymous"
	if state.Signed {
		primary, _ := state.PrimaryRole()
		label = primary.Kind().String()
	}
	metrics.RouteResolutionsTotal.WithLabelValues(label).Inc()
}
