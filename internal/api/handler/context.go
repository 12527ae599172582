package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/almacen/admin-console/internal/api/middleware"
	"github.com/almacen/admin-console/internal/core/routing"
	"github.com/almacen/admin-console/internal/core/session"
)

// sessionFromContext returns the session injected by the Session middleware.
// Its absence means the route was registered outside the session group.
func sessionFromContext(c echo.Context) (string, *session.Store, error) {
	sid, store, ok := middleware.SessionFrom(c)
	if !ok {
		return "", nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return sid, store, nil
}

// treeFromContext prefers the live tree bound by the middleware and falls
// back to resolving the store's current state.
func treeFromContext(c echo.Context, store *session.Store) routing.Tree {
	if live, ok := middleware.RoutesFrom(c); ok {
		return live.Tree()
	}
	return routing.Resolve(store.State())
}
