package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/almacen/admin-console/internal/core/domain"
)

// RequireRole lets through signed sessions whose primary role is one of
// allowed. Must run after Session.
func RequireRole(allowed ...domain.RoleKind) echo.MiddlewareFunc {
	set := make(map[domain.RoleKind]struct{}, len(allowed))
	for _, k := range allowed {
		set[k] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			_, store, ok := SessionFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
			}

			state := store.State()
			if !state.Signed {
				return echo.NewHTTPError(http.StatusUnauthorized, "sign in required")
			}

			primary, _ := state.PrimaryRole()
			if _, ok := set[primary.Kind()]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
