package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/almacen/admin-console/internal/api/view"
	"github.com/almacen/admin-console/internal/core/routing"
)

// PageHandler renders whatever the session's route tree resolves a path to.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Show handles GET /*.
func (h *PageHandler) Show(c echo.Context) error {
	_, store, err := sessionFromContext(c)
	if err != nil {
		return err
	}

	path := c.Request().URL.Path
	match := treeFromContext(c, store).Match(path)
	if match.NotFound() {
		return c.Render(http.StatusNotFound, "notfound.html", view.PageData{Title: "Not found", CurrentPath: path})
	}

	leaf, _ := match.Leaf()
	if leaf.View.Kind == routing.ViewSignIn {
		return c.Render(http.StatusOK, "signin.html", view.PageData{Title: "Sign in", CurrentPath: path})
	}

	state := store.State()
	roleRoute := ""
	if primary, ok := state.PrimaryRole(); ok {
		roleRoute, _ = routing.RoleRoutePath(primary.Kind())
	}

	return c.Render(http.StatusOK, "dashboard.html", view.PageData{
		Title:       "Dashboard",
		CurrentPath: path,
		Signed:      state.Signed,
		Identity:    state.Identity(),
		Chain:       match.Chain,
		Nav:         view.Sidebar(path, roleRoute),
	})
}
