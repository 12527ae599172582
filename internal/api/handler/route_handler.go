package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/almacen/admin-console/internal/core/routing"
)

type RouteHandler struct{}

func NewRouteHandler() *RouteHandler {
	return &RouteHandler{}
}

type routesResponse struct {
	Routes []routing.Route `json:"routes"`
	// Match is only present when the path query parameter is set.
	Match *matchResponse `json:"match,omitempty"`
}

type matchResponse struct {
	Path     string          `json:"path"`
	Chain    []routing.Route `json:"chain"`
	NotFound bool            `json:"not_found"`
}

// List returns the session's resolved route tree.
//
// @Summary      Route tree
// @Description  Returns the routes the current session may navigate. With ?path= the matched chain is included.
// @Tags         routes
// @Produce      json
// @Param        path  query     string  false  "Path to match against the tree"
// @Success      200   {object}  routesResponse
// @Router       /api/routes [get]
func (h *RouteHandler) List(c echo.Context) error {
	_, store, err := sessionFromContext(c)
	if err != nil {
		return err
	}

	tree := treeFromContext(c, store)
	resp := routesResponse{Routes: tree.Routes}

	if path := c.QueryParam("path"); path != "" {
		m := tree.Match(path)
		resp.Match = &matchResponse{Path: path, Chain: m.Chain, NotFound: m.NotFound()}
	}

	return c.JSON(http.StatusOK, resp)
}
