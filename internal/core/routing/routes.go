// Package routing resolves the navigable route tree from session state.
//
// Resolve is a pure function: it performs no I/O and never mutates the
// session. Live recomputes the tree whenever a session.Store changes.
package routing

import (
	"strings"

	"github.com/almacen/admin-console/internal/core/domain"
)

const (
	RootPath  = "/"
	SplatPath = "/*"

	GreetingText = "Welcome"
	NotFoundText = "404 not found"
)

// ViewKind tells the rendering layer what a route shows.
type ViewKind string

const (
	ViewSignIn   ViewKind = "sign_in"
	ViewGreeting ViewKind = "greeting"
	ViewIdentity ViewKind = "identity"
	ViewNotFound ViewKind = "not_found"
)

// View is the renderable content of a route.
type View struct {
	Kind ViewKind `json:"kind"`
	Text string   `json:"text,omitempty"`
}

// Route is one {path, element} entry of the tree. Child paths are relative
// to their parent.
type Route struct {
	Path     string  `json:"path"`
	View     View    `json:"view"`
	Children []Route `json:"children,omitempty"`
}

// Tree is the full set of navigable routes for a session.
type Tree struct {
	Routes []Route `json:"routes"`
}

// roleRoutePaths maps every RoleKind to its nested route path. RoleUnknown
// has no route.
var roleRoutePaths = map[domain.RoleKind]string{
	domain.RoleAdmin:   "admin",
	domain.RoleClient:  "client",
	domain.RoleUser:    "user",
	domain.RoleUnknown: "",
}

// RoleRoutePath returns the nested route path for a role kind, or false for
// roles that get no dashboard.
func RoleRoutePath(kind domain.RoleKind) (string, bool) {
	p, ok := roleRoutePaths[kind]
	if !ok || p == "" {
		return "", false
	}
	return p, true
}

// Resolve builds the route tree for state.
func Resolve(state domain.SessionState) Tree {
	notFound := Route{Path: SplatPath, View: View{Kind: ViewNotFound, Text: NotFoundText}}

	if !state.Signed {
		return Tree{Routes: []Route{
			{Path: RootPath, View: View{Kind: ViewSignIn}},
			notFound,
		}}
	}

	root := Route{Path: RootPath, View: View{Kind: ViewGreeting, Text: GreetingText}}
	if child, ok := roleRoute(state); ok {
		root.Children = []Route{child}
	}

	return Tree{Routes: []Route{root, notFound}}
}

func roleRoute(state domain.SessionState) (Route, bool) {
	primary, ok := state.PrimaryRole()
	if !ok || state.User == nil {
		return Route{}, false
	}

	path, ok := RoleRoutePath(primary.Kind())
	if !ok {
		return Route{}, false
	}

	return Route{
		Path: path,
		View: View{Kind: ViewIdentity, Text: domain.FormatIdentity(state.User.Person, primary)},
	}, true
}

// Match is the result of matching a request path against a Tree.
type Match struct {
	// Chain holds the matched routes from outermost to innermost.
	Chain []Route
}

// Leaf returns the innermost matched route.
func (m Match) Leaf() (Route, bool) {
	if len(m.Chain) == 0 {
		return Route{}, false
	}
	return m.Chain[len(m.Chain)-1], true
}

// NotFound reports whether the path fell through to the catch-all (or
// matched nothing at all).
func (m Match) NotFound() bool {
	leaf, ok := m.Leaf()
	return !ok || leaf.View.Kind == ViewNotFound
}

// Match finds the route chain for path. Static routes always win over the
// splat route; segments compare case-insensitively.
func (t Tree) Match(path string) Match {
	segs := splitPath(path)

	for _, r := range t.Routes {
		if r.Path == SplatPath {
			continue
		}
		if chain, ok := matchRoute(r, segs); ok {
			return Match{Chain: chain}
		}
	}

	for _, r := range t.Routes {
		if r.Path == SplatPath {
			return Match{Chain: []Route{r}}
		}
	}
	return Match{}
}

func matchRoute(r Route, segs []string) ([]Route, bool) {
	own := splitPath(r.Path)
	if len(segs) < len(own) {
		return nil, false
	}
	for i, s := range own {
		if !strings.EqualFold(s, segs[i]) {
			return nil, false
		}
	}

	rest := segs[len(own):]
	if len(rest) == 0 {
		return []Route{r}, true
	}

	for _, child := range r.Children {
		if chain, ok := matchRoute(child, rest); ok {
			return append([]Route{r}, chain...), true
		}
	}
	return nil, false
}

func splitPath(p string) []string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
