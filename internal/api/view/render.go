// Package view renders the console's HTML pages: the sign-in screen, the
// authenticated layout shell and the not-found page.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/labstack/echo/v4"

	"github.com/almacen/admin-console/internal/core/routing"
)

//go:embed templates/*.html
var templatesFS embed.FS

// PageData contains common data for all pages.
type PageData struct {
	Title       string
	CurrentPath string
	Signed      bool
	Identity    string
	Flash       *FlashMessage
	Form        SignInForm
	// Chain is the matched route chain, outermost first.
	Chain []routing.Route
	Nav   []NavLink
}

// FlashMessage represents a flash message.
type FlashMessage struct {
	Type    string // "error", "info"
	Title   string
	Message string
}

// SignInForm carries the values and field errors of the sign-in form.
type SignInForm struct {
	Username string
	Errors   map[string]string
}

// NavLink is one sidebar entry of the layout shell.
type NavLink struct {
	Label  string
	Href   string
	Active bool
}

// Renderer implements echo.Renderer. Each page template is parsed into a
// clone of the base template so "content" blocks never collide.
type Renderer struct {
	base    *template.Template
	pages   fs.FS
	funcMap template.FuncMap
}

// NewRenderer parses the base layout. It panics on a malformed embedded
// template, which can only happen at build time.
func NewRenderer() *Renderer {
	funcs := template.FuncMap{
		"viewText": func(r routing.Route) string { return r.View.Text },
		"isKind":   func(r routing.Route, kind string) bool { return string(r.View.Kind) == kind },
	}
	base := template.Must(template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/base.html"))
	return &Renderer{base: base, pages: templatesFS, funcMap: funcs}
}

// Render satisfies echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, err := r.base.Clone()
	if err != nil {
		return fmt.Errorf("clone template: %w", err)
	}

	path := "templates/" + name
	if _, err := tmpl.ParseFS(r.pages, path); err != nil {
		return fmt.Errorf("parse page template %s: %w", path, err)
	}

	return tmpl.ExecuteTemplate(w, "base", data)
}

// Sidebar returns the layout shell's navigation links, marking the one that
// matches currentPath.
func Sidebar(currentPath string, roleRoute string) []NavLink {
	links := []NavLink{{Label: "Home", Href: routing.RootPath}}
	if roleRoute != "" {
		links = append(links, NavLink{Label: "Dashboard", Href: routing.RootPath + roleRoute})
	}
	for i := range links {
		links[i].Active = links[i].Href == currentPath
	}
	return links
}
