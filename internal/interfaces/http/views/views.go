// Package views holds the server-rendered pages. Every page template is
// parsed together with the shared layout and partials, and gin renders it
// through Renderer.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/render"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
)

//go:embed templates static
var files embed.FS

const layoutName = "layout"

// Flash is the status banner set by a redirect after a form POST
type Flash struct {
	Status  string
	Message string
}

// IsError reports whether the banner shows a failure
func (f Flash) IsError() bool {
	return f.Status == "error"
}

// Page is the view model every template receives
type Page struct {
	Title       string
	Active      string
	User        *identity.Actor
	Flash       Flash
	FormToken   string
	Query       url.Values
	UnreadCount int64
	RequestID   string
	PDF         bool
	Data        any
}

// Can reports whether the signed-in user holds one of the roles
func (p Page) Can(roles ...string) bool {
	if p.User == nil {
		return false
	}
	for _, r := range roles {
		if string(p.User.Role) == r {
			return true
		}
	}
	return false
}

// Renderer implements gin's render.HTMLRender over the embedded templates
type Renderer struct {
	fsys   fs.FS
	reload bool

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// Option configures the Renderer
type Option func(*Renderer)

// WithReload parses templates on every render, for editing pages without a restart
func WithReload(reload bool) Option {
	return func(r *Renderer) {
		r.reload = reload
	}
}

// WithFS replaces the embedded templates, mainly for tests
func WithFS(fsys fs.FS) Option {
	return func(r *Renderer) {
		r.fsys = fsys
	}
}

// New parses every page under templates/pages
func New(opts ...Option) (*Renderer, error) {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		return nil, err
	}
	r := &Renderer{fsys: sub}
	for _, opt := range opts {
		opt(r)
	}
	pages, err := r.parseAll()
	if err != nil {
		return nil, err
	}
	r.pages = pages
	return r, nil
}

// Static serves the css and script files
func Static() http.FileSystem {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Names lists the parsed pages
func (r *Renderer) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.pages))
	for name := range r.pages {
		names = append(names, name)
	}
	return names
}

// Instance implements render.HTMLRender
func (r *Renderer) Instance(name string, data any) render.Render {
	tmpl, err := r.lookup(name)
	if err != nil {
		return render.HTML{Template: errorTemplate(err), Name: layoutName, Data: data}
	}
	return render.HTML{Template: tmpl, Name: layoutName, Data: data}
}

func (r *Renderer) lookup(name string) (*template.Template, error) {
	if r.reload {
		return r.parse(name)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	tmpl, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("views: unknown page %q", name)
	}
	return tmpl, nil
}

func (r *Renderer) parseAll() (map[string]*template.Template, error) {
	entries, err := fs.ReadDir(r.fsys, "pages")
	if err != nil {
		return nil, fmt.Errorf("views: read pages: %w", err)
	}
	pages := make(map[string]*template.Template, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".html")
		if e.IsDir() || !ok {
			continue
		}
		tmpl, err := r.parse(name)
		if err != nil {
			return nil, err
		}
		pages[name] = tmpl
	}
	return pages, nil
}

func (r *Renderer) parse(name string) (*template.Template, error) {
	tmpl, err := template.New(layoutName).Funcs(FuncMap()).ParseFS(r.fsys,
		"layout.html",
		"partials/*.html",
		path.Join("pages", name+".html"),
	)
	if err != nil {
		return nil, fmt.Errorf("views: parse %s: %w", name, err)
	}
	return tmpl, nil
}

func errorTemplate(err error) *template.Template {
	reason := func() string { return err.Error() }
	return template.Must(template.New(layoutName).Funcs(template.FuncMap{"reason": reason}).Parse(`{{reason}}`))
}
