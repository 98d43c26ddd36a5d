package themes

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dmitrymomot/multitier/pkg/logger"
	"github.com/dmitrymomot/multitier/pkg/tenant"
)

// Config holds the theme directory settings.
type Config struct {
	TemplateDirs []string `env:"THEMES_DIRS" envSeparator:","`
	StaticDirs   []string `env:"STATIC_DIRS" envSeparator:","`
	StaticURL    string   `env:"STATIC_URL" envDefault:"/static/"`
}

// Provider computes per-tenant search paths.
type Provider struct {
	templateDirs []string
	staticDirs   []string
	staticURL    string
	staticSubdir string
	store        tenant.Store
	logger       *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithStore enables the base tenant fallback.
func WithStore(store tenant.Store) Option {
	return func(p *Provider) { p.store = store }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

func NewProvider(cfg Config, opts ...Option) *Provider {
	staticURL := cfg.StaticURL
	if staticURL == "" {
		staticURL = "/static/"
	}
	if !strings.HasSuffix(staticURL, "/") {
		staticURL += "/"
	}
	p := &Provider{
		templateDirs: cfg.TemplateDirs,
		staticDirs:   cfg.StaticDirs,
		staticURL:    staticURL,
		staticSubdir: strings.Trim(staticURL, "/"),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logger.Component("themes"))
	return p
}

// Themes returns the theme names searched for the active tenant, most
// specific first.
func (p *Provider) Themes(ctx context.Context) []string {
	t, ok := tenant.FromContext(ctx)
	if !ok {
		p.logger.WarnContext(ctx, "theme lookup without an active tenant")
		return nil
	}
	themes := t.Themes()
	if t.BaseID == nil || p.store == nil {
		return themes
	}
	base, err := tenant.Base(ctx, p.store, t)
	if err != nil {
		p.logger.WarnContext(ctx, "cannot load base tenant themes",
			logger.Tenant(t.Slug),
			logger.Error(err),
		)
		return themes
	}
	for _, name := range base.Themes() {
		if !slices.Contains(themes, name) {
			themes = append(themes, name)
		}
	}
	return themes
}

// TemplateDirs returns <root>/<theme>/templates for every root and theme.
func (p *Provider) TemplateDirs(ctx context.Context) []string {
	return p.dirs(p.templateDirs, p.Themes(ctx), "templates")
}

// StaticDirs returns <root>/<theme>/<static url path> for every root and theme.
func (p *Provider) StaticDirs(ctx context.Context) []string {
	return p.dirs(p.staticDirs, p.Themes(ctx), p.staticSubdir)
}

func (p *Provider) dirs(roots, themes []string, sub string) []string {
	out := make([]string, 0, len(roots)*len(themes))
	for _, root := range roots {
		for _, theme := range themes {
			out = append(out, filepath.Join(root, theme, sub))
		}
	}
	return out
}

// FindTemplate returns the first existing template file named name.
// The boolean is false when no active tenant is set, the name escapes the
// theme directory, or no directory holds the file.
func (p *Provider) FindTemplate(ctx context.Context, name string) (string, bool) {
	return find(p.TemplateDirs(ctx), name)
}

// FindStatic returns the first existing static file named name.
func (p *Provider) FindStatic(ctx context.Context, name string) (string, bool) {
	return find(p.StaticDirs(ctx), name)
}

func find(dirs []string, name string) (string, bool) {
	name = filepath.FromSlash(strings.TrimPrefix(name, "/"))
	if !filepath.IsLocal(name) {
		return "", false
	}
	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// StaticURL returns the public URL of the static file name.
func (p *Provider) StaticURL(name string) string {
	return p.staticURL + strings.TrimPrefix(path.Clean("/"+name), "/")
}

// FileSystem serves static files from the active tenant's theme
// directories, then from fallback. Mount it under the static URL.
func (p *Provider) FileSystem(fallback fs.FS) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, p.staticURL)
		name = strings.TrimPrefix(name, "/")
		if file, ok := p.FindStatic(r.Context(), name); ok {
			http.ServeFile(w, r, file)
			return
		}
		if fallback == nil || !fs.ValidPath(name) {
			http.NotFound(w, r)
			return
		}
		http.ServeFileFS(w, r, fallback, name)
	})
}

// Loader returns a function that parses the first matching template for
// the active tenant.
func (p *Provider) Loader() func(ctx context.Context, name string) (*template.Template, error) {
	return func(ctx context.Context, name string) (*template.Template, error) {
		file, ok := p.FindTemplate(ctx, name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		tmpl, err := template.ParseFiles(file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		return tmpl, nil
	}
}
