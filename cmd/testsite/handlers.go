package main

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/multitier/pkg/dbconn"
	"github.com/dmitrymomot/multitier/pkg/logger"
	"github.com/dmitrymomot/multitier/pkg/tenant"
	"github.com/dmitrymomot/multitier/pkg/themes"
	"github.com/dmitrymomot/multitier/pkg/urls"
)

type site struct {
	urls      *urls.Builder
	themes    *themes.Provider
	load      func(context.Context, string) (*template.Template, error)
	pools     *dbconn.Pools
	registrar *dbconn.Registrar
	log       *slog.Logger
}

type homePage struct {
	Tenant       *tenant.Tenant
	ActualDomain string
	Home         string
	StaticCSS    string
	Themes       []string
}

func (s *site) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t := tenant.MustFromContext(ctx)
	page := homePage{
		Tenant:       t,
		ActualDomain: s.urls.ActualDomain(ctx, r),
		Home:         s.urls.AbsoluteURI(ctx, "/", urls.WithRequest(r)),
		StaticCSS:    urls.Path(ctx, s.themes.StaticURL("css/site.css")),
		Themes:       s.themes.Themes(ctx),
	}

	tmpl, err := s.load(ctx, "index.html")
	if err != nil {
		tmpl = fallbackHome
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, page); err != nil {
		s.log.ErrorContext(ctx, "render home page", logger.Error(err))
	}
}

var fallbackHome = template.Must(template.New("home").Parse(
	`<!doctype html><title>{{.Tenant.PrintableName}}</title>` +
		`<link rel="stylesheet" href="{{.StaticCSS}}">` +
		`<h1>{{.Tenant.PrintableName}}</h1><p>Served at {{.ActualDomain}}. <a href="{{.Home}}">Home</a></p>`,
))

// database pings the tenant database registered for this request.
func (s *site) database(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	name := s.registrar.DatabaseName(tenant.MustFromContext(ctx))
	if err := s.pools.Ping(ctx, name); err != nil {
		s.log.WarnContext(ctx, "tenant database unavailable", logger.Database(name), logger.Error(err))
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	_, _ = w.Write([]byte("ok"))
}
