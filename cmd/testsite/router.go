package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/multitier/pkg/dbconn"
	"github.com/dmitrymomot/multitier/pkg/httpserver"
	"github.com/dmitrymomot/multitier/pkg/proxy"
	"github.com/dmitrymomot/multitier/pkg/requestid"
	"github.com/dmitrymomot/multitier/pkg/telemetry"
	"github.com/dmitrymomot/multitier/pkg/tenant"
	"github.com/dmitrymomot/multitier/pkg/themes"
	"github.com/dmitrymomot/multitier/pkg/urls"
)

var healthPaths = []string{"/healthz", "/readyz"}

type routerDeps struct {
	service    string
	trustProxy bool
	resolver   *tenant.Resolver
	registrar  *dbconn.Registrar
	themes     *themes.Provider
	site       *site
	checks     []httpserver.Check
	log        *slog.Logger
}

// newRouter wires the site. Tenant resolution and prefix stripping are root
// middlewares: chi matches routes before running group middlewares, so the
// path must already be rewritten by then.
func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	if d.service != "" {
		r.Use(telemetry.Middleware(d.service))
	}
	r.Use(requestid.Middleware)
	if d.trustProxy {
		r.Use(proxy.Middleware)
	}
	r.Use(tenant.Middleware(d.resolver, d.registrar,
		tenant.WithLogger(d.log),
		tenant.WithSkipPaths(healthPaths...),
	))
	r.Use(urls.PrefixRoutes)

	r.Get("/healthz", httpserver.HealthCheckHandler(d.log))
	r.Get("/readyz", httpserver.HealthCheckHandler(d.log, d.checks...))
	r.Handle(strings.TrimSuffix(d.themes.StaticURL(""), "/")+"/*", d.themes.FileSystem(nil))
	r.Get("/", d.site.home)
	r.Get("/db", d.site.database)
	return r
}
