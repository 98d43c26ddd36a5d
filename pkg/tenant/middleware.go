package tenant

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/multitier/pkg/logger"
)

// Middleware resolves the tenant of every request and binds it to the
// request context for the duration of the handler. The slot is cleared
// when the handler returns, panics or the client goes away.
func Middleware(resolver *Resolver, registrar Registrar, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		errorHandler: defaultErrorHandler,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	hooks := Hooks{Resolver: resolver, Registrar: registrar}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			r, _, err := hooks.OnRequest(r)
			defer hooks.OnRequestEnd(r)
			if err != nil {
				level := slog.LevelError
				if errors.Is(err, ErrTenantNotFound) || errors.Is(err, ErrInactiveTenant) {
					level = slog.LevelDebug
				}
				cfg.logger.Log(r.Context(), level, "tenant resolution failed",
					logger.Host(r.Host),
					logger.Error(err),
				)
				cfg.errorHandler(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireTenant creates middleware that ensures a tenant is present in the context.
// Use it on routes mounted under a WithSkipPaths prefix that still need a tenant.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
