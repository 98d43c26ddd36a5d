package urls

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/multitier/pkg/tenant"
)

// PrefixRoutes removes the active tenant path prefix from the request path
// so routes are matched without it. It must run after tenant.Middleware and
// before routing: register it on the root router (chi's Use on the top-level
// mux), not inside Group, With or Route, whose middlewares run after the
// route is matched.
func PrefixRoutes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix := tenant.PathPrefix(r.Context())
		if prefix == "" {
			next.ServeHTTP(w, r)
			return
		}

		p, ok := stripPrefix(r.URL.Path, prefix)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		r2 := new(http.Request)
		*r2 = *r
		r2.URL = new(url.URL)
		*r2.URL = *r.URL
		r2.URL.Path = p
		if r.URL.RawPath != "" {
			r2.URL.RawPath, _ = stripPrefix(r.URL.RawPath, prefix)
		}
		next.ServeHTTP(w, r2)
	})
}

func stripPrefix(p, prefix string) (string, bool) {
	head := "/" + prefix
	switch {
	case p == head:
		return "/", true
	case strings.HasPrefix(p, head+"/"):
		return p[len(head):], true
	}
	return p, false
}

// Path prefixes route path p with the active tenant path prefix.
func Path(ctx context.Context, p string) string {
	prefix := tenant.PathPrefix(ctx)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if prefix == "" {
		return p
	}
	if _, already := stripPrefix(p, prefix); already {
		return p
	}
	return "/" + prefix + p
}
