package tenant

import (
	"context"
	"net/http"
	"strings"
)

// Registrar makes the tenant database available before the tenant becomes
// visible in the request context.
type Registrar interface {
	Register(ctx context.Context, t *Tenant) error
}

// RegistrarFunc adapts a function to Registrar.
type RegistrarFunc func(ctx context.Context, t *Tenant) error

func (f RegistrarFunc) Register(ctx context.Context, t *Tenant) error {
	return f(ctx, t)
}

// Hooks binds tenant resolution to the lifetime of an HTTP request.
type Hooks struct {
	Resolver  *Resolver
	Registrar Registrar
}

// OnRequest resolves the tenant for r and returns a request whose context
// carries the active tenant.
func (h Hooks) OnRequest(r *http.Request) (*http.Request, *Tenant, error) {
	ctx, c := NewContext(r.Context())
	c.Clear()

	t, prefix, err := h.Resolver.Resolve(ctx, r.Host, r.URL.Path)
	if err != nil {
		return r.WithContext(ctx), nil, err
	}
	ctx, _, err = Set(ctx, h.Registrar, t, prefix, RequestScheme(r), r.Host)
	if err != nil {
		return r.WithContext(ctx), nil, err
	}
	return r.WithContext(ctx), t, nil
}

// OnRequestEnd empties the request slot. Must run on every exit path.
func (h Hooks) OnRequestEnd(r *http.Request) {
	Clear(r.Context())
}

// RequestScheme returns the scheme the client used, honoring
// X-Forwarded-Proto set by a reverse proxy.
func RequestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		proto, _, _ = strings.Cut(proto, ",")
		return strings.ToLower(strings.TrimSpace(proto))
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
