package tenant

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/dmitrymomot/multitier/pkg/logger"
)

type currentKey struct{}

// Current is the request-scoped slot holding the active tenant.
// A request owns exactly one slot; it is mutated in place so that any
// component holding the slot observes the latest values.
type Current struct {
	mu            sync.RWMutex
	tenant        *Tenant
	pathPrefix    string
	defaultScheme string
	defaultHost   string
}

// Previous holds the slot values replaced by Set.
type Previous struct {
	Tenant     *Tenant
	PathPrefix string
}

// NewContext installs an empty slot in ctx. If ctx already carries one,
// it is returned unchanged.
func NewContext(ctx context.Context) (context.Context, *Current) {
	if c, ok := CurrentFromContext(ctx); ok {
		return ctx, c
	}
	c := &Current{}
	return context.WithValue(ctx, currentKey{}, c), c
}

// CurrentFromContext returns the slot installed in ctx, if any.
func CurrentFromContext(ctx context.Context) (*Current, bool) {
	c, ok := ctx.Value(currentKey{}).(*Current)
	return c, ok && c != nil
}

// Set registers the tenant database through reg and then makes t the active
// tenant. If ctx already carries a slot it is mutated in place and ctx is
// returned as is; otherwise a new slot is installed.
// A registration failure leaves the context untouched.
func Set(ctx context.Context, reg Registrar, t *Tenant, pathPrefix, scheme, host string) (context.Context, Previous, error) {
	if t == nil {
		return ctx, Previous{}, ErrTenantNotFound
	}
	if reg != nil {
		if err := reg.Register(ctx, t); err != nil {
			return ctx, Previous{}, fmt.Errorf("%w: %s: %w", ErrDatabaseRegistration, t.Slug, err)
		}
	}

	ctx, c := NewContext(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := Previous{Tenant: c.tenant, PathPrefix: c.pathPrefix}
	c.tenant = t
	c.pathPrefix = pathPrefix
	c.defaultScheme = scheme
	c.defaultHost = host
	return ctx, prev, nil
}

// WithTenant is a shortcut for Set without database registration.
// Handy for tests and background jobs that operate on a known tenant.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	ctx, _, _ = Set(ctx, nil, t, "", "", "")
	return ctx
}

// FromContext returns the active tenant.
func FromContext(ctx context.Context) (*Tenant, bool) {
	c, ok := CurrentFromContext(ctx)
	if !ok {
		return nil, false
	}
	t := c.Tenant()
	return t, t != nil
}

// MustFromContext panics when no tenant is active.
func MustFromContext(ctx context.Context) *Tenant {
	t, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return t
}

// PathPrefix returns the active path prefix, or an empty string when no
// tenant is active.
func PathPrefix(ctx context.Context) string {
	c, ok := CurrentFromContext(ctx)
	if !ok {
		return ""
	}
	return c.PathPrefix()
}

// Clear empties the slot carried by ctx.
func Clear(ctx context.Context) {
	if c, ok := CurrentFromContext(ctx); ok {
		c.Clear()
	}
}

func (c *Current) Tenant() *Tenant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tenant
}

func (c *Current) PathPrefix() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tenant == nil {
		return ""
	}
	return c.pathPrefix
}

func (c *Current) DefaultScheme() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaultScheme
}

func (c *Current) DefaultHost() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaultHost
}

func (c *Current) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tenant = nil
	c.pathPrefix = ""
	c.defaultScheme = ""
	c.defaultHost = ""
}

// AbsoluteURI builds an absolute URI for location on the host the request
// came in on. Tenants with an explicit domain use it; otherwise location is
// re-rooted under the active path prefix. Absolute input is returned as is.
func (c *Current) AbsoluteURI(location string) string {
	if location == "" {
		location = "/"
	}
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && u.Host != "" {
		return location
	}

	c.mu.RLock()
	t, prefix, scheme, host := c.tenant, c.pathPrefix, c.defaultScheme, c.defaultHost
	c.mu.RUnlock()

	if scheme == "" {
		scheme = "http"
	}
	switch {
	case t != nil && t.Domain != "":
		host = t.Domain
	case t != nil && prefix != "":
		location = rerootUnderPrefix(location, prefix)
	}
	return (&url.URL{Scheme: scheme, Host: host}).String() + escapeLocation(location)
}

func rerootUnderPrefix(location, prefix string) string {
	rest := strings.TrimLeft(location, "/")
	if rest == prefix {
		rest = ""
	} else if strings.HasPrefix(rest, prefix+"/") {
		rest = rest[len(prefix):]
	}
	return "/" + prefix + "/" + strings.TrimLeft(rest, "/")
}

// escapeLocation percent-encodes non-ASCII characters while keeping the
// query string and fragment intact.
func escapeLocation(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return location
	}
	return u.String()
}

// LoggerExtractor adds the active tenant slug to every log record.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		t, ok := FromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		return logger.Tenant(t.Slug), true
	}
}
