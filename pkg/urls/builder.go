package urls

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/multitier/pkg/tenant"
)

// Config holds the URL building settings.
type Config struct {
	// DefaultDomain is used when no request host is known.
	DefaultDomain string `env:"MULTITIER_DEFAULT_DOMAIN" envDefault:"localhost:8000"`
	// DefaultSlug is the tenant served on the bare domain, without subdomain
	// or prefix.
	DefaultSlug string `env:"MULTITIER_DEFAULT_SLUG" envDefault:"default"`
	// AllowedHosts is shared with the resolver; its first entry keeps
	// subdomain links relative to the app domain when the request came in
	// on another tenant's subdomain.
	AllowedHosts []string `env:"ALLOWED_HOSTS" envSeparator:"," envDefault:"localhost"`
	// DefaultScheme is used for non-localhost links built outside a request.
	DefaultScheme string `env:"MULTITIER_DEFAULT_SCHEME" envDefault:"http"`
}

// Builder builds tenant URLs.
type Builder struct {
	defaultDomain string
	defaultSlug   string
	appDomain     string
	defaultScheme string
}

func NewBuilder(cfg Config) *Builder {
	scheme := cfg.DefaultScheme
	if scheme == "" {
		scheme = "http"
	}
	return &Builder{
		defaultDomain: cfg.DefaultDomain,
		defaultSlug:   cfg.DefaultSlug,
		appDomain:     tenant.AppDomain(cfg.AllowedHosts),
		defaultScheme: scheme,
	}
}

type options struct {
	tenant         *tenant.Tenant
	request        *http.Request
	withoutScheme  bool
	forceSubdomain bool
}

// Option adjusts a single AbsoluteURI call.
type Option func(*options)

// WithTenant links to t instead of the tenant active in the context.
func WithTenant(t *tenant.Tenant) Option {
	return func(o *options) { o.tenant = t }
}

// WithRequest takes the base domain and scheme from r.
func WithRequest(r *http.Request) Option {
	return func(o *options) { o.request = r }
}

// WithoutScheme returns "host/path" instead of a full URL.
func WithoutScheme() Option {
	return func(o *options) { o.withoutScheme = true }
}

// ForceSubdomain ignores the tenant's explicit domain. Useful to reach a
// tenant whose DNS is not set up yet.
func ForceSubdomain() Option {
	return func(o *options) { o.forceSubdomain = true }
}

// AbsoluteURI returns an absolute URL for location on the tenant's site.
// Locations that already carry a scheme and host are returned unchanged.
func (b *Builder) AbsoluteURI(ctx context.Context, location string, opts ...Option) string {
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && u.Host != "" {
		return location
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	t := o.tenant
	if t == nil {
		t, _ = tenant.FromContext(ctx)
	}
	requestHost, requestScheme := b.requestOrigin(ctx, o.request)

	actualDomain := b.defaultDomain
	if requestHost != "" {
		actualDomain = requestHost
	}

	if t != nil {
		if t.Domain != "" && !o.forceSubdomain {
			actualDomain = t.Domain
		} else {
			base := b.baseDomain(actualDomain)
			subdomain := t.AsSubdomain(b.defaultSlug)
			pathPrefix := t.IsPathPrefix || IsLocalhost(base)
			switch {
			case subdomain == "":
				actualDomain = base
			case !pathPrefix:
				actualDomain = subdomain + "." + base
			case !strings.HasPrefix(location, "/"+subdomain+"/"):
				actualDomain = base + "/" + subdomain
			default:
				actualDomain = base
			}
		}
	}

	result := actualDomain + location
	if o.withoutScheme {
		return result
	}
	scheme := "http"
	if !IsLocalhost(result) {
		scheme = requestScheme
	}
	return scheme + "://" + result
}

// ActualDomain returns the host, and prefix if any, the tenant is reached at.
func (b *Builder) ActualDomain(ctx context.Context, r *http.Request) string {
	return strings.TrimSuffix(b.AbsoluteURI(ctx, "/", WithRequest(r), WithoutScheme()), "/")
}

// requestOrigin returns the host and scheme of r, falling back to the
// values recorded in the request slot and then the configured defaults.
func (b *Builder) requestOrigin(ctx context.Context, r *http.Request) (host, scheme string) {
	if r != nil {
		return r.Host, tenant.RequestScheme(r)
	}
	scheme = b.defaultScheme
	if c, ok := tenant.CurrentFromContext(ctx); ok {
		host = c.DefaultHost()
		if s := c.DefaultScheme(); s != "" {
			scheme = s
		}
	}
	return host, scheme
}

// baseDomain maps a host on some tenant's subdomain back to the app domain,
// keeping the port.
func (b *Builder) baseDomain(host string) string {
	if b.appDomain == "" {
		return host
	}
	name, port := host, ""
	if h, p, err := net.SplitHostPort(host); err == nil {
		name, port = h, p
	}
	if strings.HasSuffix(strings.ToLower(name), "."+b.appDomain) {
		name = b.appDomain
	}
	if port != "" {
		return net.JoinHostPort(name, port)
	}
	return name
}

// IsLocalhost reports whether host is a local development host.
func IsLocalhost(host string) bool {
	return strings.HasPrefix(host, "localhost") || strings.HasPrefix(host, "127.0.0.1")
}
