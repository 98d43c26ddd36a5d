package tenant

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"regexp"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/idna"

	"github.com/dmitrymomot/multitier/pkg/logger"
)

const tracerName = "multitier/tenant"

// Config holds resolver settings.
type Config struct {
	// AllowedHosts is the list of hosts the application serves. The first
	// entry is the app domain; a leading "." is ignored and "*" disables
	// subdomain and path prefix routing.
	AllowedHosts []string `env:"ALLOWED_HOSTS" envSeparator:"," envDefault:"localhost"`
	// DefaultSlug is the tenant served on the bare app domain.
	DefaultSlug string `env:"MULTITIER_DEFAULT_SLUG" envDefault:"default"`
	// RequireActive rejects inactive tenants with ErrInactiveTenant.
	RequireActive bool `env:"MULTITIER_REQUIRE_ACTIVE" envDefault:"true"`
}

// Resolver maps a request host and path to a tenant.
type Resolver struct {
	store         Store
	appDomain     string
	subdomainExpr *regexp.Regexp
	defaultSlug   string
	requireActive bool
	logger        *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger used for resolution diagnostics.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver backed by store.
func NewResolver(store Store, cfg Config, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:         store,
		appDomain:     AppDomain(cfg.AllowedHosts),
		defaultSlug:   cfg.DefaultSlug,
		requireActive: cfg.RequireActive,
		logger:        slog.Default(),
	}
	if r.appDomain != "" {
		r.subdomainExpr = regexp.MustCompile(
			`^((?P<sub>\S+)\.)?` + regexp.QuoteMeta(r.appDomain) + `(?::.*)?$`)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AppDomain returns the canonical app domain from the allowed hosts list.
func AppDomain(allowedHosts []string) string {
	if len(allowedHosts) == 0 {
		return ""
	}
	d := strings.TrimSpace(allowedHosts[0])
	if d == "*" {
		return ""
	}
	return NormalizeHost(strings.TrimPrefix(d, "."))
}

// AppDomain returns the domain subdomains and path prefixes are relative to.
func (r *Resolver) AppDomain() string { return r.appDomain }

// DefaultSlug returns the slug of the tenant served on the bare app domain.
func (r *Resolver) DefaultSlug() string { return r.defaultSlug }

// Resolve returns the tenant for host and path, together with the path
// prefix the request was routed through. The prefix is empty unless the
// tenant was selected by the first path segment on the bare app domain.
func (r *Resolver) Resolve(ctx context.Context, host, path string) (*Tenant, string, error) {
	host = NormalizeHost(host)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "tenant.resolve",
		trace.WithAttributes(attribute.String("tenant.host", host)),
	)
	defer span.End()

	candidate, prefix := r.candidate(host, path)
	q := Lookup{Host: host, Candidate: candidate}
	if host == r.appDomain {
		q.DefaultSlug = r.defaultSlug
	}

	found, err := r.store.Lookup(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, "", fmt.Errorf("resolve tenant for %q: %w", host, err)
	}
	if len(found) == 0 {
		span.SetStatus(codes.Error, "not found")
		return nil, "", fmt.Errorf("%w: host %q, candidate %q", ErrTenantNotFound, host, candidate)
	}

	t := Rank(found, host)[0]
	if t.Slug != prefix {
		prefix = ""
	}
	span.SetAttributes(
		attribute.String("tenant.slug", t.Slug),
		attribute.String("tenant.path_prefix", prefix),
	)

	if r.requireActive && !t.IsActive {
		span.SetStatus(codes.Error, "inactive")
		return nil, "", fmt.Errorf("%w: %s", ErrInactiveTenant, t.Slug)
	}

	r.logger.DebugContext(ctx, "tenant resolved",
		logger.Tenant(t.Slug),
		logger.Host(host),
		logger.PathPrefix(prefix),
	)
	return t, prefix, nil
}

// candidate extracts the slug candidate from the subdomain, or from the
// first path segment when the request hits the bare app domain.
func (r *Resolver) candidate(host, path string) (candidate, prefix string) {
	if r.subdomainExpr == nil {
		return "", ""
	}
	if m := r.subdomainExpr.FindStringSubmatch(host); m != nil {
		candidate = m[r.subdomainExpr.SubexpIndex("sub")]
	}
	if candidate == "" && host == r.appDomain {
		if m := pathPrefixPattern.FindStringSubmatch(path); m != nil {
			candidate = m[1]
			prefix = m[1]
		}
	}
	return candidate, prefix
}

// Rank orders matched tenants by priority: a domain equal to host first,
// then tenants with any explicit domain, then most recently created.
// The input slice is sorted in place and returned.
func Rank(tenants []*Tenant, host string) []*Tenant {
	score := func(t *Tenant) int {
		switch {
		case t.Domain != "" && strings.EqualFold(t.Domain, host):
			return 2
		case t.Domain != "":
			return 1
		}
		return 0
	}
	slices.SortStableFunc(tenants, func(a, b *Tenant) int {
		if d := score(b) - score(a); d != 0 {
			return d
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return bytes.Compare(b.ID[:], a.ID[:])
	})
	return tenants
}

// NormalizeHost strips the port and trailing dot, lowercases the host and
// converts internationalized names to their ASCII form.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		return ascii
	}
	return host
}
