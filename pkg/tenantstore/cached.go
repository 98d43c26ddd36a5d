package tenantstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/multitier/pkg/logger"
	"github.com/dmitrymomot/multitier/pkg/tenant"
)

const generationKey = "tenants:generation"

// Cached is a read-through cache in front of a Repository. Writes made
// through it bump a generation stamp that is part of every key, so all
// entries written before the change are ignored from then on.
// Cache failures are logged and fall back to the underlying store.
type Cached struct {
	next   Repository
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// CachedOption configures Cached.
type CachedOption func(*Cached)

func WithCacheLogger(l *slog.Logger) CachedOption {
	return func(c *Cached) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewCached(next Repository, cache Cache, ttl time.Duration, opts ...CachedOption) *Cached {
	c := &Cached{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("tenantstore.cache"))
	return c
}

// entry keeps the secret fields that tenant.Tenant hides from JSON.
type entry struct {
	*tenant.Tenant
	DBPassword        string `json:"db_password,omitempty"`
	EmailHostPassword string `json:"email_host_password,omitempty"`
}

func encode(tenants []*tenant.Tenant) ([]byte, error) {
	entries := make([]entry, len(tenants))
	for i, t := range tenants {
		entries[i] = entry{Tenant: t, DBPassword: t.DBPassword, EmailHostPassword: t.EmailHostPassword}
	}
	return json.Marshal(entries)
}

func decode(data []byte) ([]*tenant.Tenant, error) {
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	out := make([]*tenant.Tenant, 0, len(entries))
	for _, e := range entries {
		if e.Tenant == nil {
			continue
		}
		e.Tenant.DBPassword = e.DBPassword
		e.Tenant.EmailHostPassword = e.EmailHostPassword
		out = append(out, e.Tenant)
	}
	return out, nil
}

func (c *Cached) generation(ctx context.Context) string {
	gen, ok, err := c.cache.Get(ctx, generationKey)
	if err != nil {
		c.logger.WarnContext(ctx, "tenant cache unavailable", logger.Error(err))
		return ""
	}
	if !ok {
		return "0"
	}
	return string(gen)
}

func (c *Cached) key(ctx context.Context, parts ...string) (string, bool) {
	gen := c.generation(ctx)
	if gen == "" {
		return "", false
	}
	return "tenants:" + gen + ":" + strings.Join(parts, "|"), true
}

// load returns cached tenants for key, or calls fetch and caches a non-empty
// result that keep accepts. A nil keep accepts every result.
func (c *Cached) load(ctx context.Context, fetch func() ([]*tenant.Tenant, error), keep func([]*tenant.Tenant) bool, parts ...string) ([]*tenant.Tenant, error) {
	key, ok := c.key(ctx, parts...)
	if ok {
		if data, found, err := c.cache.Get(ctx, key); err != nil {
			c.logger.WarnContext(ctx, "tenant cache read failed", logger.Error(err))
		} else if found {
			if tenants, err := decode(data); err == nil {
				return tenants, nil
			}
			_ = c.cache.Delete(ctx, key)
		}
	}

	tenants, err := fetch()
	if err != nil || len(tenants) == 0 || !ok {
		return tenants, err
	}
	if keep != nil && !keep(tenants) {
		return tenants, nil
	}
	if data, err := encode(tenants); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.WarnContext(ctx, "tenant cache write failed", logger.Error(err))
		}
	}
	return tenants, nil
}

func (c *Cached) Lookup(ctx context.Context, q tenant.Lookup) ([]*tenant.Tenant, error) {
	return c.load(ctx, func() ([]*tenant.Tenant, error) {
		return c.next.Lookup(ctx, q)
	}, settled(q), "lookup", strings.ToLower(q.Host), q.Candidate, q.DefaultSlug)
}

// settled reports whether a lookup result can be cached. A result that holds
// neither the host's own tenant nor the path candidate is a fallback to the
// default tenant, and would hide a candidate tenant created later.
func settled(q tenant.Lookup) func([]*tenant.Tenant) bool {
	return func(tenants []*tenant.Tenant) bool {
		if q.Candidate == "" {
			return true
		}
		for _, t := range tenants {
			if t.Slug == q.Candidate || (t.Domain != "" && strings.EqualFold(t.Domain, q.Host)) {
				return true
			}
		}
		return false
	}
}

func (c *Cached) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	tenants, err := c.load(ctx, func() ([]*tenant.Tenant, error) {
		t, err := c.next.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		return []*tenant.Tenant{t}, nil
	}, nil, "slug", slug)
	if err != nil {
		return nil, err
	}
	return tenants[0], nil
}

func (c *Cached) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	tenants, err := c.load(ctx, func() ([]*tenant.Tenant, error) {
		t, err := c.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return []*tenant.Tenant{t}, nil
	}, nil, "id", id.String())
	if err != nil {
		return nil, err
	}
	return tenants[0], nil
}

func (c *Cached) Create(ctx context.Context, t *tenant.Tenant) error {
	if err := c.next.Create(ctx, t); err != nil {
		return err
	}
	c.Invalidate(ctx)
	return nil
}

func (c *Cached) Update(ctx context.Context, t *tenant.Tenant) error {
	if err := c.next.Update(ctx, t); err != nil {
		return err
	}
	c.Invalidate(ctx)
	return nil
}

func (c *Cached) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.Invalidate(ctx)
	return nil
}

// Invalidate drops every cached entry by starting a new generation.
// Call it after changing tenants outside this store.
func (c *Cached) Invalidate(ctx context.Context) {
	if err := c.cache.Set(ctx, generationKey, []byte(uuid.NewString()), 0); err != nil {
		c.logger.ErrorContext(ctx, "tenant cache invalidation failed", logger.Error(err))
	}
}
