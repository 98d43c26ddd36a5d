package dbconn

import (
	"context"

	"github.com/dmitrymomot/multitier/pkg/tenant"
)

// Registrar registers tenant databases in a Cache. It implements
// tenant.Registrar.
type Registrar struct {
	cache         *Cache
	credentials   *tenant.Credentials
	slugDatabases bool
}

// RegistrarOption configures a Registrar.
type RegistrarOption func(*Registrar)

// WithCredentials decrypts the tenant database password into the descriptor.
func WithCredentials(c *tenant.Credentials) RegistrarOption {
	return func(r *Registrar) {
		r.credentials = c
	}
}

// WithSlugDatabases registers a database named after the slug for tenants
// without an explicit database name. By default such tenants share the
// default database and nothing is registered.
func WithSlugDatabases() RegistrarOption {
	return func(r *Registrar) {
		r.slugDatabases = true
	}
}

func NewRegistrar(cache *Cache, opts ...RegistrarOption) *Registrar {
	r := &Registrar{cache: cache}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register ensures the tenant database is in the cache.
func (r *Registrar) Register(ctx context.Context, t *tenant.Tenant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := r.DatabaseName(t)
	if name == "" {
		return nil
	}

	p := Params{Name: name, Host: t.DBHost, Port: t.DBPort, User: t.DBUser}
	if r.credentials != nil {
		p.Password = r.credentials.DBPassword(ctx, t)
	}
	r.cache.EnsureParams(ctx, p)
	return nil
}

// DatabaseName returns the name the tenant database is registered under,
// or an empty string when the tenant uses the default database.
func (r *Registrar) DatabaseName(t *tenant.Tenant) string {
	if t.HasCustomDatabase() || r.slugDatabases {
		return t.DatabaseName()
	}
	return ""
}

var _ tenant.Registrar = (*Registrar)(nil)
