package tenant

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tenant is a site sharing the application codebase, isolated by domain,
// URL prefix and optionally its own database.
type Tenant struct {
	ID   uuid.UUID `json:"id"`
	Slug string    `json:"slug"`
	// Domain is the fully qualified domain the tenant is served at.
	// Empty means the tenant is reached through a subdomain or path prefix.
	Domain string `json:"domain,omitempty"`
	// BaseID references another tenant this one aliases. It is a lookup
	// relation only; deleting the base never cascades.
	BaseID       *uuid.UUID `json:"base_id,omitempty"`
	IsPathPrefix bool       `json:"is_path_prefix"`
	IsActive     bool       `json:"is_active"`
	Theme        string     `json:"theme,omitempty"`
	// Extra is free-form JSON. The "tags" key is managed by AddTags/RemoveTags.
	Extra string `json:"extra,omitempty"`

	DBName     string `json:"db_name,omitempty"`
	DBHost     string `json:"db_host,omitempty"`
	DBPort     int    `json:"db_port,omitempty"`
	DBUser     string `json:"db_user,omitempty"`
	DBPassword string `json:"-"` // encrypted, see Credentials

	EmailDefaultFrom  string `json:"email_default_from,omitempty"`
	EmailHostUser     string `json:"email_host_user,omitempty"`
	EmailHostPassword string `json:"-"` // encrypted, see Credentials

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Tenant) String() string {
	return t.Slug
}

// AsSubdomain returns the slug, or an empty string for the default tenant
// which lives on the bare app domain.
func (t *Tenant) AsSubdomain(defaultSlug string) string {
	if t.Slug == defaultSlug {
		return ""
	}
	return t.Slug
}

// PrintableName prefers the domain over the slug.
func (t *Tenant) PrintableName() string {
	if t.Domain != "" {
		return t.Domain
	}
	return t.Slug
}

// Themes returns the candidate theme names for template and static lookups.
func (t *Tenant) Themes() []string {
	if t.Theme != "" {
		return []string{t.Theme}
	}
	return []string{t.Slug}
}

// DatabaseName is the identifier used to register the tenant database.
// Tenants without an explicit DBName fall back to their slug.
func (t *Tenant) DatabaseName() string {
	if t.DBName != "" {
		return t.DBName
	}
	return t.Slug
}

// HasCustomDatabase reports whether the tenant carries its own database
// settings rather than sharing the default connection.
func (t *Tenant) HasCustomDatabase() bool {
	return t.DBName != ""
}

// FromEmail returns the sender address for e-mails sent on behalf of the
// tenant, or fallback when none is configured.
func (t *Tenant) FromEmail(fallback string) string {
	if t.EmailDefaultFrom != "" {
		return t.EmailDefaultFrom
	}
	if strings.Contains(t.EmailHostUser, "@") {
		return t.EmailHostUser
	}
	return fallback
}

// Lookup describes the disjunctive filter used during resolution:
// a tenant matches when its domain equals Host, or its slug equals
// Candidate or DefaultSlug. Empty fields never match.
type Lookup struct {
	Host        string
	Candidate   string
	DefaultSlug string
}

// Matches reports whether t satisfies the lookup filter.
func (l Lookup) Matches(t *Tenant) bool {
	switch {
	case l.Host != "" && t.Domain != "" && strings.EqualFold(t.Domain, l.Host):
		return true
	case l.Candidate != "" && t.Slug == l.Candidate:
		return true
	case l.DefaultSlug != "" && t.Slug == l.DefaultSlug:
		return true
	}
	return false
}

// Slugs returns the non-empty slug values of the filter.
func (l Lookup) Slugs() []string {
	slugs := make([]string, 0, 2)
	if l.Candidate != "" {
		slugs = append(slugs, l.Candidate)
	}
	if l.DefaultSlug != "" && l.DefaultSlug != l.Candidate {
		slugs = append(slugs, l.DefaultSlug)
	}
	return slugs
}

// Store is the persistent tenant registry.
// Implementations must be safe for concurrent use.
type Store interface {
	// Lookup returns every tenant matching the filter, in any order.
	// An empty result is not an error.
	Lookup(ctx context.Context, q Lookup) ([]*Tenant, error)

	// GetBySlug returns ErrTenantNotFound when no tenant has the slug.
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)

	// GetByID returns ErrTenantNotFound when no tenant has the id.
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
}

// Base resolves the tenant's base reference through the store.
// It returns nil without error when the tenant has no base.
func Base(ctx context.Context, store Store, t *Tenant) (*Tenant, error) {
	if t == nil || t.BaseID == nil || *t.BaseID == t.ID {
		return nil, nil
	}
	return store.GetByID(ctx, *t.BaseID)
}
