package tenantstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/multitier/pkg/tenant"
)

// Writer modifies the registry. Create and Update validate the tenant
// before storing it.
type Writer interface {
	Create(ctx context.Context, t *tenant.Tenant) error
	Update(ctx context.Context, t *tenant.Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repository is a readable and writable tenant registry.
type Repository interface {
	tenant.Store
	Writer
}

var (
	_ Repository = (*Memory)(nil)
	_ Repository = (*Postgres)(nil)
	_ Repository = (*SQLite)(nil)
	_ Repository = (*GORM)(nil)
	_ Repository = (*Cached)(nil)
)
