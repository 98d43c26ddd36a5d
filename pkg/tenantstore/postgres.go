package tenantstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/multitier/pkg/pg"
	"github.com/dmitrymomot/multitier/pkg/tenant"
)

var pgLookupQuery = `SELECT ` + selectColumns + ` FROM tenants
	WHERE (domain <> '' AND domain = $1) OR slug = ANY($2)
	ORDER BY (domain = $1) DESC, (domain <> '') DESC, created_at DESC, id DESC`

// Postgres is a registry backed by a pgx connection pool. The schema is
// created by Migrations.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Lookup(ctx context.Context, q tenant.Lookup) ([]*tenant.Tenant, error) {
	rows, err := s.pool.Query(ctx, pgLookupQuery,
		strings.ToLower(q.Host), q.Slugs())
	if err != nil {
		return nil, fmt.Errorf("lookup tenants: %w", err)
	}
	defer rows.Close()

	var out []*tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Postgres) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	t, err := scanTenant(s.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM tenants WHERE slug = $1`, slug))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, fmt.Errorf("get tenant %s: %w", slug, tenant.ErrTenantNotFound)
		}
		return nil, fmt.Errorf("get tenant %s: %w", slug, err)
	}
	return t, nil
}

func (s *Postgres) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	t, err := scanTenant(s.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM tenants WHERE id = $1`, id))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, fmt.Errorf("get tenant %s: %w", id, tenant.ErrTenantNotFound)
		}
		return nil, fmt.Errorf("get tenant %s: %w", id, err)
	}
	return t, nil
}

func (s *Postgres) Create(ctx context.Context, t *tenant.Tenant) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	if _, err := s.pool.Exec(ctx, insertStatement(true), values(t)...); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return fmt.Errorf("create tenant %s: %w", t.Slug, ErrDuplicate)
		}
		return fmt.Errorf("create tenant %s: %w", t.Slug, err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, t *tenant.Tenant) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t.UpdatedAt = time.Now().UTC()

	tag, err := s.pool.Exec(ctx, updateStatement(true), updateArgs(t)...)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return fmt.Errorf("update tenant %s: %w", t.Slug, ErrDuplicate)
		}
		return fmt.Errorf("update tenant %s: %w", t.Slug, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update tenant %s: %w", t.Slug, tenant.ErrTenantNotFound)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tenant %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete tenant %s: %w", id, tenant.ErrTenantNotFound)
	}
	return nil
}

var _ scanner = (pgx.Row)(nil)
