package tenantstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/multitier/pkg/tenant"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS tenants (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		domain TEXT NOT NULL DEFAULT '',
		base_id TEXT NULL REFERENCES tenants (id) ON DELETE SET NULL,
		is_path_prefix INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 0,
		theme TEXT NOT NULL DEFAULT '',
		extra TEXT NOT NULL DEFAULT '',
		db_name TEXT NOT NULL DEFAULT '',
		db_host TEXT NOT NULL DEFAULT '',
		db_port INTEGER NOT NULL DEFAULT 0,
		db_user TEXT NOT NULL DEFAULT '',
		db_password TEXT NOT NULL DEFAULT '',
		email_default_from TEXT NOT NULL DEFAULT '',
		email_host_user TEXT NOT NULL DEFAULT '',
		email_host_password TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS tenants_domain_key ON tenants (domain) WHERE domain <> ''`,
}

// SQLite is a registry in a local SQLite file, used in development where
// running PostgreSQL is overkill. The schema is created on open.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the registry at path.
// Use ":memory:" for a throwaway registry.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Lookup(ctx context.Context, q tenant.Lookup) ([]*tenant.Tenant, error) {
	where := []string{"(domain <> '' AND domain = ?)"}
	args := []any{strings.ToLower(q.Host)}
	if slugs := q.Slugs(); len(slugs) > 0 {
		where = append(where, "slug IN ("+placeholders(len(slugs), 1, false)+")")
		for _, slug := range slugs {
			args = append(args, slug)
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM tenants WHERE `+strings.Join(where, " OR ")+
			` ORDER BY created_at DESC`, args...)
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

func (s *SQLite) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	t, err := scanTenant(s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM tenants WHERE slug = ?`, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get tenant %s: %w", slug, tenant.ErrTenantNotFound)
		}
		return nil, fmt.Errorf("get tenant %s: %w", slug, err)
	}
	return t, nil
}

func (s *SQLite) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	t, err := scanTenant(s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM tenants WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get tenant %s: %w", id, tenant.ErrTenantNotFound)
		}
		return nil, fmt.Errorf("get tenant %s: %w", id, err)
	}
	return t, nil
}

func (s *SQLite) Create(ctx context.Context, t *tenant.Tenant) error {
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

	if _, err := s.db.ExecContext(ctx, insertStatement(false), values(t)...); err != nil {
		if isSQLiteConstraint(err) {
			return fmt.Errorf("create tenant %s: %w", t.Slug, ErrDuplicate)
		}
		return fmt.Errorf("create tenant %s: %w", t.Slug, err)
	}
	return nil
}

func (s *SQLite) Update(ctx context.Context, t *tenant.Tenant) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, updateStatement(false), updateArgs(t)...)
	if err != nil {
		if isSQLiteConstraint(err) {
			return fmt.Errorf("update tenant %s: %w", t.Slug, ErrDuplicate)
		}
		return fmt.Errorf("update tenant %s: %w", t.Slug, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update tenant %s: %w", t.Slug, tenant.ErrTenantNotFound)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tenant %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete tenant %s: %w", id, tenant.ErrTenantNotFound)
	}
	return nil
}

// isSQLiteConstraint matches UNIQUE violations by message; the driver's
// typed error carries only numeric codes.
func isSQLiteConstraint(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
