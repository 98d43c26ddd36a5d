package tenantstore

import (
	"strconv"
	"strings"

	"github.com/dmitrymomot/multitier/pkg/tenant"
)

var columns = []string{
	"id", "slug", "domain", "base_id", "is_path_prefix", "is_active", "theme", "extra",
	"db_name", "db_host", "db_port", "db_user", "db_password",
	"email_default_from", "email_host_user", "email_host_password",
	"created_at", "updated_at",
}

var selectColumns = strings.Join(columns, ", ")

type scanner interface {
	Scan(dest ...any) error
}

func scanTenant(row scanner) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := row.Scan(
		&t.ID, &t.Slug, &t.Domain, &t.BaseID, &t.IsPathPrefix, &t.IsActive, &t.Theme, &t.Extra,
		&t.DBName, &t.DBHost, &t.DBPort, &t.DBUser, &t.DBPassword,
		&t.EmailDefaultFrom, &t.EmailHostUser, &t.EmailHostPassword,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// values returns the column values of t in the order of columns.
func values(t *tenant.Tenant) []any {
	return []any{
		t.ID, t.Slug, strings.ToLower(t.Domain), t.BaseID, t.IsPathPrefix, t.IsActive, t.Theme, t.Extra,
		t.DBName, t.DBHost, t.DBPort, t.DBUser, t.DBPassword,
		t.EmailDefaultFrom, t.EmailHostUser, t.EmailHostPassword,
		t.CreatedAt, t.UpdatedAt,
	}
}

// placeholders renders n positional parameters starting at from, either
// "$1, $2" or "?, ?".
func placeholders(n, from int, dollar bool) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = param(from+i, dollar)
	}
	return strings.Join(parts, ", ")
}

func param(n int, dollar bool) string {
	if dollar {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// updateStatement renders an UPDATE of every mutable column, with the id
// bound as the last parameter. Use it with updateArgs.
func updateStatement(dollar bool) string {
	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		if c == "id" || c == "created_at" {
			continue
		}
		parts = append(parts, c+" = "+param(len(parts)+1, dollar))
	}
	return "UPDATE tenants SET " + strings.Join(parts, ", ") +
		" WHERE id = " + param(len(parts)+1, dollar)
}

func updateArgs(t *tenant.Tenant) []any {
	all := values(t)
	args := make([]any, 0, len(all))
	for i, c := range columns {
		if c == "id" || c == "created_at" {
			continue
		}
		args = append(args, all[i])
	}
	return append(args, t.ID)
}

func insertStatement(dollar bool) string {
	return "INSERT INTO tenants (" + selectColumns + ") VALUES (" +
		placeholders(len(columns), 1, dollar) + ")"
}
