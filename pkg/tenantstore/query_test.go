package tenantstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dmitrymomot/multitier/pkg/tenant"
)

func TestUpdateStatement(t *testing.T) {
	t.Parallel()

	stmt := updateStatement(true)
	assert.True(t, strings.HasPrefix(stmt, "UPDATE tenants SET slug = $1, domain = $2"))
	assert.True(t, strings.HasSuffix(stmt, "updated_at = $16 WHERE id = $17"))
	assert.NotContains(t, stmt, "created_at")

	ten := &tenant.Tenant{Slug: "acme"}
	assert.Len(t, updateArgs(ten), 17)
	assert.Equal(t, strings.Count(updateStatement(false), "?"), len(updateArgs(ten)))
}

func TestInsertStatement(t *testing.T) {
	t.Parallel()

	assert.Equal(t, len(columns), strings.Count(insertStatement(false), "?"))
	assert.Contains(t, insertStatement(true), "$18)")
}

func TestGORMLookupQuery(t *testing.T) {
	t.Parallel()

	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=test dbname=test sslmode=disable"}),
		&gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	var rows []tenantRow
	stmt := lookupQuery(db, tenant.Lookup{Host: "Example.com", Candidate: "acme", DefaultSlug: "default"}).
		Find(&rows).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, `FROM "tenants"`)
	assert.Contains(t, sql, "domain <> '' AND domain = $1")
	assert.Contains(t, sql, "OR slug IN ($2,$3)")
	assert.Contains(t, sql, "ORDER BY created_at DESC")
	assert.Equal(t, []any{"example.com", "acme", "default"}, stmt.Vars)
}
