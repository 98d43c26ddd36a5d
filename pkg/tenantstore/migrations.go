package tenantstore

import "embed"

// Migrations holds the goose migrations creating the tenants table.
// Apply them with pg.Migrate(ctx, pool, cfg, Migrations, MigrationsDir, log).
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"
