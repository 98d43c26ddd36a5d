// Package tenantstore holds the tenant registry implementations.
//
// Memory keeps tenants in process and backs tests and seeded demos.
// Postgres (pgx/v5), SQLite (database/sql with modernc.org/sqlite) and GORM
// persist them in a "tenants" table whose schema ships as goose migrations
// in Migrations. Cached wraps any Repository with a read-through cache;
// NewRistrettoCache, NewRedisCache and NewTieredCache provide the backends.
//
// Every implementation satisfies tenant.Store and orders nothing itself:
// ranking of lookup results is done by tenant.Rank.
package tenantstore
