// Package dbconn keeps the process-wide table of tenant database
// descriptors and the connections opened from them.
//
// Cache.Ensure derives a descriptor from the default database by swapping
// in the tenant's database name, host and port. For SQLite the name is
// turned into a file path: the directory of the default database is tried
// first, then every directory of Config.SQLiteDirs, and the first existing
// file wins. When none exists the first candidate is used and an error is
// logged, so the file can be created later.
//
// Registrar plugs the cache into tenant.Set so a tenant's database is
// known before the tenant becomes visible to the request. Pools opens and
// memoizes pgx pools or database/sql handles for registered names.
package dbconn
