// Package pg opens PostgreSQL connection pools with pgx/v5, applies goose
// migrations from an embedded filesystem and classifies driver errors.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, tenantstore.Migrations, tenantstore.MigrationsDir, log); err != nil {
//		return err
//	}
//
// The same Config is reused for tenant databases: dbconn swaps in each
// tenant's connection string with WithConnectionString.
package pg
