package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/multitier/pkg/config"
	"github.com/dmitrymomot/multitier/pkg/dbconn"
	"github.com/dmitrymomot/multitier/pkg/environment"
	"github.com/dmitrymomot/multitier/pkg/httpserver"
	"github.com/dmitrymomot/multitier/pkg/logger"
	"github.com/dmitrymomot/multitier/pkg/pg"
	"github.com/dmitrymomot/multitier/pkg/proxy"
	"github.com/dmitrymomot/multitier/pkg/redis"
	"github.com/dmitrymomot/multitier/pkg/requestid"
	"github.com/dmitrymomot/multitier/pkg/secrets"
	"github.com/dmitrymomot/multitier/pkg/telemetry"
	"github.com/dmitrymomot/multitier/pkg/tenant"
	"github.com/dmitrymomot/multitier/pkg/tenantstore"
	"github.com/dmitrymomot/multitier/pkg/themes"
	"github.com/dmitrymomot/multitier/pkg/urls"
)

func main() {
	if err := run(); err != nil {
		slog.Error("testsite stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = config.LoadEnv()
	var cfg configs
	for _, load := range []func() error{
		func() error { return config.Load(&cfg.app) },
		func() error { return config.Load(&cfg.http) },
		func() error { return config.Load(&cfg.pg) },
		func() error { return config.Load(&cfg.redis) },
		func() error { return config.Load(&cfg.db) },
		func() error { return config.Load(&cfg.tenant) },
		func() error { return config.Load(&cfg.urls) },
		func() error { return config.Load(&cfg.themes) },
		func() error { return config.Load(&cfg.trace) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	env := environment.Parse(cfg.app.Env)
	format := logger.FormatText
	if env.IsProduction() {
		format = logger.FormatJSON
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.app.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	log := logger.New(
		logger.WithLevel(level),
		logger.WithFormat(format),
		logger.WithEnvironment(string(env), cfg.app.Service),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
			proxy.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	shutdownTracer, err := telemetry.InitTracer(cfg.trace, nil, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Error("tracer shutdown", logger.Error(err))
		}
	}()

	var appKey []byte
	if cfg.app.AppKey != "" {
		key, err := secrets.ParseKey(cfg.app.AppKey)
		if err != nil {
			return fmt.Errorf("SECRETS_APP_KEY: %w", err)
		}
		appKey = key
	}
	creds := tenant.NewCredentials(appKey, log)

	var checks []httpserver.Check
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	repo, repoChecks, closeRepo, err := openRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	checks = append(checks, repoChecks...)
	closers = append(closers, closeRepo)

	cache, closeCache, err := openCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	closers = append(closers, closeCache)
	if cfg.redis.Enabled() {
		checks = append(checks, httpserver.Check{Name: "redis", Fn: cache.healthcheck})
	}
	store := tenantstore.NewCached(repo, cache, cfg.app.CacheTTL, tenantstore.WithCacheLogger(log))

	dbCache, err := dbconn.NewCacheFromConfig(cfg.db, dbconn.WithLogger(log))
	if err != nil {
		return err
	}
	regOpts := []dbconn.RegistrarOption{dbconn.WithCredentials(creds)}
	if cfg.app.SlugDatabases {
		regOpts = append(regOpts, dbconn.WithSlugDatabases())
	}
	registrar := dbconn.NewRegistrar(dbCache, regOpts...)
	pools := dbconn.NewPools(dbCache, cfg.pg, log)
	closers = append(closers, func() { _ = pools.Close() })
	checks = append(checks, httpserver.Check{Name: "tenant_databases", Fn: pools.Healthcheck})

	resolver := tenant.NewResolver(store, cfg.tenant, tenant.WithResolverLogger(log))
	builder := urls.NewBuilder(cfg.urls)
	provider := themes.NewProvider(cfg.themes, themes.WithStore(store), themes.WithLogger(log))

	site := &site{
		urls:      builder,
		themes:    provider,
		load:      provider.Loader(),
		pools:     pools,
		registrar: registrar,
		log:       log,
	}

	router := newRouter(routerDeps{
		service:    cfg.app.Service,
		trustProxy: cfg.app.TrustProxy,
		resolver:   resolver,
		registrar:  registrar,
		themes:     provider,
		site:       site,
		checks:     checks,
		log:        log,
	})

	srv := httpserver.NewFromConfig(cfg.http, httpserver.WithLogger(log))
	if err := srv.Run(ctx, router); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openRepository(ctx context.Context, cfg configs, log *slog.Logger) (tenantstore.Repository, []httpserver.Check, func(), error) {
	switch cfg.app.Store {
	case "postgres", "gorm":
		pool, err := pg.Connect(ctx, cfg.pg)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := pg.Migrate(ctx, pool, cfg.pg, tenantstore.Migrations, tenantstore.MigrationsDir, log); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		checks := []httpserver.Check{{Name: "postgres", Fn: pg.Healthcheck(pool)}}
		if cfg.app.Store == "postgres" {
			return tenantstore.NewPostgres(pool), checks, pool.Close, nil
		}
		db, err := tenantstore.OpenGORM(cfg.pg.ConnectionString)
		if err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		closeAll := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
			pool.Close()
		}
		return tenantstore.NewGORM(db), checks, closeAll, nil
	case "sqlite":
		s, err := tenantstore.OpenSQLite(ctx, cfg.app.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, nil, func() { _ = s.Close() }, nil
	case "memory", "":
		return tenantstore.NewMemory(), nil, func() {}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown TENANT_STORE %q", cfg.app.Store)
	}
}

// lookupCache is the tenant lookup cache plus the health probe of its
// shared tier, when there is one.
type lookupCache struct {
	tenantstore.Cache
	healthcheck func(context.Context) error
}

func openCache(ctx context.Context, cfg configs, log *slog.Logger) (*lookupCache, func(), error) {
	local, err := tenantstore.NewRistrettoCache(cfg.app.CacheMaxMiB << 20)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.redis.Enabled() {
		return &lookupCache{Cache: local}, local.Close, nil
	}

	client, err := redis.Connect(ctx, cfg.redis)
	if err != nil {
		local.Close()
		return nil, nil, err
	}
	log.InfoContext(ctx, "tenant lookups cached in redis", logger.Component("tenantstore"))
	shared := tenantstore.NewRedisCache(client, cfg.redis.KeyPrefix)
	closeAll := func() {
		_ = client.Close()
		local.Close()
	}
	// The local tier only absorbs bursts; redis stays authoritative across
	// instances.
	tiered := tenantstore.NewTieredCache(local, shared, cfg.app.CacheTTL/10)
	return &lookupCache{Cache: tiered, healthcheck: redis.Healthcheck(client)}, closeAll, nil
}
