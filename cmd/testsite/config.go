package main

import (
	"time"

	"github.com/dmitrymomot/multitier/pkg/dbconn"
	"github.com/dmitrymomot/multitier/pkg/httpserver"
	"github.com/dmitrymomot/multitier/pkg/pg"
	"github.com/dmitrymomot/multitier/pkg/redis"
	"github.com/dmitrymomot/multitier/pkg/telemetry"
	"github.com/dmitrymomot/multitier/pkg/tenant"
	"github.com/dmitrymomot/multitier/pkg/themes"
	"github.com/dmitrymomot/multitier/pkg/urls"
)

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Service  string `env:"APP_SERVICE" envDefault:"testsite"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// Store selects the tenant registry backend: postgres, gorm, sqlite or memory.
	Store       string        `env:"TENANT_STORE" envDefault:"memory"`
	SQLitePath  string        `env:"TENANT_SQLITE_PATH" envDefault:"tenants.db"`
	CacheTTL    time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`
	CacheMaxMiB int64         `env:"TENANT_CACHE_MAX_MIB" envDefault:"16"`
	AppKey      string        `env:"SECRETS_APP_KEY"`
	TrustProxy  bool          `env:"HTTP_TRUST_PROXY" envDefault:"false"`
	// SlugDatabases registers a database named after the slug for tenants
	// without an explicit database name.
	SlugDatabases bool `env:"MULTITIER_SLUG_DATABASES" envDefault:"false"`
}

type configs struct {
	app    appConfig
	http   httpserver.Config
	pg     pg.Config
	redis  redis.Config
	db     dbconn.Config
	tenant tenant.Config
	urls   urls.Config
	themes themes.Config
	trace  telemetry.Config
}
