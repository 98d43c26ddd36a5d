package dbconn

import (
	"fmt"
	"strings"
)

// Config describes the default database every tenant database is derived from.
type Config struct {
	Engine   string `env:"DB_ENGINE" envDefault:"postgres"`
	Name     string `env:"DB_NAME" envDefault:"multitier"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	// Options are extra DSN parameters, e.g. "sslmode=disable".
	Options map[string]string `env:"DB_OPTIONS" envSeparator:"," envKeyValSeparator:"="`
	// SQLiteDirs are searched for tenant database files after the
	// directory of the default SQLite database.
	SQLiteDirs []string `env:"DB_SQLITE_DIRS" envSeparator:","`
}

// Default returns the default descriptor.
func (c Config) Default() (Descriptor, error) {
	engine := Engine(strings.ToLower(c.Engine))
	switch engine {
	case EnginePostgres, EngineSQLite:
	case "postgresql", "pgx":
		engine = EnginePostgres
	case "sqlite3":
		engine = EngineSQLite
	default:
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnsupportedEngine, c.Engine)
	}

	d := Descriptor{
		Engine:   engine,
		Name:     c.Name,
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Options:  c.Options,
	}
	return d.Clone(), nil
}
