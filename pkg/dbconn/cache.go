package dbconn

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/multitier/pkg/logger"
)

// Params selects a tenant database. Empty fields keep the default's value.
type Params struct {
	Name     string
	Host     string
	Port     int
	User     string
	Password string
}

// Cache maps database names to descriptors. Entries are never replaced:
// the first descriptor stored for a name is the one every caller sees.
type Cache struct {
	def        Descriptor
	sqliteDirs []string
	entries    sync.Map // name -> Descriptor
	group      singleflight.Group
	logger     *slog.Logger
	exists     func(path string) bool
}

// Option configures a Cache.
type Option func(*Cache)

func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSQLiteDirs appends fallback directories for SQLite database files.
func WithSQLiteDirs(dirs ...string) Option {
	return func(c *Cache) {
		c.sqliteDirs = append(c.sqliteDirs, dirs...)
	}
}

// NewCache creates a cache deriving descriptors from def.
func NewCache(def Descriptor, opts ...Option) *Cache {
	c := &Cache{
		def:    def.Clone(),
		logger: slog.Default(),
		exists: fileExists,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("dbconn"))
	return c
}

// NewCacheFromConfig validates cfg and creates a cache from it.
func NewCacheFromConfig(cfg Config, opts ...Option) (*Cache, error) {
	def, err := cfg.Default()
	if err != nil {
		return nil, err
	}
	return NewCache(def, append([]Option{WithSQLiteDirs(cfg.SQLiteDirs...)}, opts...)...), nil
}

// Default returns a copy of the default descriptor.
func (c *Cache) Default() Descriptor {
	return c.def.Clone()
}

// Ensure registers the database name with an optional host and port
// override and returns its descriptor. An empty name is a no-op and
// returns false.
func (c *Cache) Ensure(ctx context.Context, name, host string, port int) (Descriptor, bool) {
	return c.EnsureParams(ctx, Params{Name: name, Host: host, Port: port})
}

// EnsureParams is Ensure with credentials. Concurrent callers for the
// same name share a single build.
func (c *Cache) EnsureParams(ctx context.Context, p Params) (Descriptor, bool) {
	if p.Name == "" {
		return Descriptor{}, false
	}
	if d, ok := c.entries.Load(p.Name); ok {
		return d.(Descriptor).Clone(), true
	}

	v, _, _ := c.group.Do(p.Name, func() (any, error) {
		d, _ := c.entries.LoadOrStore(p.Name, c.build(ctx, p))
		return d, nil
	})
	return v.(Descriptor).Clone(), true
}

// Get returns the descriptor registered for name.
func (c *Cache) Get(name string) (Descriptor, bool) {
	d, ok := c.entries.Load(name)
	if !ok {
		return Descriptor{}, false
	}
	return d.(Descriptor).Clone(), true
}

// Names returns the registered names in lexical order.
func (c *Cache) Names() []string {
	var names []string
	c.entries.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	slices.Sort(names)
	return names
}

func (c *Cache) build(ctx context.Context, p Params) Descriptor {
	d := c.def.Clone()
	d.Name = p.Name
	if p.Host != "" {
		d.Host = p.Host
	}
	if p.Port > 0 {
		d.Port = p.Port
	}
	if p.User != "" {
		d.User = p.User
	}
	if p.Password != "" {
		d.Password = p.Password
	}

	if d.Engine == EngineSQLite {
		d.Name = c.sqlitePath(ctx, p.Name)
	}
	return d
}

// SQLiteCandidates lists the files tried for a SQLite database name.
func (c *Cache) SQLiteCandidates(name string) []string {
	dirs := append([]string{filepath.Dir(c.def.Name)}, c.sqliteDirs...)
	candidates := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		candidates = append(candidates, filepath.Join(dir, name+".sqlite"))
	}
	return candidates
}

func (c *Cache) sqlitePath(ctx context.Context, name string) string {
	candidates := c.SQLiteCandidates(name)
	for _, path := range candidates {
		if c.exists(path) {
			c.logger.DebugContext(ctx, "using sqlite database", logger.Database(path))
			return path
		}
	}
	c.logger.ErrorContext(ctx, "cannot find sqlite database",
		logger.Database(name),
		slog.Any("candidates", candidates),
	)
	return candidates[0]
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
