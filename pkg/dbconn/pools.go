package dbconn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/multitier/pkg/logger"
	"github.com/dmitrymomot/multitier/pkg/pg"
)

// openTimeout bounds opening a database shared by concurrent callers.
const openTimeout = 30 * time.Second

// openContext detaches an open from the caller that happened to start it,
// so its cancellation does not fail the other callers waiting on it.
func openContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), openTimeout)
}

// Pools opens connections for registered databases on first use and keeps
// them for the life of the process. The empty name is the default database.
type Pools struct {
	cache  *Cache
	pgCfg  pg.Config
	logger *slog.Logger
	group  singleflight.Group

	mu       sync.RWMutex
	postgres map[string]*pgxpool.Pool
	sqlite   map[string]*sql.DB
}

// NewPools creates a pool registry. pgCfg supplies pool limits and retry
// settings; its connection string is replaced per database.
func NewPools(cache *Cache, pgCfg pg.Config, log *slog.Logger) *Pools {
	if log == nil {
		log = slog.Default()
	}
	return &Pools{
		cache:    cache,
		pgCfg:    pgCfg,
		logger:   log.With(logger.Component("dbconn.pools")),
		postgres: make(map[string]*pgxpool.Pool),
		sqlite:   make(map[string]*sql.DB),
	}
}

func (p *Pools) descriptor(name string) (Descriptor, error) {
	if name == "" {
		return p.cache.Default(), nil
	}
	d, ok := p.cache.Get(name)
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownDatabase, name)
	}
	return d, nil
}

// Postgres returns the pgx pool for name.
func (p *Pools) Postgres(ctx context.Context, name string) (*pgxpool.Pool, error) {
	p.mu.RLock()
	pool, ok := p.postgres[name]
	p.mu.RUnlock()
	if ok {
		return pool, nil
	}

	d, err := p.descriptor(name)
	if err != nil {
		return nil, err
	}
	if d.Engine != EnginePostgres {
		return nil, fmt.Errorf("%w: %s is %s", ErrEngineMismatch, name, d.Engine)
	}

	v, err, _ := p.group.Do("pg:"+name, func() (any, error) {
		p.mu.RLock()
		pool, ok := p.postgres[name]
		p.mu.RUnlock()
		if ok {
			return pool, nil
		}

		openCtx, cancel := openContext(ctx)
		defer cancel()

		pool, err := pg.Connect(openCtx, p.pgCfg.WithConnectionString(d.DSN()))
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", d.Redacted(), err)
		}
		p.mu.Lock()
		p.postgres[name] = pool
		p.mu.Unlock()
		p.logger.InfoContext(ctx, "opened database", logger.Database(d.Redacted()))
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pgxpool.Pool), nil
}

// SQLite returns the database/sql handle for name.
func (p *Pools) SQLite(ctx context.Context, name string) (*sql.DB, error) {
	p.mu.RLock()
	db, ok := p.sqlite[name]
	p.mu.RUnlock()
	if ok {
		return db, nil
	}

	d, err := p.descriptor(name)
	if err != nil {
		return nil, err
	}
	if d.Engine != EngineSQLite {
		return nil, fmt.Errorf("%w: %s is %s", ErrEngineMismatch, name, d.Engine)
	}

	v, err, _ := p.group.Do("sqlite:"+name, func() (any, error) {
		p.mu.RLock()
		db, ok := p.sqlite[name]
		p.mu.RUnlock()
		if ok {
			return db, nil
		}

		openCtx, cancel := openContext(ctx)
		defer cancel()

		db, err := sql.Open("sqlite", d.DSN())
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", d.Name, err)
		}
		if err := db.PingContext(openCtx); err != nil {
			db.Close()
			return nil, fmt.Errorf("open %s: %w", d.Name, err)
		}
		p.mu.Lock()
		p.sqlite[name] = db
		p.mu.Unlock()
		p.logger.InfoContext(ctx, "opened database", logger.Database(d.Name))
		return db, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*sql.DB), nil
}

// Ping opens the database registered under name, if needed, and pings it.
func (p *Pools) Ping(ctx context.Context, name string) error {
	d, err := p.descriptor(name)
	if err != nil {
		return err
	}
	switch d.Engine {
	case EnginePostgres:
		pool, err := p.Postgres(ctx, name)
		if err != nil {
			return err
		}
		return pool.Ping(ctx)
	case EngineSQLite:
		db, err := p.SQLite(ctx, name)
		if err != nil {
			return err
		}
		return db.PingContext(ctx)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedEngine, d.Engine)
}

// Healthcheck pings every open connection.
func (p *Pools) Healthcheck(ctx context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var errs []error
	for name, pool := range p.postgres {
		if err := pool.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	for name, db := range p.sqlite {
		if err := db.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every connection opened so far.
func (p *Pools) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for name, pool := range p.postgres {
		pool.Close()
		delete(p.postgres, name)
	}
	for name, db := range p.sqlite {
		errs = append(errs, db.Close())
		delete(p.sqlite, name)
	}
	return errors.Join(errs...)
}
