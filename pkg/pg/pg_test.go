package pg_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multitier/pkg/pg"
)

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	dup := fmt.Errorf("insert tenant: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, pg.IsDuplicateKeyError(dup))
	assert.False(t, pg.IsDuplicateKeyError(fk))
	assert.True(t, pg.IsForeignKeyViolationError(fk))
	assert.False(t, pg.IsDuplicateKeyError(nil))

	assert.True(t, pg.IsNotFoundError(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, pg.IsNotFoundError(errors.New("other")))
}

func TestConnect_Validation(t *testing.T) {
	t.Parallel()

	_, err := pg.Connect(context.Background(), pg.Config{})
	require.ErrorIs(t, err, pg.ErrEmptyConnectionString)

	_, err = pg.Connect(context.Background(), pg.Config{ConnectionString: "postgres://%zz"})
	require.ErrorIs(t, err, pg.ErrFailedToParseDBConfig)
}

func TestMigrate_RequiresSource(t *testing.T) {
	t.Parallel()

	err := pg.Migrate(context.Background(), nil, pg.Config{}, nil, "migrations", nil)
	require.ErrorIs(t, err, pg.ErrMigrationsNotProvided)

	err = pg.Migrate(context.Background(), nil, pg.Config{}, fstest.MapFS{}, "", nil)
	require.ErrorIs(t, err, pg.ErrFailedToApplyMigrations)
}

func TestConfig_WithConnectionString(t *testing.T) {
	t.Parallel()

	base := pg.Config{ConnectionString: "postgres://main", MaxOpenConns: 4}
	cfg := base.WithConnectionString("postgres://tenant")
	assert.Equal(t, "postgres://tenant", cfg.ConnectionString)
	assert.Equal(t, int32(4), cfg.MaxOpenConns)
	assert.Equal(t, "postgres://main", base.ConnectionString)
}
