package tenant_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multitier/pkg/secrets"
	"github.com/dmitrymomot/multitier/pkg/tenant"
	"github.com/dmitrymomot/multitier/pkg/validator"
)

func TestTenant_Accessors(t *testing.T) {
	t.Parallel()

	acme := &tenant.Tenant{Slug: "acme"}
	assert.Equal(t, "acme", acme.AsSubdomain("default"))
	assert.Equal(t, "", (&tenant.Tenant{Slug: "default"}).AsSubdomain("default"))
	assert.Equal(t, "acme", acme.PrintableName())
	assert.Equal(t, []string{"acme"}, acme.Themes())
	assert.Equal(t, "acme", acme.DatabaseName())
	assert.False(t, acme.HasCustomDatabase())

	beta := &tenant.Tenant{Slug: "beta", Domain: "beta.io", Theme: "dark", DBName: "beta_db"}
	assert.Equal(t, "beta.io", beta.PrintableName())
	assert.Equal(t, []string{"dark"}, beta.Themes())
	assert.Equal(t, "beta_db", beta.DatabaseName())
	assert.True(t, beta.HasCustomDatabase())
}

func TestTenant_FromEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "noreply@acme.io",
		(&tenant.Tenant{EmailDefaultFrom: "noreply@acme.io", EmailHostUser: "smtp@acme.io"}).FromEmail("root@localhost"))
	assert.Equal(t, "smtp@acme.io",
		(&tenant.Tenant{EmailHostUser: "smtp@acme.io"}).FromEmail("root@localhost"))
	assert.Equal(t, "root@localhost",
		(&tenant.Tenant{EmailHostUser: "apikey"}).FromEmail("root@localhost"))
}

func TestTenant_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tenant tenant.Tenant
		fields []string
	}{
		{name: "valid", tenant: tenant.Tenant{Slug: "acme-1_x", Domain: "acme.io"}},
		{name: "empty slug", tenant: tenant.Tenant{}, fields: []string{"slug"}},
		{name: "slug too long", tenant: tenant.Tenant{Slug: "abcdefghijklmnopqrstuvwxyz"}, fields: []string{"slug"}},
		{name: "slug with dot", tenant: tenant.Tenant{Slug: "a.b"}, fields: []string{"slug"}},
		{name: "domain with space", tenant: tenant.Tenant{Slug: "acme", Domain: "acme .io"}, fields: []string{"domain"}},
		{name: "invalid db host", tenant: tenant.Tenant{Slug: "acme", DBHost: "not a host"}, fields: []string{"db_host"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.tenant.Validate()
			if len(tt.fields) == 0 {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tenant.ErrInvalidIdentifier)
			verrs := validator.ExtractValidationErrors(err)
			require.NotNil(t, verrs)
			for _, f := range tt.fields {
				assert.True(t, verrs.Has(f), f)
			}
		})
	}
}

func TestValidSlug(t *testing.T) {
	t.Parallel()

	assert.True(t, tenant.ValidSlug("acme"))
	assert.False(t, tenant.ValidSlug(""))
	assert.False(t, tenant.ValidSlug("has space"))
}

func TestTenant_Tags(t *testing.T) {
	t.Parallel()

	t.Run("add and remove", func(t *testing.T) {
		t.Parallel()

		ten := &tenant.Tenant{Extra: `{"plan":"pro"}`}
		ten.AddTags("b", "a")
		assert.Equal(t, []string{"b", "a"}, ten.Tags())

		ten.AddTags("c", "a")
		assert.Equal(t, []string{"c", "a", "b"}, ten.Tags())
		assert.Contains(t, ten.Extra, `"plan":"pro"`)

		ten.RemoveTags("a", "missing")
		assert.Equal(t, []string{"c", "b"}, ten.Tags())
	})

	t.Run("invalid extra is reset", func(t *testing.T) {
		t.Parallel()

		ten := &tenant.Tenant{Extra: "not json"}
		assert.Empty(t, ten.Tags())
		ten.AddTags("x")
		assert.JSONEq(t, `{"tags":["x"]}`, ten.Extra)
	})
}

func TestBase(t *testing.T) {
	t.Parallel()

	base := newTenant("base", "", 0)
	alias := newTenant("alias", "", 0)
	alias.BaseID = &base.ID
	store := newSliceStore(base, alias)

	got, err := tenant.Base(context.Background(), store, alias)
	require.NoError(t, err)
	assert.Equal(t, base, got)

	got, err = tenant.Base(context.Background(), store, base)
	require.NoError(t, err)
	assert.Nil(t, got)

	missing := uuid.New()
	alias.BaseID = &missing
	_, err = tenant.Base(context.Background(), store, alias)
	assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
}

func TestCredentials(t *testing.T) {
	t.Parallel()

	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		creds := tenant.NewCredentials(key, nil)
		ten := newTenant("acme", "", 0)
		require.NoError(t, creds.SetDBPassword(ten, "s3cret"))
		require.NoError(t, creds.SetEmailHostPassword(ten, "smtp-pass"))

		assert.NotEqual(t, "s3cret", ten.DBPassword)
		assert.Equal(t, "s3cret", creds.DBPassword(ctx, ten))
		assert.Equal(t, "smtp-pass", creds.EmailHostPassword(ctx, ten))
	})

	t.Run("wrong key yields empty value", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(slog.NewTextHandler(&buf, nil))
		ten := newTenant("acme", "", 0)
		require.NoError(t, tenant.NewCredentials(key, nil).SetDBPassword(ten, "s3cret"))

		other, err := secrets.GenerateKey()
		require.NoError(t, err)
		assert.Empty(t, tenant.NewCredentials(other, log).DBPassword(ctx, ten))
		assert.Contains(t, buf.String(), "cannot read tenant secret")
		assert.Contains(t, buf.String(), "tenant=acme")
	})

	t.Run("values are bound to the tenant", func(t *testing.T) {
		t.Parallel()

		creds := tenant.NewCredentials(key, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
		a := newTenant("a", "", 0)
		b := newTenant("b", "", 0)
		require.NoError(t, creds.SetDBPassword(a, "s3cret"))
		b.DBPassword = a.DBPassword
		assert.Empty(t, creds.DBPassword(ctx, b))
	})

	t.Run("no app key stores plain text", func(t *testing.T) {
		t.Parallel()

		creds := tenant.NewCredentials(nil, nil)
		ten := newTenant("acme", "", 0)
		require.NoError(t, creds.SetDBPassword(ten, "plain"))
		assert.Equal(t, "plain", ten.DBPassword)
		assert.Equal(t, "plain", creds.DBPassword(ctx, ten))
	})
}
