package tenant_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multitier/pkg/tenant"
)

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	acme := newTenant("acme", "", time.Hour)
	beta := newTenant("beta", "beta.io", time.Hour)
	def := newTenant("default", "", 24*time.Hour)
	store := newSliceStore(acme, beta, def)
	resolver := tenant.NewResolver(store, exampleConfig())
	ctx := context.Background()

	t.Run("subdomain of app domain", func(t *testing.T) {
		t.Parallel()

		got, prefix, err := resolver.Resolve(ctx, "acme.example.com", "/")
		require.NoError(t, err)
		assert.Equal(t, acme, got)
		assert.Empty(t, prefix)
	})

	t.Run("path prefix on bare app domain", func(t *testing.T) {
		t.Parallel()

		got, prefix, err := resolver.Resolve(ctx, "example.com", "/acme/dashboard")
		require.NoError(t, err)
		assert.Equal(t, acme, got)
		assert.Equal(t, "acme", prefix)

		got, prefix, err = resolver.Resolve(ctx, "example.com", "/acme")
		require.NoError(t, err)
		assert.Equal(t, acme, got)
		assert.Equal(t, "acme", prefix)
	})

	t.Run("path prefix must be a whole segment", func(t *testing.T) {
		t.Parallel()

		for _, path := range []string{"/acme_x/dashboard", "/acme.html", "/acme-x"} {
			got, prefix, err := resolver.Resolve(ctx, "example.com", path)
			require.NoError(t, err, path)
			assert.Equal(t, def, got, path)
			assert.Empty(t, prefix, path)
		}
	})

	t.Run("explicit domain ignores path", func(t *testing.T) {
		t.Parallel()

		got, prefix, err := resolver.Resolve(ctx, "beta.io", "/anything")
		require.NoError(t, err)
		assert.Equal(t, beta, got)
		assert.Empty(t, prefix)
	})

	t.Run("unknown subdomain", func(t *testing.T) {
		t.Parallel()

		_, _, err := resolver.Resolve(ctx, "unknown.example.com", "/")
		require.ErrorIs(t, err, tenant.ErrTenantNotFound)
		assert.Contains(t, err.Error(), "unknown.example.com")
		assert.Contains(t, err.Error(), `"unknown"`)
	})

	t.Run("unknown host", func(t *testing.T) {
		t.Parallel()

		_, _, err := resolver.Resolve(ctx, "other.org", "/acme/")
		require.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("bare app domain falls back to default tenant", func(t *testing.T) {
		t.Parallel()

		got, prefix, err := resolver.Resolve(ctx, "example.com", "/")
		require.NoError(t, err)
		assert.Equal(t, def, got)
		assert.Empty(t, prefix)
	})

	t.Run("unknown path segment clears prefix", func(t *testing.T) {
		t.Parallel()

		got, prefix, err := resolver.Resolve(ctx, "example.com", "/about/team")
		require.NoError(t, err)
		assert.Equal(t, def, got)
		assert.Empty(t, prefix, "prefix must not leak when the default tenant answers")
	})

	t.Run("path is ignored on subdomain", func(t *testing.T) {
		t.Parallel()

		_, _, err := resolver.Resolve(ctx, "nope.example.com", "/acme/")
		require.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("port and case are normalized", func(t *testing.T) {
		t.Parallel()

		got, prefix, err := resolver.Resolve(ctx, "ACME.Example.com:8443", "/")
		require.NoError(t, err)
		assert.Equal(t, acme, got)
		assert.Empty(t, prefix)
	})
}

func TestResolver_DomainPriority(t *testing.T) {
	t.Parallel()

	// Slug "shop" is claimed by a subdomain tenant, while another tenant
	// owns shop.example.com as its explicit domain.
	slugOnly := newTenant("shop", "", 0)
	owner := newTenant("store", "shop.example.com", 48*time.Hour)
	resolver := tenant.NewResolver(newSliceStore(slugOnly, owner), exampleConfig())

	got, prefix, err := resolver.Resolve(context.Background(), "shop.example.com", "/")
	require.NoError(t, err)
	assert.Equal(t, owner, got)
	assert.Empty(t, prefix)
}

func TestResolver_Inactive(t *testing.T) {
	t.Parallel()

	off := newTenant("off", "", 0)
	off.IsActive = false
	store := newSliceStore(off)

	t.Run("rejected when active tenants are required", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(store, exampleConfig())
		_, _, err := resolver.Resolve(context.Background(), "off.example.com", "/")
		require.ErrorIs(t, err, tenant.ErrInactiveTenant)
	})

	t.Run("allowed otherwise", func(t *testing.T) {
		t.Parallel()

		cfg := exampleConfig()
		cfg.RequireActive = false
		resolver := tenant.NewResolver(store, cfg)
		got, _, err := resolver.Resolve(context.Background(), "off.example.com", "/")
		require.NoError(t, err)
		assert.Equal(t, off, got)
	})
}

func TestResolver_Lookup(t *testing.T) {
	t.Parallel()

	t.Run("default slug only on app domain", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		store.On("Lookup", mock.Anything, tenant.Lookup{Host: "acme.example.com", Candidate: "acme"}).
			Return([]*tenant.Tenant{}, nil).Once()
		store.On("Lookup", mock.Anything, tenant.Lookup{Host: "example.com", Candidate: "acme", DefaultSlug: "default"}).
			Return([]*tenant.Tenant{}, nil).Once()

		resolver := tenant.NewResolver(store, exampleConfig())
		_, _, err := resolver.Resolve(context.Background(), "acme.example.com", "/")
		require.ErrorIs(t, err, tenant.ErrTenantNotFound)
		_, _, err = resolver.Resolve(context.Background(), "example.com", "/acme")
		require.ErrorIs(t, err, tenant.ErrTenantNotFound)

		store.AssertExpectations(t)
	})

	t.Run("wildcard app domain", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		store.On("Lookup", mock.Anything, tenant.Lookup{Host: "acme.example.com"}).
			Return([]*tenant.Tenant{}, nil).Once()

		resolver := tenant.NewResolver(store, tenant.Config{AllowedHosts: []string{"*"}, DefaultSlug: "default"})
		_, _, err := resolver.Resolve(context.Background(), "acme.example.com", "/acme")
		require.ErrorIs(t, err, tenant.ErrTenantNotFound)

		store.AssertExpectations(t)
	})

	t.Run("store failure is not a not found", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("connection refused")
		store := &mockStore{}
		store.On("Lookup", mock.Anything, mock.Anything).Return(nil, boom)

		resolver := tenant.NewResolver(store, exampleConfig())
		_, _, err := resolver.Resolve(context.Background(), "acme.example.com", "/")
		require.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, tenant.ErrTenantNotFound)
	})
}

func TestRank(t *testing.T) {
	t.Parallel()

	older := newTenant("older", "", 2*time.Hour)
	newer := newTenant("newer", "", time.Hour)
	other := newTenant("other", "other.io", 3*time.Hour)
	exact := newTenant("exact", "exact.io", 4*time.Hour)

	got := tenant.Rank([]*tenant.Tenant{older, newer, other, exact}, "exact.io")
	assert.Equal(t, []*tenant.Tenant{exact, other, newer, older}, got)
}

func TestAppDomain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "example.com", tenant.AppDomain([]string{".example.com", "other.com"}))
	assert.Equal(t, "example.com", tenant.AppDomain([]string{"Example.COM"}))
	assert.Empty(t, tenant.AppDomain([]string{"*"}))
	assert.Empty(t, tenant.AppDomain(nil))
}

func TestNormalizeHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"example.com", "example.com"},
		{"EXAMPLE.com:8000", "example.com"},
		{"example.com.", "example.com"},
		{"bücher.example", "xn--bcher-kva.example"},
		{"127.0.0.1:8000", "127.0.0.1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tenant.NormalizeHost(tt.in), tt.in)
	}
}
