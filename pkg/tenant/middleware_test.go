package tenant_test

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multitier/pkg/tenant"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	acme := newTenant("acme", "", 0)
	off := newTenant("off", "", 0)
	off.IsActive = false
	resolver := tenant.NewResolver(newSliceStore(acme, off), exampleConfig())

	t.Run("binds tenant and prefix", func(t *testing.T) {
		t.Parallel()

		handler := tenant.Middleware(resolver, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := tenant.FromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, acme, got)
			assert.Equal(t, "acme", tenant.PathPrefix(r.Context()))
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "http://example.com/acme/dashboard", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		handler := tenant.Middleware(resolver, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}))

		req := httptest.NewRequest(http.MethodGet, "http://unknown.example.com/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Tenant not found")
	})

	t.Run("inactive", func(t *testing.T) {
		t.Parallel()

		handler := tenant.Middleware(resolver, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}))

		req := httptest.NewRequest(http.MethodGet, "http://off.example.com/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("registration failure", func(t *testing.T) {
		t.Parallel()

		reg := tenant.RegistrarFunc(func(context.Context, *tenant.Tenant) error {
			return errors.New("disk full")
		})
		handler := tenant.Middleware(resolver, reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}))

		req := httptest.NewRequest(http.MethodGet, "http://acme.example.com/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("skip paths", func(t *testing.T) {
		t.Parallel()

		called := false
		handler := tenant.Middleware(resolver, nil, tenant.WithSkipPaths("/healthz"))(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				_, ok := tenant.FromContext(r.Context())
				assert.False(t, ok)
			}))

		req := httptest.NewRequest(http.MethodGet, "http://unknown.example.com/healthz", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.True(t, called)
	})

	t.Run("custom error handler", func(t *testing.T) {
		t.Parallel()

		var got error
		handler := tenant.Middleware(resolver, nil, tenant.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			got = err
			w.WriteHeader(http.StatusTeapot)
		}))(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodGet, "http://unknown.example.com/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.ErrorIs(t, got, tenant.ErrTenantNotFound)
	})
}

func TestMiddleware_ClearsSlot(t *testing.T) {
	t.Parallel()

	resolver := tenant.NewResolver(newSliceStore(newTenant("acme", "", 0)), exampleConfig())

	t.Run("after normal return", func(t *testing.T) {
		t.Parallel()

		var slot *tenant.Current
		handler := tenant.Middleware(resolver, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slot, _ = tenant.CurrentFromContext(r.Context())
			require.NotNil(t, slot.Tenant())
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://acme.example.com/", nil))
		require.NotNil(t, slot)
		assert.Nil(t, slot.Tenant())
		assert.Empty(t, slot.PathPrefix())
	})

	t.Run("after panic", func(t *testing.T) {
		t.Parallel()

		var slot *tenant.Current
		handler := tenant.Middleware(resolver, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slot, _ = tenant.CurrentFromContext(r.Context())
			panic("boom")
		}))

		assert.Panics(t, func() {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://acme.example.com/", nil))
		})
		require.NotNil(t, slot)
		assert.Nil(t, slot.Tenant())
	})

	t.Run("after cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		var slot *tenant.Current
		handler := tenant.Middleware(resolver, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slot, _ = tenant.CurrentFromContext(r.Context())
			cancel()
			<-r.Context().Done()
		}))

		req := httptest.NewRequest(http.MethodGet, "http://acme.example.com/", nil).WithContext(ctx)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		require.NotNil(t, slot)
		assert.Nil(t, slot.Tenant())
	})

	t.Run("after resolution failure", func(t *testing.T) {
		t.Parallel()

		// A slot left over from an earlier resolution must not survive a
		// failed one.
		ctx := tenant.WithTenant(context.Background(), newTenant("stale", "", 0))
		slot, _ := tenant.CurrentFromContext(ctx)
		handler := tenant.Middleware(resolver, nil)(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodGet, "http://unknown.example.com/", nil).WithContext(ctx)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Nil(t, slot.Tenant())
	})
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	handler := tenant.RequireTenant(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(tenant.WithTenant(req.Context(), newTenant("acme", "", 0)))
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestScheme(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	assert.Equal(t, "http", tenant.RequestScheme(req))

	req.TLS = &tls.ConnectionState{}
	assert.Equal(t, "https", tenant.RequestScheme(req))

	req = httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	req.Header.Set("X-Forwarded-Proto", "HTTPS, http")
	assert.Equal(t, "https", tenant.RequestScheme(req))
}
