package telemetry_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multitier/pkg/telemetry"
	"github.com/dmitrymomot/multitier/pkg/tenant"
	"github.com/dmitrymomot/multitier/pkg/tenantstore"
)

// Not parallel: installs the global tracer provider.
func TestInitTracer_ExportsResolveSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := telemetry.InitTracer(
		telemetry.Config{Stdout: true, ServiceName: "multitier-test"},
		&buf,
		slog.New(slog.DiscardHandler),
	)
	require.NoError(t, err)

	store := tenantstore.NewMemory(&tenant.Tenant{ID: uuid.New(), Slug: "acme", IsActive: true})
	resolver := tenant.NewResolver(store, tenant.Config{AllowedHosts: []string{"example.com"}, DefaultSlug: "default"})
	handler := telemetry.Middleware("testsite")(tenant.Middleware(resolver, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }),
	))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://acme.example.com/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	require.NoError(t, shutdown(context.Background()))
	out := buf.String()
	assert.Contains(t, out, "tenant.resolve")
	assert.Contains(t, out, "testsite")
	assert.Contains(t, out, "multitier-test")
}

func TestInitTracer_Disabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	shutdown, err := telemetry.InitTracer(telemetry.Config{}, &buf, nil)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	assert.Empty(t, buf.String())
}
