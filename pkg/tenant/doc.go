// Package tenant resolves the tenant ("site") serving an HTTP request and
// keeps it in a request-scoped slot.
//
// A tenant is found by its explicit domain, by a subdomain of the app
// domain, or by the first path segment when the request hits the bare app
// domain. Explicit domains always win over slug matches; among equals the
// most recently created tenant wins.
//
// Basic usage:
//
//	resolver := tenant.NewResolver(store, tenant.Config{
//		AllowedHosts: []string{"example.com"},
//		DefaultSlug:  "default",
//	})
//	r.Use(tenant.Middleware(resolver, registrar))
//
// Handlers read the active tenant with FromContext and the URL prefix the
// request was routed through with PathPrefix:
//
//	t, ok := tenant.FromContext(r.Context())
//
// Before a tenant becomes visible, Set hands it to a Registrar that makes
// its database available. When the handler returns, panics, or the client
// cancels, the middleware clears the slot, so goroutines that outlive the
// request observe no tenant rather than stale data.
//
// Credentials decrypts the secret-bearing fields of a tenant. Values that
// cannot be decrypted are logged and reported as empty.
package tenant
