// Package proxy restores the client view of a request that arrived through
// a reverse proxy or CDN.
//
// Tenant resolution keys on the request host, so deployments behind a proxy
// that rewrites Host must trust X-Forwarded-Host. Middleware does that,
// records the client IP in the context, and is meant to run before the
// tenant middleware. Only enable it when every request passes through a
// proxy that overwrites these headers.
package proxy
