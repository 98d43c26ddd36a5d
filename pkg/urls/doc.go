// Package urls builds absolute URLs that point at a tenant, and keeps the
// route table free of tenant path prefixes.
//
// A tenant with an explicit domain is linked on that domain. Others are
// linked on a subdomain of the base domain, or under a "/<slug>" path
// prefix when the tenant is configured that way or when the base domain is
// localhost, where subdomains are rarely available.
//
//	b := urls.NewBuilder(cfg)
//	link := b.AbsoluteURI(ctx, "/billing", urls.WithRequest(r))
//
// PrefixRoutes strips the active path prefix before routing so handlers are
// registered once, without prefixes. Path adds it back when rendering
// links relative to the current tenant.
package urls
