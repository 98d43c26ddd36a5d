// Package themes resolves template and static file paths per tenant.
//
// Each root directory holds one subdirectory per theme:
//
//	<root>/<theme>/templates/...    template search path
//	<static>/<theme>/static/...     static search path
//
// A tenant uses its Theme when set, otherwise its slug, followed by the
// themes of its base tenant. Lookups run against the tenant active in the
// request context.
package themes
