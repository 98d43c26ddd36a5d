// Package requestid tags every request with an identifier, taken from the
// X-Request-ID header when it is well formed and generated otherwise.
//
// LoggerExtractor adds the identifier to every log record written with the
// request context, next to the tenant attribute added by the tenant package.
package requestid
