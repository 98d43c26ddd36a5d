package tenant

import (
	"errors"
	"regexp"

	"github.com/dmitrymomot/multitier/pkg/validator"
)

// MaxSlugLength follows the limit most DNS providers put on subdomains.
const MaxSlugLength = 25

var (
	slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	// pathPrefixPattern matches a whole first path segment usable as a prefix.
	pathPrefixPattern = regexp.MustCompile(`^/([a-zA-Z0-9\-]+)(?:/|$)`)
)

// ValidSlug reports whether s can be used as a tenant slug.
func ValidSlug(s string) bool {
	return s != "" && len(s) <= MaxSlugLength && slugPattern.MatchString(s)
}

// Validate checks the slug and domain invariants before a tenant is stored.
// The returned error wraps both ErrInvalidIdentifier and validator.ValidationErrors.
func (t *Tenant) Validate() error {
	err := validator.Apply(
		validator.RequiredString("slug", t.Slug),
		validator.MaxLenString("slug", t.Slug, MaxSlugLength),
		validator.MatchesPattern("slug", t.Slug, slugPattern, "subdomain"),
		validator.When(t.Domain != "", validator.NoWhitespace("domain", t.Domain)),
		validator.When(t.Domain != "", validator.ValidHost("domain", t.Domain)),
		validator.When(t.DBHost != "", validator.ValidHost("db_host", t.DBHost)),
	)
	if err != nil {
		return errors.Join(ErrInvalidIdentifier, err)
	}
	return nil
}
