// Package validator provides small declarative validation rules used to
// check tenant records before they are persisted.
//
// Each exported helper returns a Rule that pairs a Check function with
// translation-friendly error metadata. Apply evaluates rules and aggregates
// failures into ValidationErrors, which implements error.
//
//	err := validator.Apply(
//	    validator.RequiredString("slug", t.Slug),
//	    validator.MatchesPattern("slug", t.Slug, slugRe, "subdomain"),
//	    validator.ValidHost("domain", t.Domain),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//	    // inspect verrs.Fields()
//	}
//
// Rules are stateless and goroutine-safe.
package validator
