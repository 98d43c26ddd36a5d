package validator

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"unicode"
)

// hostPattern accepts DNS hostnames made of letter/digit labels joined by
// dots, with hyphens allowed inside a label and an optional trailing dot.
var hostPattern = regexp.MustCompile(
	`^(?:[a-z0-9\x{00a1}-\x{ffff}](?:[a-z0-9\x{00a1}-\x{ffff}-]{0,61}[a-z0-9\x{00a1}-\x{ffff}])?\.)*` +
		`(?:[a-z0-9\x{00a1}-\x{ffff}](?:[a-z0-9\x{00a1}-\x{ffff}-]{0,61}[a-z0-9\x{00a1}-\x{ffff}])?)\.?$`)

// RequiredString validates that a string is not empty after trimming whitespace.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:             field,
			Message:           "field is required",
			TranslationKey:    "validation.required",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return len(value) <= max
		},
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at most %d characters long", max),
			TranslationKey:    "validation.max_length",
			TranslationValues: map[string]any{"field": field, "max": max},
		},
	}
}

// MatchesPattern validates value against a precompiled pattern.
func MatchesPattern(field, value string, re *regexp.Regexp, description string) Rule {
	return Rule{
		Check: func() bool {
			return re.MatchString(value)
		},
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must match %s pattern", description),
			TranslationKey: "validation.regex_pattern",
			TranslationValues: map[string]any{
				"field":       field,
				"pattern":     re.String(),
				"description": description,
			},
		},
	}
}

// NoWhitespace validates that a string contains no whitespace characters.
func NoWhitespace(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.IndexFunc(value, unicode.IsSpace) < 0
		},
		Error: ValidationError{
			Field:             field,
			Message:           "must not contain whitespace characters",
			TranslationKey:    "validation.no_whitespace",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// ValidHost validates a bare host: a DNS name or an IP literal, without
// scheme, port or path.
func ValidHost(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if value == "" || len(value) > 253 {
				return false
			}
			if net.ParseIP(strings.Trim(value, "[]")) != nil {
				return true
			}
			return hostPattern.MatchString(strings.ToLower(value))
		},
		Error: ValidationError{
			Field:             field,
			Message:           "must be a valid host, ex: example.com",
			TranslationKey:    "validation.host",
			TranslationValues: map[string]any{"field": field},
		},
	}
}
