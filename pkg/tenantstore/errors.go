package tenantstore

import "errors"

// ErrDuplicate is returned when a slug or domain is already taken.
var ErrDuplicate = errors.New("tenant slug or domain already exists")
