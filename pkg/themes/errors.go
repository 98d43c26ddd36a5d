package themes

import "errors"

// ErrTemplateNotFound is returned by the loader when no theme directory
// holds the requested template.
var ErrTemplateNotFound = errors.New("template not found")
