package repository

import "errors"

// ErrNotFound covers both a genuinely absent row and a row outside the
// caller's accessible scope; the two are deliberately indistinguishable so
// existence never leaks across tenant boundaries.
var ErrNotFound = errors.New("not found")
