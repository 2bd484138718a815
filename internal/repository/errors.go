package repository

import "errors"

// ErrNotFound is returned when an update or delete touches zero rows. It is a
// normal result value, not a storage failure: handlers map it to 404.
var ErrNotFound = errors.New("not found")
