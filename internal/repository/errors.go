package repository

import "errors"

// ErrVersionConflict is returned when a write raced with another writer of
// the same item.
var ErrVersionConflict = errors.New("review item was modified concurrently")
