package repository

import "errors"

// ErrNotFound is returned by repositories when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
// The storage layer's constraints are the authority for concurrent
// first-time registrations; callers re-fetch by the unique key on this error.
var ErrDuplicate = errors.New("duplicate record")
