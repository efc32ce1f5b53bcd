package storage

import "errors"

// ErrNotFound is returned when no object exists at the resolved key.
var ErrNotFound = errors.New("object not found")

// ErrInvalidID is returned when an identifier fails syntax validation.
// No backend call is made for an invalid identifier.
var ErrInvalidID = errors.New("invalid identifier")

// ErrUnavailable is returned when the backend itself failed: network errors,
// auth failures, throttling, disk errors. It is deliberately distinct from
// ErrNotFound so an outage never looks like missing data.
var ErrUnavailable = errors.New("storage backend unavailable")
