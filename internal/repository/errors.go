// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrConflict signals that a state transition cannot proceed
// because the row is no longer in the expected state (e.g. confirming a
// payment report that has already been decided).
package repository

import "errors"

// ErrConflict is returned when an update cannot be performed because of
// conflicting state, such as deciding a payment report that is no longer
// pending. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
