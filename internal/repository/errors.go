// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values allow higher layers
// such as services and handlers to distinguish between failure
// scenarios without string matching.  Not-found conditions are
// reported as sql.ErrNoRows by the individual queries.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, e.g. a provider accepting a reservation on
// another company's warehouse.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write would violate the capacity
// invariant: the requested days already have as many active
// reservations as the pool has units.  This is the canonical conflict
// source; the in-engine availability check is only a fast path.
// Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrInvalidTransition is returned when a lifecycle change is
// attempted on a reservation that is no longer pendiente.  Terminal
// states admit no further transitions.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrUnitUnavailable is returned when the targeted warehouse exists
// but its provider has flagged it unavailable for new bookings.
var ErrUnitUnavailable = errors.New("unit unavailable")
