package model

import "time"

// Reservation states as stored in the reservations.estado column.
// pendiente is the only non-terminal state; aceptada, rechazada and
// cancelada are terminal and can never transition again.
const (
	EstadoPendiente = "pendiente"
	EstadoAceptada  = "aceptada"
	EstadoRechazada = "rechazada"
	EstadoCancelada = "cancelada"
)

// IsTerminalEstado reports whether the given state admits no further
// transitions.
func IsTerminalEstado(estado string) bool {
	switch estado {
	case EstadoAceptada, EstadoRechazada, EstadoCancelada:
		return true
	}
	return false
}

// Reservation records a renter's request for one unit of a warehouse
// pool over a date range.  EndDate is nil for an indefinite
// reservation, which consumes one unit of capacity from StartDate
// onward until the request reaches a terminal state.  Reservations are
// never deleted; state is terminal, not removed.
//
// Fields:
//  ID              – primary key identifier.
//  RenterID        – user who made the request.
//  WarehouseID     – warehouse pool being booked.
//  StartDate       – first occupied day (date precision, UTC).
//  EndDate         – last occupied day inclusive, nil when indefinite.
//  Estado          – lifecycle state (see constants above).
//  Services        – ordered set of requested add-on service names.
//  TotalPriceCents – computed total price at request time.
//  MotivoRechazo   – provider's free-text rejection reason, if any.
//  DecidedAt       – when the provider accepted or rejected.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              uint64     // reservations.id
	RenterID        uint64     // reservations.renter_id
	WarehouseID     uint64     // reservations.warehouse_id
	StartDate       time.Time  // reservations.start_date
	EndDate         *time.Time // reservations.end_date (nullable)
	Estado          string     // reservations.estado
	Services        []string   // reservations.servicios (comma-joined set)
	TotalPriceCents uint64     // reservations.total_price_cents
	MotivoRechazo   *string    // reservations.motivo_rechazo (nullable)
	DecidedAt       *time.Time // reservations.decided_at (nullable)
	CreatedAt       time.Time  // reservations.created_at
	UpdatedAt       time.Time  // reservations.updated_at
}

// Indefinite reports whether the reservation has no declared end date.
func (r *Reservation) Indefinite() bool { return r.EndDate == nil }
