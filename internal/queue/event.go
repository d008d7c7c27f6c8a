// Package queue defines the message payloads exchanged over the
// broker and the background consumer that audits them.
package queue

// ReservationEvent is published whenever a reservation transition has
// been durably committed and its notification dispatched.  EventID is
// a UUID so downstream consumers can deduplicate redeliveries.
type ReservationEvent struct {
	EventID       string `json:"event_id"`
	Tipo          string `json:"tipo"`
	ReservationID uint64 `json:"reservation_id,omitempty"`
	RecipientID   uint64 `json:"recipient_id"`
	OccurredAt    string `json:"occurred_at"`
}
