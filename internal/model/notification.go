package model

import "time"

// Notification types written to the notifications.tipo column.  One
// notification is produced per reservation transition, addressed to
// the counterparty of whoever triggered the change.
const (
	NotifNuevaSolicitud   = "nueva_solicitud"
	NotifReservaAceptada  = "reserva_aceptada"
	NotifReservaRechazada = "reserva_rechazada"
	NotifReservaCancelada = "reserva_cancelada"
	NotifRecordatorio     = "recordatorio"
)

// Notification is an in-app message for a user, created as a
// side-effect of a reservation transition.  Only the read flag is ever
// mutated after creation; rows are never deleted.
//
// Fields:
//  ID            – primary key identifier.
//  RecipientID   – user the notification is addressed to.
//  Tipo          – one of the type constants above.
//  Title         – short headline shown in the inbox.
//  Message       – full human-readable text.
//  ReservationID – linked reservation, nil for standalone reminders.
//  IsRead        – whether the recipient has seen the notification.
//  ReadAt        – when the read flag was set.
//  CreatedAt     – creation timestamp.
type Notification struct {
	ID            uint64     // notifications.id
	RecipientID   uint64     // notifications.recipient_id
	Tipo          string     // notifications.tipo
	Title         string     // notifications.title
	Message       string     // notifications.message
	ReservationID *uint64    // notifications.reservation_id (nullable)
	IsRead        bool       // notifications.is_read
	ReadAt        *time.Time // notifications.read_at (nullable)
	CreatedAt     time.Time  // notifications.created_at
}
