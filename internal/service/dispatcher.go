package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
	"github.com/MiniBodegas/Plataforma-sub000/internal/queue"
)

// Dispatcher emits a notification record to the relevant counterparty
// whenever a reservation completes a state change, and mirrors the
// transition onto the broker for downstream consumers.  Every method
// is best-effort by contract: errors are returned so callers can log
// them, but a failed delivery never aborts the business operation that
// triggered it.
type Dispatcher struct {
	notifications NotificationStore
	publisher     EventPublisher // nil disables broker mirroring
}

// NewDispatcher constructs a Dispatcher.  publisher may be nil when no
// broker is configured.
func NewDispatcher(n NotificationStore, p EventPublisher) *Dispatcher {
	if n == nil {
		panic("nil notification store passed to NewDispatcher")
	}
	return &Dispatcher{notifications: n, publisher: p}
}

// Notify appends one notification row for the recipient.  The linked
// reservation id may be nil for standalone reminders.
func (d *Dispatcher) Notify(ctx context.Context, recipientID uint64, tipo, title, message string, reservationID *uint64) error {
	n := &model.Notification{
		RecipientID:   recipientID,
		Tipo:          tipo,
		Title:         title,
		Message:       message,
		ReservationID: reservationID,
	}
	if err := d.notifications.Insert(ctx, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	d.mirror(ctx, recipientID, tipo, reservationID)
	return nil
}

// mirror publishes the transition to the broker.  Publish failures are
// logged here and swallowed; the stored notification row is already
// the source of truth for the inbox.
func (d *Dispatcher) mirror(ctx context.Context, recipientID uint64, tipo string, reservationID *uint64) {
	if d.publisher == nil {
		return
	}
	ev := queue.ReservationEvent{
		EventID:     uuid.NewString(),
		Tipo:        tipo,
		RecipientID: recipientID,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if reservationID != nil {
		ev.ReservationID = *reservationID
	}
	if err := d.publisher.Publish(ctx, ev); err != nil {
		log.Printf("dispatcher: publish %s event failed: %v", tipo, err)
	}
}

// NotifyNewRequest tells a provider that a renter asked for one of
// their units.
func (d *Dispatcher) NotifyNewRequest(ctx context.Context, providerID uint64, res *model.Reservation, wh *model.Warehouse) error {
	span := "desde " + res.StartDate.Format(time.DateOnly)
	if res.EndDate != nil {
		span += " hasta " + res.EndDate.Format(time.DateOnly)
	} else {
		span += " (indefinida)"
	}
	msg := fmt.Sprintf("Nueva solicitud de reserva para la bodega en %s, %s, %s. Total %s.",
		wh.Address, wh.City, span, priceLabel(res.TotalPriceCents))
	return d.Notify(ctx, providerID, model.NotifNuevaSolicitud, "Nueva solicitud de reserva", msg, &res.ID)
}

// NotifyDecision tells the renter that the provider accepted or
// rejected their request.  The rejection reason, when present, is
// included verbatim in the message.
func (d *Dispatcher) NotifyDecision(ctx context.Context, res *model.Reservation) error {
	switch res.Estado {
	case model.EstadoAceptada:
		msg := fmt.Sprintf("Tu reserva #%d fue aceptada. Inicio: %s.",
			res.ID, res.StartDate.Format(time.DateOnly))
		return d.Notify(ctx, res.RenterID, model.NotifReservaAceptada, "Reserva aceptada", msg, &res.ID)
	case model.EstadoRechazada:
		msg := fmt.Sprintf("Tu reserva #%d fue rechazada.", res.ID)
		if res.MotivoRechazo != nil && *res.MotivoRechazo != "" {
			msg += " Motivo: " + *res.MotivoRechazo
		}
		return d.Notify(ctx, res.RenterID, model.NotifReservaRechazada, "Reserva rechazada", msg, &res.ID)
	}
	return fmt.Errorf("no decision notification for estado %q", res.Estado)
}

// NotifyCancelled tells the provider that the renter withdrew a
// pending request, freeing the unit again.
func (d *Dispatcher) NotifyCancelled(ctx context.Context, providerID uint64, res *model.Reservation) error {
	msg := fmt.Sprintf("La solicitud de reserva #%d fue cancelada por el cliente.", res.ID)
	return d.Notify(ctx, providerID, model.NotifReservaCancelada, "Reserva cancelada", msg, &res.ID)
}
