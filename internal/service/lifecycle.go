package service

import (
	"context"
	"log"
	"strings"

	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
	"github.com/MiniBodegas/Plataforma-sub000/internal/repository"
)

// Lifecycle is the state machine governing a reservation request from
// creation to a terminal state.  pendiente is the only state with
// outgoing edges: the provider moves it to aceptada or rechazada, the
// requester to cancelada.  Terminal states admit no transitions; the
// store enforces the guard atomically and reports
// repository.ErrInvalidTransition without mutating anything.
//
// Each transition notifies the counterparty only after the new state
// is durably committed.  Delivery failure is logged and swallowed: the
// transition stands.
type Lifecycle struct {
	reservations ReservationStore
	dispatcher   *Dispatcher
}

// NewLifecycle constructs a Lifecycle.
func NewLifecycle(r ReservationStore, d *Dispatcher) *Lifecycle {
	if r == nil || d == nil {
		panic("nil dependency passed to NewLifecycle")
	}
	return &Lifecycle{reservations: r, dispatcher: d}
}

// Accept moves a pendiente reservation to aceptada.  Only the provider
// owning the reservation's warehouse may accept; anyone else gets
// repository.ErrForbidden.
func (l *Lifecycle) Accept(ctx context.Context, actorID, reservationID uint64) (*model.Reservation, error) {
	_, providerID, _, err := l.reservations.Parties(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if actorID != providerID {
		return nil, repository.ErrForbidden
	}
	res, err := l.reservations.TransitionFromPending(ctx, reservationID, model.EstadoAceptada, nil)
	if err != nil {
		return nil, err
	}
	if err := l.dispatcher.NotifyDecision(ctx, res); err != nil {
		log.Printf("lifecycle: notify acceptance of reservation %d failed: %v", res.ID, err)
	}
	return res, nil
}

// Reject moves a pendiente reservation to rechazada, recording the
// provider's optional free-text reason.  The reason travels into the
// renter's notification message.
func (l *Lifecycle) Reject(ctx context.Context, actorID, reservationID uint64, motivo string) (*model.Reservation, error) {
	_, providerID, _, err := l.reservations.Parties(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if actorID != providerID {
		return nil, repository.ErrForbidden
	}
	var reason *string
	if m := strings.TrimSpace(motivo); m != "" {
		reason = &m
	}
	res, err := l.reservations.TransitionFromPending(ctx, reservationID, model.EstadoRechazada, reason)
	if err != nil {
		return nil, err
	}
	if err := l.dispatcher.NotifyDecision(ctx, res); err != nil {
		log.Printf("lifecycle: notify rejection of reservation %d failed: %v", res.ID, err)
	}
	return res, nil
}

// Cancel lets the requester withdraw their own pendiente reservation,
// releasing the unit's capacity.  The provider is told the request is
// gone so their pending queue stays honest.
func (l *Lifecycle) Cancel(ctx context.Context, actorID, reservationID uint64) (*model.Reservation, error) {
	renterID, providerID, _, err := l.reservations.Parties(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if actorID != renterID {
		return nil, repository.ErrForbidden
	}
	res, err := l.reservations.TransitionFromPending(ctx, reservationID, model.EstadoCancelada, nil)
	if err != nil {
		return nil, err
	}
	if err := l.dispatcher.NotifyCancelled(ctx, providerID, res); err != nil {
		log.Printf("lifecycle: notify cancellation of reservation %d failed: %v", res.ID, err)
	}
	return res, nil
}
