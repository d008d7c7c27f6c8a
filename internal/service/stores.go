// Package service implements the reservation lifecycle and
// notification engine on top of the repository layer.  Services depend
// on narrow store interfaces so the state machine and inbox logic can
// be exercised against in-memory fakes.
package service

import (
	"context"
	"fmt"

	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
	"github.com/MiniBodegas/Plataforma-sub000/internal/queue"
)

// WarehouseStore is the slice of warehouse persistence the engine needs.
type WarehouseStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Warehouse, error)
	OwnerOf(ctx context.Context, warehouseID uint64) (uint64, error)
}

// ReservationStore is implemented by repository.ReservationRepo.
// CreateLocked must enforce the capacity invariant at write time and
// return repository.ErrConflict when it would be violated.
type ReservationStore interface {
	ListActive(ctx context.Context, warehouseID uint64) ([]model.Reservation, error)
	CreateLocked(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	Parties(ctx context.Context, reservationID uint64) (renterID, providerID, warehouseID uint64, err error)
	TransitionFromPending(ctx context.Context, id uint64, estado string, motivo *string) (*model.Reservation, error)
}

// NotificationStore is implemented by repository.NotificationRepo.
type NotificationStore interface {
	Insert(ctx context.Context, n *model.Notification) error
	CountUnread(ctx context.Context, userID uint64) (int, error)
	ListByRecipient(ctx context.Context, userID uint64, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uint64) error
	MarkManyRead(ctx context.Context, userID uint64, ids []uint64) error
	MarkAllRead(ctx context.Context, userID uint64) error
}

// EventPublisher pushes reservation lifecycle events to the broker.
// Implementations must be best-effort: an error is informational and
// never rolls back the operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// ValidationError reports a missing or malformed input field.  It is
// surfaced to the caller as an actionable message.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
