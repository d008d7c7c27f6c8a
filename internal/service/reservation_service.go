package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/MiniBodegas/Plataforma-sub000/internal/availability"
	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
	"github.com/MiniBodegas/Plataforma-sub000/internal/repository"
)

// CreateRequest carries the validated-at-the-boundary fields of a new
// reservation request.  Indefinite marks an explicitly open-ended
// booking; when it is false and EndDate is nil, the single-instance
// policy of one calendar month is applied.
type CreateRequest struct {
	RenterID    uint64
	WarehouseID uint64
	StartDate   time.Time
	EndDate     *time.Time
	Indefinite  bool
	Services    []string
}

// ReservationService validates and persists new reservation requests
// against current availability and unit state.
type ReservationService struct {
	warehouses   WarehouseStore
	reservations ReservationStore
	dispatcher   *Dispatcher
	now          func() time.Time
}

// NewReservationService constructs a ReservationService.  The now
// function defaults to UTC wall-clock time and exists so tests can pin
// "today".
func NewReservationService(w WarehouseStore, r ReservationStore, d *Dispatcher) *ReservationService {
	if w == nil || r == nil || d == nil {
		panic("nil dependency passed to NewReservationService")
	}
	return &ReservationService{
		warehouses:   w,
		reservations: r,
		dispatcher:   d,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create validates the request, runs the day-level availability fast
// path and persists the reservation in estado pendiente.  The
// persistence layer re-checks capacity under a row lock, so a fast
// path hit is advisory while the store's ErrConflict is authoritative.
// On success the company owner is notified of the new request; the
// notification is best-effort and never fails the creation.
func (s *ReservationService) Create(ctx context.Context, req CreateRequest) (*model.Reservation, error) {
	if req.RenterID == 0 {
		return nil, &ValidationError{Field: "renter_id", Reason: "required"}
	}
	if req.WarehouseID == 0 {
		return nil, &ValidationError{Field: "warehouse_id", Reason: "required"}
	}
	if req.StartDate.IsZero() {
		return nil, &ValidationError{Field: "start_date", Reason: "required"}
	}
	today := availability.DateOnly(s.now())
	start := availability.DateOnly(req.StartDate)
	if start.Before(today) {
		return nil, &ValidationError{Field: "start_date", Reason: "must not be in the past"}
	}

	wh, err := s.warehouses.GetByID(ctx, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	if !wh.Available {
		return nil, repository.ErrUnitUnavailable
	}

	var end *time.Time
	switch {
	case req.Indefinite:
		// Open-ended: consumes capacity from start onward until a
		// terminal transition frees it.
		end = nil
	case req.EndDate != nil:
		e := availability.DateOnly(*req.EndDate)
		if e.Before(start) {
			return nil, &ValidationError{Field: "end_date", Reason: "must not precede start_date"}
		}
		end = &e
	default:
		// Single-instance policy: one calendar month, last day inclusive.
		e := start.AddDate(0, 1, 0).AddDate(0, 0, -1)
		end = &e
	}

	// Fast path: count occupancy over pendiente + aceptada reservations
	// before paying for the locked insert.
	active, err := s.reservations.ListActive(ctx, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	cal := availability.Build(active, wh.TotalUnits, s.now())
	if !cal.RangeFree(start, end) {
		return nil, repository.ErrConflict
	}

	res := &model.Reservation{
		RenterID:        req.RenterID,
		WarehouseID:     req.WarehouseID,
		StartDate:       start,
		EndDate:         end,
		Estado:          model.EstadoPendiente,
		Services:        dedupeServices(req.Services),
		TotalPriceCents: totalPrice(wh.MonthlyPriceCents, start, end),
	}
	if err := s.reservations.CreateLocked(ctx, res); err != nil {
		return nil, err
	}

	// The request is durably committed; only now may the provider hear
	// about it.  Delivery failure is logged, never propagated.
	if ownerID, err := s.warehouses.OwnerOf(ctx, req.WarehouseID); err != nil {
		log.Printf("reservation-service: resolve owner for warehouse %d failed: %v", req.WarehouseID, err)
	} else if err := s.dispatcher.NotifyNewRequest(ctx, ownerID, res, wh); err != nil {
		log.Printf("reservation-service: notify provider %d failed: %v", ownerID, err)
	}
	return res, nil
}

// MonthView returns the availability calendar of a pool for one month.
// Occupancy counts aceptada reservations only, matching what renters
// see while browsing; pendiente requests are additionally counted at
// request time to block double submission.
func (s *ReservationService) MonthView(ctx context.Context, warehouseID uint64, year int, month time.Month, accepted []model.Reservation) ([]availability.Day, error) {
	wh, err := s.warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	cal := availability.Build(accepted, wh.TotalUnits, s.now())
	return cal.MonthView(year, month), nil
}

// totalPrice computes the request total: one monthly rate per calendar
// month spanned, and a single month up front for open-ended bookings.
// The product is taken in uint64 so a long term at a high rate cannot
// wrap a 32-bit total.
func totalPrice(monthlyCents uint32, start time.Time, end *time.Time) uint64 {
	if end == nil {
		return uint64(monthlyCents)
	}
	return uint64(monthlyCents) * uint64(availability.MonthsSpanned(start, *end))
}

// dedupeServices keeps the first occurrence of each add-on, preserving
// the order the renter picked.
func dedupeServices(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, svc := range in {
		if svc == "" {
			continue
		}
		if _, ok := seen[svc]; ok {
			continue
		}
		seen[svc] = struct{}{}
		out = append(out, svc)
	}
	return out
}

// priceLabel renders cents as a human amount for notification text.
func priceLabel(cents uint64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
