package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
	"github.com/MiniBodegas/Plataforma-sub000/internal/repository"
	"github.com/MiniBodegas/Plataforma-sub000/internal/service"
)

// RenterReservationHandler serves the CLIENTE side of the reservation
// lifecycle: creating requests, cancelling, and listing own bookings.
type RenterReservationHandler struct {
	Service      *service.ReservationService
	Lifecycle    *service.Lifecycle
	Reservations *repository.ReservationRepo
}

func NewRenterReservationHandler(svc *service.ReservationService, lc *service.Lifecycle, r *repository.ReservationRepo) *RenterReservationHandler {
	if svc == nil || lc == nil || r == nil {
		panic("nil dependency passed to NewRenterReservationHandler")
	}
	return &RenterReservationHandler{Service: svc, Lifecycle: lc, Reservations: r}
}

type createReservationReq struct {
	WarehouseID uint64   `json:"warehouse_id"`
	StartDate   string   `json:"start_date"`         // YYYY-MM-DD
	EndDate     *string  `json:"end_date,omitempty"` // YYYY-MM-DD, omit for default term
	Indefinite  bool     `json:"indefinite"`
	Services    []string `json:"services"`
}

type reservationResp struct {
	ID            uint64   `json:"id"`
	WarehouseID   uint64   `json:"warehouse_id"`
	StartDate     string   `json:"start_date"`
	EndDate       *string  `json:"end_date,omitempty"`
	Estado        string   `json:"estado"`
	Services      []string `json:"services,omitempty"`
	TotalCents    uint64   `json:"total_price_cents"`
	MotivoRechazo *string  `json:"motivo_rechazo,omitempty"`
	DecidedAt     *string  `json:"decided_at,omitempty"`
	CreatedAt     string   `json:"created_at"`
}

func toReservationResp(r *model.Reservation) reservationResp {
	out := reservationResp{
		ID:          r.ID,
		WarehouseID: r.WarehouseID,
		StartDate:   r.StartDate.Format(time.DateOnly),
		Estado:      r.Estado,
		Services:    r.Services,
		TotalCents:  r.TotalPriceCents,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
	if r.EndDate != nil {
		s := r.EndDate.Format(time.DateOnly)
		out.EndDate = &s
	}
	out.MotivoRechazo = r.MotivoRechazo
	if r.DecidedAt != nil {
		s := r.DecidedAt.Format(time.RFC3339)
		out.DecidedAt = &s
	}
	return out
}

// Create handles POST /v1/reservations.  The request enters the
// lifecycle as pendiente and the warehouse owner is notified.
func (h *RenterReservationHandler) Create(c echo.Context) error {
	renterID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	start, err := time.Parse(time.DateOnly, strings.TrimSpace(req.StartDate))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
	}
	var end *time.Time
	if req.EndDate != nil && strings.TrimSpace(*req.EndDate) != "" {
		t, err := time.Parse(time.DateOnly, strings.TrimSpace(*req.EndDate))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be YYYY-MM-DD"})
		}
		end = &t
	}
	res, err := h.Service.Create(c.Request().Context(), service.CreateRequest{
		RenterID:    renterID,
		WarehouseID: req.WarehouseID,
		StartDate:   start,
		EndDate:     end,
		Indefinite:  req.Indefinite,
		Services:    req.Services,
	})
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Reason, "field": ve.Field})
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "warehouse not found"})
		case errors.Is(err, repository.ErrUnitUnavailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "warehouse is not accepting bookings"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "requested dates are not available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toReservationResp(res)})
}

// Cancel handles POST /v1/reservations/:id/cancel.  Only the renter who
// opened the request may cancel, and only while it is still pendiente.
func (h *RenterReservationHandler) Cancel(c echo.Context) error {
	renterID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Lifecycle.Cancel(c.Request().Context(), renterID, id)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationResp(res)})
}

// ListMine handles GET /v1/reservations.  Bookings are returned newest
// first with the warehouse summary joined in.
func (h *RenterReservationHandler) ListMine(c echo.Context) error {
	renterID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Reservations.ListByRenter(c.Request().Context(), renterID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// Get handles GET /v1/reservations/:id.  Only the renter who owns the
// booking may read it through this route.
func (h *RenterReservationHandler) Get(c echo.Context) error {
	renterID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Reservations.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservation"})
	}
	if res.RenterID != renterID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationResp(res)})
}

// lifecycleError maps lifecycle failures onto HTTP statuses shared by
// the renter and provider handlers.
func lifecycleError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is no longer pendiente"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update reservation"})
}
