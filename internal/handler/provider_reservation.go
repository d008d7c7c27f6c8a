package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MiniBodegas/Plataforma-sub000/internal/repository"
	"github.com/MiniBodegas/Plataforma-sub000/internal/service"
)

// ProviderReservationHandler serves the ARRENDADOR side of the
// lifecycle: reviewing incoming requests and deciding them.
type ProviderReservationHandler struct {
	Lifecycle    *service.Lifecycle
	Reservations *repository.ReservationRepo
}

func NewProviderReservationHandler(lc *service.Lifecycle, r *repository.ReservationRepo) *ProviderReservationHandler {
	if lc == nil || r == nil {
		panic("nil dependency passed to NewProviderReservationHandler")
	}
	return &ProviderReservationHandler{Lifecycle: lc, Reservations: r}
}

// ListIncoming handles GET /v1/provider/reservations, returning every
// request made against the provider's warehouses, newest first.
func (h *ProviderReservationHandler) ListIncoming(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Reservations.ListByProvider(c.Request().Context(), ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// Accept handles POST /v1/provider/reservations/:id/accept.  Only the
// owner of the warehouse may decide, and only while pendiente.
func (h *ProviderReservationHandler) Accept(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Lifecycle.Accept(c.Request().Context(), ownerID, id)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationResp(res)})
}

// Reject handles POST /v1/provider/reservations/:id/reject.  An
// optional motivo is stored and relayed verbatim to the renter.
func (h *ProviderReservationHandler) Reject(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req struct {
		Motivo string `json:"motivo"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	res, err := h.Lifecycle.Reject(c.Request().Context(), ownerID, id, req.Motivo)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationResp(res)})
}
