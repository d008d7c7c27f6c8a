package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
	"github.com/MiniBodegas/Plataforma-sub000/internal/repository"
	"github.com/MiniBodegas/Plataforma-sub000/internal/service"
)

// WarehouseHandler serves the public browse endpoints plus the
// provider-side company and listing management.  Role middleware keeps
// the management routes behind ARRENDADOR; browse routes are open to
// guests.
type WarehouseHandler struct {
	Companies    *repository.CompanyRepo
	Warehouses   *repository.WarehouseRepo
	Reservations *repository.ReservationRepo
	Service      *service.ReservationService
}

// NewWarehouseHandler constructs a WarehouseHandler with the provided
// dependencies.  All of them must be non-nil.
func NewWarehouseHandler(co *repository.CompanyRepo, w *repository.WarehouseRepo, r *repository.ReservationRepo, svc *service.ReservationService) *WarehouseHandler {
	if co == nil || w == nil || r == nil || svc == nil {
		panic("nil dependency passed to NewWarehouseHandler")
	}
	return &WarehouseHandler{Companies: co, Warehouses: w, Reservations: r, Service: svc}
}

type warehouseResp struct {
	ID                uint64  `json:"id"`
	CompanyID         uint64  `json:"company_id"`
	City              string  `json:"city"`
	Address           string  `json:"address"`
	Description       *string `json:"description,omitempty"`
	SizeM2            uint32  `json:"size_m2"`
	MonthlyPriceCents uint32  `json:"monthly_price_cents"`
	TotalUnits        uint32  `json:"total_units"`
	Available         bool    `json:"available"`
}

func toWarehouseResp(w *model.Warehouse) warehouseResp {
	return warehouseResp{
		ID:                w.ID,
		CompanyID:         w.CompanyID,
		City:              w.City,
		Address:           w.Address,
		Description:       w.Description,
		SizeM2:            w.SizeM2,
		MonthlyPriceCents: w.MonthlyPriceCents,
		TotalUnits:        w.TotalUnits,
		Available:         w.Available,
	}
}

// ListWarehouses handles GET /v1/warehouses.  Guests can browse all
// available listings, optionally filtered by ?city=.
func (h *WarehouseHandler) ListWarehouses(c echo.Context) error {
	city := strings.TrimSpace(c.QueryParam("city"))
	items, err := h.Warehouses.List(c.Request().Context(), city)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load warehouses"})
	}
	out := make([]warehouseResp, 0, len(items))
	for i := range items {
		out = append(out, toWarehouseResp(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out, "count": len(out)})
}

// GetWarehouse handles GET /v1/warehouses/:id.
func (h *WarehouseHandler) GetWarehouse(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid warehouse id"})
	}
	w, err := h.Warehouses.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "warehouse not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load warehouse"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toWarehouseResp(w)})
}

// GetAvailability handles GET /v1/warehouses/:id/availability.  It
// renders the per-day bookability of the pool for one month, given by
// ?year= and ?month= (defaulting to the current month).  Responses are
// cacheable; the cache middleware keys on route and query.
func (h *WarehouseHandler) GetAvailability(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid warehouse id"})
	}
	now := time.Now().UTC()
	year := now.Year()
	month := now.Month()
	if v := c.QueryParam("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2000 || n > 2200 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year"})
		}
		year = n
	}
	if v := c.QueryParam("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid month"})
		}
		month = time.Month(n)
	}
	ctx := c.Request().Context()
	accepted, err := h.Reservations.ListAccepted(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	days, err := h.Service.MonthView(ctx, id, year, month, accepted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "warehouse not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute availability"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"warehouse_id": id,
		"year":         year,
		"month":        int(month),
		"days":         days,
	})
}

// ----- provider-side management -----

type companyReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// CreateCompany handles POST /v1/company.  Each provider registers one
// company before listing warehouses.
func (h *WarehouseHandler) CreateCompany(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req companyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	ctx := c.Request().Context()
	if _, err := h.Companies.GetByOwner(ctx, ownerID); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "company already exists"})
	} else if !errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check company"})
	}
	co := &model.Company{OwnerID: ownerID, Name: req.Name, Description: req.Description}
	if err := h.Companies.Create(ctx, co); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create company"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": co.ID, "name": co.Name})
}

// GetMyCompany handles GET /v1/company.
func (h *WarehouseHandler) GetMyCompany(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	co, err := h.Companies.GetByOwner(c.Request().Context(), ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load company"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": co})
}

type warehouseReq struct {
	City              string  `json:"city"`
	Address           string  `json:"address"`
	Description       *string `json:"description"`
	SizeM2            uint32  `json:"size_m2"`
	MonthlyPriceCents uint32  `json:"monthly_price_cents"`
	TotalUnits        uint32  `json:"total_units"`
	Available         *bool   `json:"available"`
}

func (req *warehouseReq) validate() string {
	req.City = strings.TrimSpace(req.City)
	req.Address = strings.TrimSpace(req.Address)
	switch {
	case req.City == "":
		return "city is required"
	case req.Address == "":
		return "address is required"
	case req.MonthlyPriceCents == 0:
		return "monthly_price_cents must be positive"
	case req.TotalUnits == 0:
		return "total_units must be at least 1"
	}
	return ""
}

// CreateWarehouse handles POST /v1/warehouses (provider).
func (h *WarehouseHandler) CreateWarehouse(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req warehouseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx := c.Request().Context()
	co, err := h.Companies.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "create a company first"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load company"})
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	w := &model.Warehouse{
		CompanyID:         co.ID,
		City:              req.City,
		Address:           req.Address,
		Description:       req.Description,
		SizeM2:            req.SizeM2,
		MonthlyPriceCents: req.MonthlyPriceCents,
		TotalUnits:        req.TotalUnits,
		Available:         available,
	}
	if err := h.Warehouses.Create(ctx, w); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create warehouse"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toWarehouseResp(w)})
}

// ListMyWarehouses handles GET /v1/my-warehouses (provider), returning
// the full inventory including unavailable listings.
func (h *WarehouseHandler) ListMyWarehouses(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Warehouses.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load warehouses"})
	}
	out := make([]warehouseResp, 0, len(items))
	for i := range items {
		out = append(out, toWarehouseResp(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out, "count": len(out)})
}

// UpdateWarehouse handles PUT /v1/warehouses/:id (provider).
func (h *WarehouseHandler) UpdateWarehouse(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid warehouse id"})
	}
	var req warehouseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	w := &model.Warehouse{
		ID:                id,
		City:              req.City,
		Address:           req.Address,
		Description:       req.Description,
		SizeM2:            req.SizeM2,
		MonthlyPriceCents: req.MonthlyPriceCents,
		TotalUnits:        req.TotalUnits,
		Available:         available,
	}
	err = h.Warehouses.Update(c.Request().Context(), ownerID, w)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "warehouse not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update warehouse"})
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": id})
}

// SetAvailability handles PATCH /v1/warehouses/:id/availability
// (provider).  Flipping available to false removes the listing from
// new-booking eligibility without touching existing reservations.
func (h *WarehouseHandler) SetAvailability(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid warehouse id"})
	}
	var req struct {
		Available *bool `json:"available"`
	}
	if err := c.Bind(&req); err != nil || req.Available == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "available is required"})
	}
	err = h.Warehouses.SetAvailable(c.Request().Context(), ownerID, id, *req.Available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "warehouse not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update availability"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "available": *req.Available})
}
