package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/MiniBodegas/Plataforma-sub000/internal/availability"
	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
)

// ReservationRepo provides persistence for reservation requests.  All
// date columns are DATE values interpreted in UTC; the add-on service
// set is stored comma-joined in the servicios column, preserving the
// order the renter picked.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for transaction-spanning callers.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationCols = `id, renter_id, warehouse_id, start_date, end_date, estado,
	servicios, total_price_cents, motivo_rechazo, decided_at, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var res model.Reservation
	var end, decided sql.NullTime
	var services string
	var motivo sql.NullString
	err := row.Scan(
		&res.ID, &res.RenterID, &res.WarehouseID, &res.StartDate, &end, &res.Estado,
		&services, &res.TotalPriceCents, &motivo, &decided, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if end.Valid {
		e := end.Time
		res.EndDate = &e
	}
	if decided.Valid {
		d := decided.Time
		res.DecidedAt = &d
	}
	if motivo.Valid {
		m := motivo.String
		res.MotivoRechazo = &m
	}
	if services != "" {
		res.Services = strings.Split(services, ",")
	}
	return &res, nil
}

// ListActive returns the reservations that consume capacity on the
// given pool: every request still pendiente plus every aceptada one.
// Terminal rechazada/cancelada rows never occupy a unit.
func (r *ReservationRepo) ListActive(ctx context.Context, warehouseID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + `
	           FROM reservations
	           WHERE warehouse_id = ? AND estado IN (?, ?)
	           ORDER BY start_date`
	return r.queryReservations(ctx, q, warehouseID, model.EstadoPendiente, model.EstadoAceptada)
}

// ListAccepted returns only the aceptada reservations for a pool.
// The public availability calendar counts these; pendiente requests
// additionally block double-submission at request time.
func (r *ReservationRepo) ListAccepted(ctx context.Context, warehouseID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + `
	           FROM reservations
	           WHERE warehouse_id = ? AND estado = ?
	           ORDER BY start_date`
	return r.queryReservations(ctx, q, warehouseID, model.EstadoAceptada)
}

func (r *ReservationRepo) queryReservations(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// CreateLocked inserts a new pendiente reservation while holding a
// row-level lock on the warehouse.  The conflict check (read) and the
// insert (write) must be one atomic unit: without the lock two
// concurrent requests for the last free unit would both pass the read
// and overbook the pool.  SELECT ... FOR UPDATE serialises them so the
// second request sees the first one's row and fails with ErrConflict.
//
// The warehouse's available flag is re-read under the same lock, so a
// provider pulling a listing offline cannot race a pending insert.
func (r *ReservationRepo) CreateLocked(ctx context.Context, res *model.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const lockQ = `SELECT total_units, available FROM warehouses WHERE id = ? FOR UPDATE`
	var totalUnits uint32
	var available bool
	if err := tx.QueryRowContext(ctx, lockQ, res.WarehouseID).Scan(&totalUnits, &available); err != nil {
		return err
	}
	if !available {
		return ErrUnitUnavailable
	}

	const activeQ = `SELECT ` + reservationCols + `
	                 FROM reservations
	                 WHERE warehouse_id = ? AND estado IN (?, ?)`
	rows, err := tx.QueryContext(ctx, activeQ, res.WarehouseID, model.EstadoPendiente, model.EstadoAceptada)
	if err != nil {
		return err
	}
	active := make([]model.Reservation, 0)
	for rows.Next() {
		cur, err := scanReservation(rows)
		if err != nil {
			rows.Close()
			return err
		}
		active = append(active, *cur)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	cal := availability.Build(active, totalUnits, time.Now().UTC())
	if !cal.RangeFree(res.StartDate, res.EndDate) {
		return ErrConflict
	}

	const ins = `INSERT INTO reservations
	             (renter_id, warehouse_id, start_date, end_date, estado, servicios, total_price_cents)
	             VALUES (?, ?, ?, ?, ?, ?, ?)`
	var endArg any
	if res.EndDate != nil {
		endArg = availability.DateOnly(*res.EndDate)
	}
	result, err := tx.ExecContext(ctx, ins,
		res.RenterID, res.WarehouseID, availability.DateOnly(res.StartDate), endArg,
		model.EstadoPendiente, strings.Join(res.Services, ","), res.TotalPriceCents,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	res.Estado = model.EstadoPendiente

	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns a single reservation or sql.ErrNoRows.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ?`
	return scanReservation(r.db.QueryRowContext(ctx, q, id))
}

// Parties returns the renter and the warehouse's owning provider for a
// reservation.  Lifecycle guards use it to decide who may act.
func (r *ReservationRepo) Parties(ctx context.Context, reservationID uint64) (renterID, providerID, warehouseID uint64, err error) {
	const q = `SELECT r.renter_id, c.owner_id, r.warehouse_id
	           FROM reservations r
	           JOIN warehouses w ON w.id = r.warehouse_id
	           JOIN companies c ON c.id = w.company_id
	           WHERE r.id = ?`
	err = r.db.QueryRowContext(ctx, q, reservationID).Scan(&renterID, &providerID, &warehouseID)
	return
}

// TransitionFromPending moves a reservation out of pendiente with a
// single guarded statement.  The WHERE clause is the state machine:
// zero affected rows on an existing reservation means it already
// reached a terminal state, which is reported as ErrInvalidTransition
// without mutating anything.  The fresh row is returned on success so
// callers can build notifications from committed data.
func (r *ReservationRepo) TransitionFromPending(ctx context.Context, id uint64, estado string, motivo *string) (*model.Reservation, error) {
	const q = `UPDATE reservations
	           SET estado = ?, motivo_rechazo = ?, decided_at = NOW()
	           WHERE id = ? AND estado = ?`
	result, err := r.db.ExecContext(ctx, q, estado, motivo, id, model.EstadoPendiente)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Distinguish a missing reservation from a terminal one.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}
	return r.GetByID(ctx, id)
}

// ListByRenter returns all reservations created by the given user,
// newest first, with the warehouse location attached.
func (r *ReservationRepo) ListByRenter(ctx context.Context, renterID uint64) ([]ReservationDetail, error) {
	const q = `SELECT r.id, r.warehouse_id, w.city, w.address, r.start_date, r.end_date,
	                  r.estado, r.servicios, r.total_price_cents, r.motivo_rechazo, r.created_at
	           FROM reservations r
	           JOIN warehouses w ON w.id = r.warehouse_id
	           WHERE r.renter_id = ?
	           ORDER BY r.created_at DESC`
	return r.queryDetails(ctx, q, renterID)
}

// ListByProvider returns all reservations targeting any warehouse of
// the given provider, newest first.
func (r *ReservationRepo) ListByProvider(ctx context.Context, ownerID uint64) ([]ReservationDetail, error) {
	const q = `SELECT r.id, r.warehouse_id, w.city, w.address, r.start_date, r.end_date,
	                  r.estado, r.servicios, r.total_price_cents, r.motivo_rechazo, r.created_at
	           FROM reservations r
	           JOIN warehouses w ON w.id = r.warehouse_id
	           JOIN companies c ON c.id = w.company_id
	           WHERE c.owner_id = ?
	           ORDER BY r.created_at DESC`
	return r.queryDetails(ctx, q, ownerID)
}

// ReservationDetail is the list row returned to both audiences: the
// reservation plus enough warehouse context to render a card.
type ReservationDetail struct {
	ID              uint64   `json:"id"`
	WarehouseID     uint64   `json:"warehouse_id"`
	City            string   `json:"city"`
	Address         string   `json:"address"`
	StartDate       string   `json:"start_date"`
	EndDate         *string  `json:"end_date,omitempty"`
	Estado          string   `json:"estado"`
	Services        []string `json:"services"`
	TotalPriceCents uint64   `json:"total_price_cents"`
	MotivoRechazo   *string  `json:"motivo_rechazo,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

func (r *ReservationRepo) queryDetails(ctx context.Context, q string, args ...any) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReservationDetail, 0)
	for rows.Next() {
		var d ReservationDetail
		var start time.Time
		var end sql.NullTime
		var services string
		var motivo sql.NullString
		var createdAt time.Time
		if err := rows.Scan(
			&d.ID, &d.WarehouseID, &d.City, &d.Address, &start, &end,
			&d.Estado, &services, &d.TotalPriceCents, &motivo, &createdAt,
		); err != nil {
			return nil, err
		}
		d.StartDate = start.UTC().Format(time.DateOnly)
		if end.Valid {
			e := end.Time.UTC().Format(time.DateOnly)
			d.EndDate = &e
		}
		if motivo.Valid {
			m := motivo.String
			d.MotivoRechazo = &m
		}
		d.Services = []string{}
		if services != "" {
			d.Services = strings.Split(services, ",")
		}
		d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		out = append(out, d)
	}
	return out, rows.Err()
}
