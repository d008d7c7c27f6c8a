package repository

import (
	"context"
	"database/sql"

	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
)

// CompanyRepo provides CRUD operations for provider companies.
type CompanyRepo struct {
	db *sql.DB
}

// NewCompanyRepo returns a CompanyRepo bound to the given database.
func NewCompanyRepo(db *sql.DB) *CompanyRepo { return &CompanyRepo{db: db} }

// Create inserts a company for the given owner and populates the
// generated ID and timestamps on the model.
func (r *CompanyRepo) Create(ctx context.Context, co *model.Company) error {
	const q = `INSERT INTO companies (owner_id, name, description) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, co.OwnerID, co.Name, co.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	co.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM companies WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, co.ID).Scan(&co.CreatedAt, &co.UpdatedAt)
}

// GetByOwner returns the company owned by the given user.  Providers
// have exactly one company; sql.ErrNoRows means none was created yet.
func (r *CompanyRepo) GetByOwner(ctx context.Context, ownerID uint64) (*model.Company, error) {
	const q = `SELECT id, owner_id, name, description, created_at, updated_at
	           FROM companies WHERE owner_id = ? LIMIT 1`
	var co model.Company
	var desc sql.NullString
	err := r.db.QueryRowContext(ctx, q, ownerID).Scan(
		&co.ID, &co.OwnerID, &co.Name, &desc, &co.CreatedAt, &co.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		co.Description = &d
	}
	return &co, nil
}

// WarehouseRepo provides persistence for warehouse pool listings.
type WarehouseRepo struct {
	db *sql.DB
}

// NewWarehouseRepo returns a WarehouseRepo bound to the given database.
func NewWarehouseRepo(db *sql.DB) *WarehouseRepo { return &WarehouseRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions
// that span multiple repositories.
func (r *WarehouseRepo) DB() *sql.DB { return r.db }

const warehouseCols = `id, company_id, city, address, description, size_m2,
	monthly_price_cents, total_units, available, created_at, updated_at`

func scanWarehouse(row interface{ Scan(...any) error }) (*model.Warehouse, error) {
	var w model.Warehouse
	var desc sql.NullString
	err := row.Scan(
		&w.ID, &w.CompanyID, &w.City, &w.Address, &desc, &w.SizeM2,
		&w.MonthlyPriceCents, &w.TotalUnits, &w.Available, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		w.Description = &d
	}
	return &w, nil
}

// Create inserts a warehouse listing and populates its generated ID.
func (r *WarehouseRepo) Create(ctx context.Context, w *model.Warehouse) error {
	const q = `INSERT INTO warehouses
	           (company_id, city, address, description, size_m2, monthly_price_cents, total_units, available)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		w.CompanyID, w.City, w.Address, w.Description, w.SizeM2,
		w.MonthlyPriceCents, w.TotalUnits, w.Available,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM warehouses WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, w.ID).Scan(&w.CreatedAt, &w.UpdatedAt)
}

// GetByID returns a single warehouse or sql.ErrNoRows.
func (r *WarehouseRepo) GetByID(ctx context.Context, id uint64) (*model.Warehouse, error) {
	const q = `SELECT ` + warehouseCols + ` FROM warehouses WHERE id = ?`
	return scanWarehouse(r.db.QueryRowContext(ctx, q, id))
}

// List returns warehouses, optionally filtered by city, newest first.
// Only listings flagged available are returned to browsers; providers
// see their own full inventory through ListByOwner.
func (r *WarehouseRepo) List(ctx context.Context, city string) ([]model.Warehouse, error) {
	q := `SELECT ` + warehouseCols + ` FROM warehouses WHERE available = 1`
	args := []any{}
	if city != "" {
		q += ` AND city = ?`
		args = append(args, city)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Warehouse, 0)
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

// ListByOwner returns every warehouse belonging to the given provider,
// including unavailable ones, joined through the companies table.
func (r *WarehouseRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Warehouse, error) {
	const q = `SELECT w.id, w.company_id, w.city, w.address, w.description, w.size_m2,
	                  w.monthly_price_cents, w.total_units, w.available, w.created_at, w.updated_at
	           FROM warehouses w
	           JOIN companies c ON c.id = w.company_id
	           WHERE c.owner_id = ?
	           ORDER BY w.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Warehouse, 0)
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

// Update edits the mutable listing fields after validating ownership.
// It returns ErrForbidden when the warehouse belongs to a different
// provider and sql.ErrNoRows when it does not exist.
func (r *WarehouseRepo) Update(ctx context.Context, ownerID uint64, w *model.Warehouse) error {
	ownedBy, err := r.ownerOf(ctx, w.ID)
	if err != nil {
		return err
	}
	if ownedBy != ownerID {
		return ErrForbidden
	}
	const q = `UPDATE warehouses
	           SET city = ?, address = ?, description = ?, size_m2 = ?,
	               monthly_price_cents = ?, total_units = ?, available = ?
	           WHERE id = ?`
	_, err = r.db.ExecContext(ctx, q,
		w.City, w.Address, w.Description, w.SizeM2,
		w.MonthlyPriceCents, w.TotalUnits, w.Available, w.ID,
	)
	return err
}

// SetAvailable flips the provider-controlled booking eligibility flag.
func (r *WarehouseRepo) SetAvailable(ctx context.Context, ownerID, warehouseID uint64, available bool) error {
	ownedBy, err := r.ownerOf(ctx, warehouseID)
	if err != nil {
		return err
	}
	if ownedBy != ownerID {
		return ErrForbidden
	}
	const q = `UPDATE warehouses SET available = ? WHERE id = ?`
	_, err = r.db.ExecContext(ctx, q, available, warehouseID)
	return err
}

// OwnerOf returns the user ID of the provider owning the warehouse.
func (r *WarehouseRepo) OwnerOf(ctx context.Context, warehouseID uint64) (uint64, error) {
	return r.ownerOf(ctx, warehouseID)
}

func (r *WarehouseRepo) ownerOf(ctx context.Context, warehouseID uint64) (uint64, error) {
	const q = `SELECT c.owner_id
	           FROM warehouses w
	           JOIN companies c ON c.id = w.company_id
	           WHERE w.id = ?`
	var ownerID uint64
	if err := r.db.QueryRowContext(ctx, q, warehouseID).Scan(&ownerID); err != nil {
		return 0, err
	}
	return ownerID, nil
}
