package model

import "time"

// Warehouse represents a listing of identical mini-warehouses offered
// by a company at one location.  TotalUnits is the pool capacity: the
// number of interchangeable units rentable under this listing.  A
// single-instance unit is simply a pool with TotalUnits = 1.
//
// Available is set by the provider and removes the listing from
// new-booking eligibility regardless of reservation state.
//
// Fields:
//  ID              – primary key identifier.
//  CompanyID       – owning company.
//  City            – city where the warehouse is located.
//  Address         – street address of the location.
//  Description     – optional description of the space.
//  SizeM2          – declared size of one unit in square metres.
//  MonthlyPriceCents – rent per unit per calendar month, in cents.
//  TotalUnits      – pool capacity (>= 1).
//  Available       – provider-controlled booking eligibility flag.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Warehouse struct {
	ID                uint64    // warehouses.id
	CompanyID         uint64    // warehouses.company_id
	City              string    // warehouses.city
	Address           string    // warehouses.address
	Description       *string   // warehouses.description (nullable)
	SizeM2            uint32    // warehouses.size_m2
	MonthlyPriceCents uint32    // warehouses.monthly_price_cents
	TotalUnits        uint32    // warehouses.total_units
	Available         bool      // warehouses.available
	CreatedAt         time.Time // warehouses.created_at
	UpdatedAt         time.Time // warehouses.updated_at
}
