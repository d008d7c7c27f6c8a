package model

import "time"

// Company represents a storage-space provider listed on the platform.
// A company belongs to one ARRENDADOR user and owns any number of
// warehouses.  This struct corresponds to a row in the `companies`
// table.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerID     – user ID of the company owner.
//  Name        – unique company name per owner.
//  Description – optional marketing description.
//  CreatedAt   – timestamp when the company was created.
//  UpdatedAt   – timestamp of last update.
type Company struct {
	ID          uint64    // companies.id
	OwnerID     uint64    // companies.owner_id
	Name        string    // companies.name
	Description *string   // companies.description (nullable)
	CreatedAt   time.Time // companies.created_at
	UpdatedAt   time.Time // companies.updated_at
}
