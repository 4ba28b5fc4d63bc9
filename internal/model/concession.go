package model

import "time"

// Concession is a single snack-bar item sold alongside tickets.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – display name (e.g. "Large Popcorn").
//  PriceCents – unit price in cents.
//  IsActive   – whether the item can currently be sold.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Concession struct {
	ID         uint64    // concessions.id
	Name       string    // concessions.name
	PriceCents uint32    // concessions.price_cents
	IsActive   bool      // concessions.is_active
	CreatedAt  time.Time // concessions.created_at
	UpdatedAt  time.Time // concessions.updated_at
}

// Combo is a bundled set of concession items sold at one fixed,
// discounted price. The bundle contents are informational; pricing
// only ever uses the combo's own PriceCents.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – display name (e.g. "Date Night Combo").
//  PriceCents – bundle price in cents.
//  IsActive   – whether the combo can currently be sold.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Combo struct {
	ID         uint64    // combos.id
	Name       string    // combos.name
	PriceCents uint32    // combos.price_cents
	IsActive   bool      // combos.is_active
	CreatedAt  time.Time // combos.created_at
	UpdatedAt  time.Time // combos.updated_at
}
