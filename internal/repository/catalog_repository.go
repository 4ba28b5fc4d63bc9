package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/cinebox/internal/model"
)

// CatalogRepo reads the concession and combo catalogs. Catalog
// authoring happens in staff tooling; checkout only resolves ids to
// active items and their current prices.
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo returns a CatalogRepo bound to the given database.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// ListConcessions returns all active concession items.
func (r *CatalogRepo) ListConcessions(ctx context.Context) ([]model.Concession, error) {
	const q = `SELECT id, name, price_cents, is_active, created_at, updated_at
               FROM concessions WHERE is_active = 1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Concession, 0)
	for rows.Next() {
		var c model.Concession
		if err := rows.Scan(&c.ID, &c.Name, &c.PriceCents, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// ListCombos returns all active combo deals.
func (r *CatalogRepo) ListCombos(ctx context.Context) ([]model.Combo, error) {
	const q = `SELECT id, name, price_cents, is_active, created_at, updated_at
               FROM combos WHERE is_active = 1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Combo, 0)
	for rows.Next() {
		var c model.Combo
		if err := rows.Scan(&c.ID, &c.Name, &c.PriceCents, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// ConcessionsByID resolves the given ids to active concessions.
// ErrItemNotFound is returned when any id is missing or inactive,
// so a successful result always covers the full request.
func (r *CatalogRepo) ConcessionsByID(ctx context.Context, ids []uint64) (map[uint64]model.Concession, error) {
	return catalogByID[model.Concession](ctx, r.db, "concessions", ids, func(rows *sql.Rows) (uint64, model.Concession, error) {
		var c model.Concession
		err := rows.Scan(&c.ID, &c.Name, &c.PriceCents, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
		return c.ID, c, err
	})
}

// CombosByID resolves the given ids to active combos, with the same
// ErrItemNotFound contract as ConcessionsByID.
func (r *CatalogRepo) CombosByID(ctx context.Context, ids []uint64) (map[uint64]model.Combo, error) {
	return catalogByID[model.Combo](ctx, r.db, "combos", ids, func(rows *sql.Rows) (uint64, model.Combo, error) {
		var c model.Combo
		err := rows.Scan(&c.ID, &c.Name, &c.PriceCents, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
		return c.ID, c, err
	})
}

func catalogByID[T any](ctx context.Context, db *sql.DB, table string, ids []uint64, scan func(*sql.Rows) (uint64, T, error)) (map[uint64]T, error) {
	out := make(map[uint64]T, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	q := `SELECT id, name, price_cents, is_active, created_at, updated_at FROM ` + table +
		` WHERE is_active = 1 AND id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		id, v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out[id] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !allResolved(ids, out) {
		return nil, ErrItemNotFound
	}
	return out, nil
}

// allResolved reports whether every requested id made it into the
// result map.
func allResolved[T any](ids []uint64, got map[uint64]T) bool {
	for _, id := range ids {
		if _, ok := got[id]; !ok {
			return false
		}
	}
	return true
}
