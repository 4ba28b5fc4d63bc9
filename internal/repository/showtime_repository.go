package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinebox/internal/model"
)

// ShowtimeRepo provides read access to scheduled screenings.
// Showtime authoring is staff tooling outside this service.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo returns a ShowtimeRepo bound to the given database.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

// DB exposes the underlying handle so handlers can open the
// transaction that spans booking, claims and side effects.
func (r *ShowtimeRepo) DB() *sql.DB { return r.db }

// GetByID loads one showtime. ErrShowtimeNotFound is returned when
// no row exists.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (*model.Showtime, error) {
	const q = `SELECT id, screen_id, movie_title, starts_at, base_price_cents, vip_price_cents, created_at, updated_at
               FROM showtimes WHERE id = ?`
	var st model.Showtime
	var vip sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&st.ID, &st.ScreenID, &st.MovieTitle, &st.StartsAt, &st.BasePriceCents, &vip, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowtimeNotFound
		}
		return nil, err
	}
	if vip.Valid {
		v := uint32(vip.Int64)
		st.VIPPriceCents = &v
	}
	return &st, nil
}

// ListUpcoming returns showtimes starting after the given instant,
// soonest first, for the public browse surface.
func (r *ShowtimeRepo) ListUpcoming(ctx context.Context, limit int) ([]model.Showtime, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const q = `SELECT id, screen_id, movie_title, starts_at, base_price_cents, vip_price_cents, created_at, updated_at
               FROM showtimes
               WHERE starts_at > UTC_TIMESTAMP()
               ORDER BY starts_at ASC
               LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Showtime, 0)
	for rows.Next() {
		var st model.Showtime
		var vip sql.NullInt64
		if err := rows.Scan(&st.ID, &st.ScreenID, &st.MovieTitle, &st.StartsAt, &st.BasePriceCents, &vip, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		if vip.Valid {
			v := uint32(vip.Int64)
			st.VIPPriceCents = &v
		}
		items = append(items, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
