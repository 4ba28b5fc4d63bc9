package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinebox/internal/model"
)

// ScreenRepo provides read access to screens and their seat layout
// templates. Layouts are written by staff tooling outside this
// service and are treated as immutable here.
type ScreenRepo struct {
	db *sql.DB
}

// NewScreenRepo returns a ScreenRepo bound to the given database.
func NewScreenRepo(db *sql.DB) *ScreenRepo { return &ScreenRepo{db: db} }

// GetByID loads one screen. ErrScreenNotFound is returned when no
// row exists.
func (r *ScreenRepo) GetByID(ctx context.Context, id uint64) (*model.Screen, error) {
	const q = `SELECT id, name, row_count, col_count, created_at, updated_at
               FROM screens WHERE id = ?`
	var s model.Screen
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.Name, &s.RowCount, &s.ColCount, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScreenNotFound
		}
		return nil, err
	}
	return &s, nil
}

// LayoutByScreen returns every seat in the screen's template ordered
// by row and number. The result includes UNAVAILABLE positions so
// clients can render the full grid.
func (r *ScreenRepo) LayoutByScreen(ctx context.Context, screenID uint64) ([]model.Seat, error) {
	const q = `SELECT id, screen_id, row_label, seat_number, seat_type, is_available, created_at, updated_at
               FROM seats
               WHERE screen_id = ?
               ORDER BY row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, q, screenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.ScreenID, &s.RowLabel, &s.SeatNumber, &s.SeatType, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// LayoutIndex returns the screen's layout keyed by seat reference
// for O(1) membership checks when a cart's seat set is validated.
func (r *ScreenRepo) LayoutIndex(ctx context.Context, screenID uint64) (map[model.SeatRef]model.Seat, error) {
	seats, err := r.LayoutByScreen(ctx, screenID)
	if err != nil {
		return nil, err
	}
	idx := make(map[model.SeatRef]model.Seat, len(seats))
	for _, s := range seats {
		idx[model.SeatRef{RowLabel: s.RowLabel, SeatNumber: s.SeatNumber}] = s
	}
	return idx, nil
}
