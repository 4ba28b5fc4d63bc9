package model

import "time"

// Screen represents a physical auditorium with a fixed seat grid.
// The row and column counts describe the layout template; the
// individual seats are stored in the `seats` table. A screen is
// treated as immutable once bookings exist against one of its
// showtimes.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the screen (e.g. "Screen 1").
//  RowCount  – number of seat rows in the grid.
//  ColCount  – number of seats per row.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Screen struct {
	ID        uint64    // screens.id
	Name      string    // screens.name
	RowCount  uint32    // screens.row_count
	ColCount  uint32    // screens.col_count
	CreatedAt time.Time // screens.created_at
	UpdatedAt time.Time // screens.updated_at
}
