package model

import "time"

// Seat type values stored in seats.seat_type. UNAVAILABLE marks a
// position in the grid that exists physically but can never be sold
// (pillar, wheelchair gap, broken seat).
const (
	SeatTypeStandard    = "STANDARD"
	SeatTypeVIP         = "VIP"
	SeatTypeUnavailable = "UNAVAILABLE"
)

// Seat describes one position in a screen's layout template. Seats
// are uniquely identified by their screen, row label and seat
// number. A seat belongs to the screen, not to any particular
// showtime; per-showtime availability is derived from seat_claims.
//
// Fields:
//  ID          – primary key identifier.
//  ScreenID    – screen to which this seat belongs.
//  RowLabel    – letter or string designating the row (A, B, ... AA).
//  SeatNumber  – number of the seat within the row.
//  SeatType    – STANDARD, VIP or UNAVAILABLE.
//  IsAvailable – whether the seat is currently sellable at all.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Seat struct {
	ID          uint64    // seats.id
	ScreenID    uint64    // seats.screen_id
	RowLabel    string    // seats.row_label
	SeatNumber  uint32    // seats.seat_number
	SeatType    string    // seats.seat_type
	IsAvailable bool      // seats.is_available
	CreatedAt   time.Time // seats.created_at
	UpdatedAt   time.Time // seats.updated_at
}

// SeatRef identifies a seat position within one showtime's claim
// namespace. It is the unit of exclusivity: for a given showtime at
// most one non-cancelled booking may hold a SeatRef.
type SeatRef struct {
	RowLabel   string `json:"row_label"`
	SeatNumber uint32 `json:"seat_number"`
}

// Label renders the seat reference in the familiar "A7" form used in
// messages and published events.
func (s SeatRef) Label() string {
	n := uint64(s.SeatNumber)
	var buf [20]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return s.RowLabel + string(buf[i:])
}
