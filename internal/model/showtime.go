package model

import "time"

// Showtime represents a scheduled screening of a movie on a specific
// screen at a specific time. Seat prices for the showtime are
// derived from the seat's type: VIP seats use VIPPriceCents when it
// is set and fall back to BasePriceCents otherwise.
//
// Fields:
//  ID             – primary key identifier.
//  ScreenID       – screen on which the movie is shown.
//  MovieTitle     – title of the movie being screened.
//  StartsAt       – when the screening begins (UTC).
//  BasePriceCents – price of a standard seat in cents.
//  VIPPriceCents  – price of a VIP seat in cents (nullable).
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Showtime struct {
	ID             uint64    // showtimes.id
	ScreenID       uint64    // showtimes.screen_id
	MovieTitle     string    // showtimes.movie_title
	StartsAt       time.Time // showtimes.starts_at
	BasePriceCents uint32    // showtimes.base_price_cents
	VIPPriceCents  *uint32   // showtimes.vip_price_cents (nullable)
	CreatedAt      time.Time // showtimes.created_at
	UpdatedAt      time.Time // showtimes.updated_at
}

// SeatPriceCents resolves the price of a seat of the given type for
// this showtime. The lookup happens at selection time and the result
// is frozen into the cart, so later price edits never retroactively
// change an in-progress cart.
func (s Showtime) SeatPriceCents(seatType string) uint32 {
	if seatType == SeatTypeVIP && s.VIPPriceCents != nil {
		return *s.VIPPriceCents
	}
	return s.BasePriceCents
}
