// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking reaches
// CONFIRMED (payment verified online, or a box-office cash sale).
// It contains enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type BookingConfirmedEvent struct {
	EventID          string   `json:"event_id"`
	BookingReference string   `json:"booking_reference"`
	ShowtimeID       uint64   `json:"showtime_id"`
	MovieTitle       string   `json:"movie_title"`
	StartsAt         string   `json:"starts_at"`
	Channel          string   `json:"channel"`
	SeatLabels       []string `json:"seats"`
	DiscountCents    uint32   `json:"discount_cents"`
	TotalCents       uint32   `json:"total_cents"`
	ConfirmedAt      string   `json:"confirmed_at"`
}

// TicketUsedEvent is published when a gate scan wins the one-shot
// transition to USED.
type TicketUsedEvent struct {
	EventID          string `json:"event_id"`
	BookingReference string `json:"booking_reference"`
	ShowtimeID       uint64 `json:"showtime_id"`
	MovieTitle       string `json:"movie_title"`
	ScannedAt        string `json:"scanned_at"`
}
