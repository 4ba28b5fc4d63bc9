package model

import "time"

// Booking status values. The vocabulary is deliberately small:
// PENDING bookings await an external payment confirmation, CONFIRMED
// bookings are paid (online payment verified, or a box-office cash
// sale which is born CONFIRMED), USED bookings have passed gate
// validation exactly once and CANCELLED bookings have released their
// seats. Expiry is derived from the showtime's start at scan time
// and is never stored.
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingUsed      = "USED"
	BookingCancelled = "CANCELLED"
)

// Booking sale channels stored in bookings.channel.
const (
	ChannelOnline    = "ONLINE"
	ChannelBoxOffice = "BOX_OFFICE"
)

// Booking records one checkout commit: the claimed seats, the
// concession and combo lines, the applied discounts and the
// authoritative status. Bookings are never hard-deleted by the
// normal flow; cancellation is a status change plus a claim release.
//
// Fields:
//  ID               – primary key identifier.
//  Reference        – short, opaque, globally unique booking reference.
//  ShowtimeID       – showtime the seats were claimed for.
//  UserID           – registered customer, when known (nullable).
//  CustomerName     – name given at checkout (walk-ups included).
//  CustomerEmail    – contact email given at checkout.
//  Channel          – ONLINE or BOX_OFFICE.
//  PromoCodeID      – applied promo code, if any (nullable).
//  LoyaltyRewardID  – redeemed loyalty reward, if any (nullable).
//  TicketsCents     – sum of frozen seat prices.
//  ConcessionsCents – sum of concession line totals.
//  CombosCents      – sum of combo line totals.
//  DiscountCents    – promo discount plus loyalty discount.
//  TotalCents       – final amount charged.
//  Status           – lifecycle status (see constants above).
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Booking struct {
	ID               uint64    // bookings.id
	Reference        string    // bookings.booking_reference
	ShowtimeID       uint64    // bookings.showtime_id
	UserID           *uint64   // bookings.user_id (nullable)
	CustomerName     string    // bookings.customer_name
	CustomerEmail    string    // bookings.customer_email
	Channel          string    // bookings.channel
	PromoCodeID      *uint64   // bookings.promo_code_id (nullable)
	LoyaltyRewardID  *uint64   // bookings.loyalty_reward_id (nullable)
	TicketsCents     uint32    // bookings.tickets_cents
	ConcessionsCents uint32    // bookings.concessions_cents
	CombosCents      uint32    // bookings.combos_cents
	DiscountCents    uint32    // bookings.discount_cents
	TotalCents       uint32    // bookings.total_cents
	Status           string    // bookings.status
	CreatedAt        time.Time // bookings.created_at
	UpdatedAt        time.Time // bookings.updated_at
}

// BookingSeat links a booking to one claimed seat with the price
// frozen at selection time.
//
// Fields:
//  ID         – primary key identifier.
//  BookingID  – owning booking.
//  ShowtimeID – showtime in which the seat is claimed.
//  RowLabel   – seat row within the screen layout.
//  SeatNumber – seat number within the row.
//  PriceCents – price locked in when the seat was selected.
type BookingSeat struct {
	ID         uint64 // booking_seats.id
	BookingID  uint64 // booking_seats.booking_id
	ShowtimeID uint64 // booking_seats.showtime_id
	RowLabel   string // booking_seats.row_label
	SeatNumber uint32 // booking_seats.seat_number
	PriceCents uint32 // booking_seats.price_cents
}

// Booking item types stored in booking_items.item_type.
const (
	ItemConcession = "CONCESSION"
	ItemCombo      = "COMBO"
)

// BookingItem is one concession or combo line on a booking.
//
// Fields:
//  ID             – primary key identifier.
//  BookingID      – owning booking.
//  ItemType       – CONCESSION or COMBO.
//  ItemID         – id into concessions or combos depending on ItemType.
//  Quantity       – number of units purchased.
//  UnitPriceCents – catalog price per unit at checkout time.
type BookingItem struct {
	ID             uint64 // booking_items.id
	BookingID      uint64 // booking_items.booking_id
	ItemType       string // booking_items.item_type
	ItemID         uint64 // booking_items.item_id
	Quantity       uint32 // booking_items.quantity
	UnitPriceCents uint32 // booking_items.unit_price_cents
}
