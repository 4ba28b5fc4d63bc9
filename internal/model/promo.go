package model

import "time"

// Promo discount types stored in promo_codes.discount_type.
const (
	DiscountPercentage = "PERCENTAGE"
	DiscountFixed      = "FIXED"
)

// PromoCode is a staff-authored discount rule applied against the
// ticket subtotal of a cart. Usage accounting (CurrentUses) is only
// advanced when a booking using the code is confirmed, never at
// checkout of a still-pending booking.
//
// Fields:
//  ID               – primary key identifier.
//  Code             – unique, case-insensitive promo code string.
//  DiscountType     – PERCENTAGE or FIXED.
//  DiscountValue    – percent for PERCENTAGE, cents for FIXED.
//  MinPurchaseCents – minimum ticket subtotal required to apply.
//  MaxUses          – usage cap (nullable, nil = unlimited).
//  CurrentUses      – confirmed bookings that consumed this code.
//  ExpiresAt        – expiry timestamp (nullable, nil = no expiry).
//  IsActive         – whether the code can currently be applied.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type PromoCode struct {
	ID               uint64     // promo_codes.id
	Code             string     // promo_codes.code
	DiscountType     string     // promo_codes.discount_type
	DiscountValue    uint32     // promo_codes.discount_value
	MinPurchaseCents uint32     // promo_codes.min_purchase_cents
	MaxUses          *uint32    // promo_codes.max_uses (nullable)
	CurrentUses      uint32     // promo_codes.current_uses
	ExpiresAt        *time.Time // promo_codes.expires_at (nullable)
	IsActive         bool       // promo_codes.is_active
	CreatedAt        time.Time  // promo_codes.created_at
	UpdatedAt        time.Time  // promo_codes.updated_at
}
