// Package pricing turns a cart into a quote. The computation is a
// pure function of its inputs: calling it twice with the same cart
// and clock yields the same quote, and it is expected to be re-run
// from scratch on every cart mutation rather than patched
// incrementally. All amounts are integer cents.
package pricing

import (
	"errors"
	"time"

	"github.com/iliyamo/cinebox/internal/model"
)

// Typed reasons a promo code cannot be applied. A cart carrying an
// ineligible promo fails the whole computation with one of these;
// the discount is never silently dropped to zero.
var (
	ErrPromoInactive    = errors.New("promo code is not active")
	ErrPromoExpired     = errors.New("promo code has expired")
	ErrPromoExhausted   = errors.New("promo code usage limit reached")
	ErrPromoMinPurchase = errors.New("ticket subtotal below promo minimum")
)

// Cart-size rejections. Quantities and unit prices come from the
// wire, so every product and sum is computed in uint64 and checked
// against these caps before it is narrowed back to cents; a cart
// that would wrap a 32-bit amount is rejected, never mispriced.
var (
	ErrQuantityTooLarge = errors.New("item quantity exceeds the allowed maximum")
	ErrCartTooLarge     = errors.New("cart subtotal exceeds the allowed maximum")
)

const (
	// MaxItemQuantity bounds a single concession or combo line.
	MaxItemQuantity = 100
	// MaxSubtotalCents bounds the whole cart (1,000,000.00).
	MaxSubtotalCents = 100_000_000
)

// SeatLine is one selected seat with the price frozen at selection
// time. Later price changes on the showtime never alter it.
type SeatLine struct {
	Seat       model.SeatRef
	PriceCents uint32
}

// ItemLine is one concession or combo line: a catalog unit price
// and a quantity.
type ItemLine struct {
	ItemID         uint64
	Name           string
	UnitPriceCents uint32
	Quantity       uint32
}

// Cart is the client-held checkout state handed to Compute. At most
// one promo code and at most one loyalty reward may be attached.
type Cart struct {
	Seats       []SeatLine
	Concessions []ItemLine
	Combos      []ItemLine
	Promo       *model.PromoCode
	Reward      *model.LoyaltyReward
}

// Quote is the deterministic breakdown produced from a cart. The
// fixed computation order (tickets, concessions, combos, subtotal,
// promo, loyalty, total) keeps totals reproducible across callers.
type Quote struct {
	TicketsCents         uint32 `json:"tickets_cents"`
	ConcessionsCents     uint32 `json:"concessions_cents"`
	CombosCents          uint32 `json:"combos_cents"`
	SubtotalCents        uint32 `json:"subtotal_cents"`
	PromoDiscountCents   uint32 `json:"promo_discount_cents"`
	LoyaltyDiscountCents uint32 `json:"loyalty_discount_cents"`
	DiscountCents        uint32 `json:"discount_cents"`
	TotalCents           uint32 `json:"total_cents"`
}

// Compute prices the cart at the given instant. The promo discount
// applies only against the ticket subtotal and only when the code is
// active, unexpired, under its use cap and the ticket subtotal meets
// the code's minimum; any violation is returned as a typed error.
// The loyalty discount is a flat amount capped at what remains after
// the promo, so the total can never go negative.
func Compute(cart Cart, now time.Time) (Quote, error) {
	var tickets, concessions, combos uint64
	for _, s := range cart.Seats {
		tickets += uint64(s.PriceCents)
	}
	for _, l := range cart.Concessions {
		if l.Quantity > MaxItemQuantity {
			return Quote{}, ErrQuantityTooLarge
		}
		concessions += uint64(l.UnitPriceCents) * uint64(l.Quantity)
	}
	for _, l := range cart.Combos {
		if l.Quantity > MaxItemQuantity {
			return Quote{}, ErrQuantityTooLarge
		}
		combos += uint64(l.UnitPriceCents) * uint64(l.Quantity)
	}
	subtotal := tickets + concessions + combos
	if subtotal > MaxSubtotalCents {
		return Quote{}, ErrCartTooLarge
	}

	var q Quote
	q.TicketsCents = uint32(tickets)
	q.ConcessionsCents = uint32(concessions)
	q.CombosCents = uint32(combos)
	q.SubtotalCents = uint32(subtotal)

	if cart.Promo != nil {
		d, err := PromoDiscount(*cart.Promo, q.TicketsCents, now)
		if err != nil {
			return Quote{}, err
		}
		q.PromoDiscountCents = d
	}
	if cart.Reward != nil {
		q.LoyaltyDiscountCents = cart.Reward.DiscountCents
		if remaining := q.SubtotalCents - q.PromoDiscountCents; q.LoyaltyDiscountCents > remaining {
			q.LoyaltyDiscountCents = remaining
		}
	}
	q.DiscountCents = q.PromoDiscountCents + q.LoyaltyDiscountCents
	q.TotalCents = q.SubtotalCents - q.DiscountCents
	return q, nil
}

// PromoDiscount validates the promo against the ticket subtotal and
// returns the discount it grants. Percentage discounts round half-up
// to the cent; both discount types are capped at the ticket subtotal
// so a misconfigured code (say 150%) never produces a negative
// remainder.
func PromoDiscount(p model.PromoCode, ticketsCents uint32, now time.Time) (uint32, error) {
	if !p.IsActive {
		return 0, ErrPromoInactive
	}
	if p.ExpiresAt != nil && now.After(*p.ExpiresAt) {
		return 0, ErrPromoExpired
	}
	if p.MaxUses != nil && p.CurrentUses >= *p.MaxUses {
		return 0, ErrPromoExhausted
	}
	if ticketsCents < p.MinPurchaseCents {
		return 0, ErrPromoMinPurchase
	}
	switch p.DiscountType {
	case model.DiscountPercentage:
		d := uint32((uint64(ticketsCents)*uint64(p.DiscountValue) + 50) / 100)
		if d > ticketsCents {
			d = ticketsCents
		}
		return d, nil
	case model.DiscountFixed:
		if p.DiscountValue > ticketsCents {
			return ticketsCents, nil
		}
		return p.DiscountValue, nil
	}
	return 0, ErrPromoInactive
}
