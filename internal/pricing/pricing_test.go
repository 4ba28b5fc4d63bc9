package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinebox/internal/model"
)

var now = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func seat(row string, num uint32, price uint32) SeatLine {
	return SeatLine{Seat: model.SeatRef{RowLabel: row, SeatNumber: num}, PriceCents: price}
}

func percentPromo(value, minPurchase uint32) *model.PromoCode {
	return &model.PromoCode{
		ID:               1,
		Code:             "SAVE10",
		DiscountType:     model.DiscountPercentage,
		DiscountValue:    value,
		MinPurchaseCents: minPurchase,
		IsActive:         true,
	}
}

// Two standard seats at 10.00, one VIP at 15.00, 10% promo with a
// 20.00 minimum: tickets 35.00, discount 3.50, total 31.50.
func TestComputeWorkedExample(t *testing.T) {
	cart := Cart{
		Seats: []SeatLine{seat("A", 1, 1000), seat("A", 2, 1000), seat("B", 5, 1500)},
		Promo: percentPromo(10, 2000),
	}
	q, err := Compute(cart, now)
	require.NoError(t, err)
	assert.Equal(t, uint32(3500), q.TicketsCents)
	assert.Equal(t, uint32(3500), q.SubtotalCents)
	assert.Equal(t, uint32(350), q.PromoDiscountCents)
	assert.Equal(t, uint32(3150), q.TotalCents)
}

func TestComputeIsDeterministic(t *testing.T) {
	cart := Cart{
		Seats:       []SeatLine{seat("C", 3, 1250)},
		Concessions: []ItemLine{{ItemID: 1, UnitPriceCents: 650, Quantity: 2}},
		Combos:      []ItemLine{{ItemID: 2, UnitPriceCents: 1800, Quantity: 1}},
		Promo:       percentPromo(10, 1000),
	}
	first, err := Compute(cart, now)
	require.NoError(t, err)
	second, err := Compute(cart, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeSubtotalOrder(t *testing.T) {
	cart := Cart{
		Seats:       []SeatLine{seat("A", 1, 1000)},
		Concessions: []ItemLine{{ItemID: 1, UnitPriceCents: 500, Quantity: 3}},
		Combos:      []ItemLine{{ItemID: 2, UnitPriceCents: 2000, Quantity: 2}},
	}
	q, err := Compute(cart, now)
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), q.TicketsCents)
	assert.Equal(t, uint32(1500), q.ConcessionsCents)
	assert.Equal(t, uint32(4000), q.CombosCents)
	assert.Equal(t, uint32(6500), q.SubtotalCents)
	assert.Equal(t, uint32(6500), q.TotalCents)
}

// A promo below its minimum must fail with a typed reason, not price
// the cart with a silent zero discount.
func TestComputePromoBelowMinimumRejected(t *testing.T) {
	cart := Cart{
		Seats: []SeatLine{seat("A", 1, 1000)},
		Promo: percentPromo(10, 2000),
	}
	_, err := Compute(cart, now)
	assert.ErrorIs(t, err, ErrPromoMinPurchase)
}

// Promo eligibility only counts tickets: a large concession total
// does not satisfy the minimum.
func TestComputePromoMinimumIgnoresConcessions(t *testing.T) {
	cart := Cart{
		Seats:       []SeatLine{seat("A", 1, 1000)},
		Concessions: []ItemLine{{ItemID: 1, UnitPriceCents: 5000, Quantity: 2}},
		Promo:       percentPromo(10, 2000),
	}
	_, err := Compute(cart, now)
	assert.ErrorIs(t, err, ErrPromoMinPurchase)
}

func TestPromoDiscountEligibility(t *testing.T) {
	expired := now.Add(-time.Hour)
	cap := uint32(1)

	cases := []struct {
		name  string
		promo model.PromoCode
		want  error
	}{
		{"inactive", model.PromoCode{DiscountType: model.DiscountFixed, DiscountValue: 100}, ErrPromoInactive},
		{"expired", model.PromoCode{IsActive: true, ExpiresAt: &expired, DiscountType: model.DiscountFixed, DiscountValue: 100}, ErrPromoExpired},
		{"exhausted", model.PromoCode{IsActive: true, MaxUses: &cap, CurrentUses: 1, DiscountType: model.DiscountFixed, DiscountValue: 100}, ErrPromoExhausted},
		{"below minimum", model.PromoCode{IsActive: true, MinPurchaseCents: 5000, DiscountType: model.DiscountFixed, DiscountValue: 100}, ErrPromoMinPurchase},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PromoDiscount(tc.promo, 2000, now)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

// An unexpired code on its last remaining use is still valid.
func TestPromoDiscountUnderCap(t *testing.T) {
	cap := uint32(2)
	p := model.PromoCode{
		IsActive:      true,
		MaxUses:       &cap,
		CurrentUses:   1,
		DiscountType:  model.DiscountPercentage,
		DiscountValue: 25,
	}
	d, err := PromoDiscount(p, 2000, now)
	require.NoError(t, err)
	assert.Equal(t, uint32(500), d)
}

func TestPromoDiscountFixedCappedAtTickets(t *testing.T) {
	p := model.PromoCode{
		IsActive:      true,
		DiscountType:  model.DiscountFixed,
		DiscountValue: 5000,
	}
	d, err := PromoDiscount(p, 1200, now)
	require.NoError(t, err)
	assert.Equal(t, uint32(1200), d)
}

func TestPromoDiscountPercentageRoundsHalfUp(t *testing.T) {
	p := model.PromoCode{
		IsActive:      true,
		DiscountType:  model.DiscountPercentage,
		DiscountValue: 15,
	}
	// 15% of 10.05 = 1.5075 -> 1.51
	d, err := PromoDiscount(p, 1005, now)
	require.NoError(t, err)
	assert.Equal(t, uint32(151), d)

	// 15% of 10.10 = 1.515 -> 1.52 (half rounds up)
	d, err = PromoDiscount(p, 1010, now)
	require.NoError(t, err)
	assert.Equal(t, uint32(152), d)
}

func TestComputeLoyaltyCappedAtRemaining(t *testing.T) {
	cart := Cart{
		Seats:  []SeatLine{seat("A", 1, 1000)},
		Reward: &model.LoyaltyReward{ID: 7, DiscountCents: 2500, IsActive: true},
	}
	q, err := Compute(cart, now)
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), q.LoyaltyDiscountCents)
	assert.Equal(t, uint32(0), q.TotalCents)
}

// A quantity big enough to wrap a 32-bit product must be rejected,
// not billed at the wrapped amount.
func TestComputeHugeQuantityRejected(t *testing.T) {
	cart := Cart{
		Seats:       []SeatLine{seat("A", 1, 1000)},
		Concessions: []ItemLine{{ItemID: 1, UnitPriceCents: 650, Quantity: 6_700_000}},
	}
	_, err := Compute(cart, now)
	assert.ErrorIs(t, err, ErrQuantityTooLarge)
}

func TestComputeQuantityAtCapAllowed(t *testing.T) {
	cart := Cart{
		Seats:       []SeatLine{seat("A", 1, 1000)},
		Concessions: []ItemLine{{ItemID: 1, UnitPriceCents: 650, Quantity: MaxItemQuantity}},
	}
	q, err := Compute(cart, now)
	require.NoError(t, err)
	assert.Equal(t, uint32(650*MaxItemQuantity), q.ConcessionsCents)
	assert.Equal(t, uint32(1000+650*MaxItemQuantity), q.TotalCents)
}

// Per-line quantities under the cap can still sum past the subtotal
// cap; the cart fails as a whole instead of narrowing a too-large
// sum into uint32.
func TestComputeSubtotalCapRejected(t *testing.T) {
	combos := make([]ItemLine, 0, 11)
	for i := 0; i < 11; i++ {
		combos = append(combos, ItemLine{ItemID: uint64(i + 1), UnitPriceCents: 100_000, Quantity: MaxItemQuantity})
	}
	cart := Cart{
		Seats:  []SeatLine{seat("A", 1, 1000)},
		Combos: combos,
	}
	_, err := Compute(cart, now)
	assert.ErrorIs(t, err, ErrCartTooLarge)
}

// A misconfigured percentage over 100 is capped at the ticket
// subtotal, mirroring the fixed-discount cap, so the total can
// never wrap below zero.
func TestPromoDiscountPercentageCappedAtTickets(t *testing.T) {
	p := model.PromoCode{
		IsActive:      true,
		DiscountType:  model.DiscountPercentage,
		DiscountValue: 150,
	}
	d, err := PromoDiscount(p, 1000, now)
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), d)

	cart := Cart{Seats: []SeatLine{seat("A", 1, 1000)}, Promo: &p}
	q, err := Compute(cart, now)
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), q.PromoDiscountCents)
	assert.Equal(t, uint32(0), q.TotalCents)
}

func TestComputePromoAndLoyaltyStack(t *testing.T) {
	cart := Cart{
		Seats:  []SeatLine{seat("A", 1, 2000), seat("A", 2, 2000)},
		Promo:  percentPromo(10, 2000),
		Reward: &model.LoyaltyReward{ID: 7, DiscountCents: 500, IsActive: true},
	}
	q, err := Compute(cart, now)
	require.NoError(t, err)
	assert.Equal(t, uint32(400), q.PromoDiscountCents)
	assert.Equal(t, uint32(500), q.LoyaltyDiscountCents)
	assert.Equal(t, uint32(900), q.DiscountCents)
	assert.Equal(t, uint32(3100), q.TotalCents)
}
