package model

import "time"

// Loyalty ledger entry types. REDEEM debits points when a booking
// using a reward is confirmed; REFUND credits them back when such a
// booking is later cancelled. The (booking_id, entry_type) pair is
// unique so a re-observed confirmation can never double-debit.
const (
	LedgerRedeem = "REDEEM"
	LedgerRefund = "REFUND"
)

// LoyaltyAccount tracks a customer's point balance.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owning customer (unique).
//  Points    – current point balance.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type LoyaltyAccount struct {
	ID        uint64    // loyalty_accounts.id
	UserID    uint64    // loyalty_accounts.user_id
	Points    uint32    // loyalty_accounts.points
	CreatedAt time.Time // loyalty_accounts.created_at
	UpdatedAt time.Time // loyalty_accounts.updated_at
}

// LoyaltyReward is a points-funded discount a customer can redeem
// against a booking. The discount is a flat amount; eligibility is
// checked against the account balance when the cart is priced.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – display name (e.g. "Free Small Popcorn").
//  PointCost     – points debited when the redemption is confirmed.
//  DiscountCents – flat discount applied to the cart total.
//  IsActive      – whether the reward can currently be redeemed.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type LoyaltyReward struct {
	ID            uint64    // loyalty_rewards.id
	Name          string    // loyalty_rewards.name
	PointCost     uint32    // loyalty_rewards.point_cost
	DiscountCents uint32    // loyalty_rewards.discount_cents
	IsActive      bool      // loyalty_rewards.is_active
	CreatedAt     time.Time // loyalty_rewards.created_at
	UpdatedAt     time.Time // loyalty_rewards.updated_at
}

// LoyaltyLedgerEntry is one append-only movement on a loyalty
// account. Entries are written in the same transaction as the
// booking status change that caused them.
//
// Fields:
//  ID          – primary key identifier.
//  AccountID   – loyalty account affected.
//  BookingID   – booking that caused the movement.
//  EntryType   – REDEEM or REFUND.
//  PointsDelta – signed point movement (negative for REDEEM).
//  CreatedAt   – creation timestamp.
type LoyaltyLedgerEntry struct {
	ID          uint64    // loyalty_ledger.id
	AccountID   uint64    // loyalty_ledger.account_id
	BookingID   uint64    // loyalty_ledger.booking_id
	EntryType   string    // loyalty_ledger.entry_type
	PointsDelta int32     // loyalty_ledger.points_delta
	CreatedAt   time.Time // loyalty_ledger.created_at
}
