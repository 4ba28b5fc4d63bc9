// Package repository implements data access over database/sql. The
// sentinel errors below let handlers distinguish the failure classes
// that matter to callers: conflicts are only recoverable by choosing
// differently (409), not-found values are terminal for the given
// input (404), and anything else from the store is treated as
// transient and retryable (503).
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrSeatTaken is returned when a seat-claim insert hits the
// per-(showtime, row, seat) unique constraint: another non-cancelled
// booking already holds at least one requested seat. Retrying with
// the same seat set is pointless; the caller must re-offer seats.
var ErrSeatTaken = errors.New("seat already claimed")

// ErrReferenceTaken is returned when a freshly minted booking
// reference collides with the bookings.booking_reference unique
// index. The caller mints a new reference and retries the insert.
var ErrReferenceTaken = errors.New("booking reference already exists")

// ErrPromoExhausted is returned when consuming a promo code fails
// its use-cap guard at confirmation time.
var ErrPromoExhausted = errors.New("promo code usage limit reached")

// ErrInsufficientPoints is returned when a loyalty redemption would
// drive the account balance negative.
var ErrInsufficientPoints = errors.New("insufficient loyalty points")

// ErrEmailExists is returned by user creation when the email column
// unique constraint fires.
var ErrEmailExists = errors.New("email already exists")

// Not-found sentinels, one per addressable entity.
var (
	ErrScreenNotFound   = errors.New("screen not found")
	ErrShowtimeNotFound = errors.New("showtime not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrPromoNotFound    = errors.New("promo code not found")
	ErrRewardNotFound   = errors.New("loyalty reward not found")
	ErrItemNotFound     = errors.New("catalog item not found")
)

// isDuplicateKey reports whether err is a MySQL duplicate-entry
// violation (error 1062). The driver returns *mysql.MySQLError, so
// the check does not depend on message text.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
