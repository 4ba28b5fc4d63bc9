package booking

import (
	"fmt"
	"time"

	"github.com/iliyamo/cinebox/internal/model"
)

// Entry is allowed until this long after the showtime starts; past
// it the ticket is treated as expired even if never scanned.
const EntryGraceAfterStart = 3 * time.Hour

// Arrivals earlier than this before the start only get an advisory
// note; they are still valid.
const earlyArrivalNotice = 2 * time.Hour

// Scan reason codes returned to gate terminals. The reason is part
// of the API: a double scan must surface "already used", never a
// generic failure or "not found".
const (
	ScanNotFound    = "NOT_FOUND"
	ScanAlreadyUsed = "ALREADY_USED"
	ScanCancelled   = "CANCELLED"
	ScanNotPaid     = "NOT_PAID"
	ScanExpired     = "EXPIRED"
	ScanOK          = "OK"
)

// ScanOutcome is the advisory verdict for one scanned reference.
// Even when Valid is true the caller must still win the conditional
// CONFIRMED to USED write before reporting success; a concurrent
// scan that loses that write re-evaluates and reports ALREADY_USED.
type ScanOutcome struct {
	Valid   bool   `json:"is_valid"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// EvaluateScan judges a booking's status and showtime start against
// the scan instant. Checks run in a fixed order and the first match
// wins: used, cancelled, unpaid, expired, then valid. An early
// arrival (more than two hours before the show) only changes the
// message, not the validity.
func EvaluateScan(status string, startsAt, now time.Time) ScanOutcome {
	switch status {
	case model.BookingUsed:
		return ScanOutcome{Reason: ScanAlreadyUsed, Message: "ticket already used"}
	case model.BookingCancelled:
		return ScanOutcome{Reason: ScanCancelled, Message: "booking was cancelled"}
	case model.BookingPending:
		return ScanOutcome{Reason: ScanNotPaid, Message: "payment not completed"}
	case model.BookingConfirmed:
		// fall through to the time window checks
	default:
		return ScanOutcome{Reason: ScanNotFound, Message: "booking not found"}
	}
	if now.Sub(startsAt) > EntryGraceAfterStart {
		return ScanOutcome{Reason: ScanExpired, Message: "show is over, ticket expired"}
	}
	if until := startsAt.Sub(now); until > earlyArrivalNotice {
		return ScanOutcome{
			Valid:   true,
			Reason:  ScanOK,
			Message: fmt.Sprintf("entry allowed (show starts in %s)", until.Round(time.Minute)),
		}
	}
	return ScanOutcome{Valid: true, Reason: ScanOK, Message: "entry allowed"}
}
