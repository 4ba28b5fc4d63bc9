// Package booking holds the lifecycle rules for booking records:
// which status transitions exist, how a gate scan is judged, and how
// booking references are minted. Everything here is pure; the
// authoritative writes that enforce these rules under concurrency
// live in the repository layer as conditional UPDATEs.
package booking

import "github.com/iliyamo/cinebox/internal/model"

// transitions is the full lifecycle: a booking is created PENDING
// (online, awaiting payment) or directly CONFIRMED (box-office cash
// sale), moves to CONFIRMED on a verified payment callback, to USED
// through gate validation exactly once, and to CANCELLED from any
// non-terminal state. USED and CANCELLED are terminal.
var transitions = map[string]map[string]bool{
	model.BookingPending: {
		model.BookingConfirmed: true,
		model.BookingCancelled: true,
	},
	model.BookingConfirmed: {
		model.BookingUsed:      true,
		model.BookingCancelled: true,
	},
}

// CanTransition reports whether the lifecycle permits moving a
// booking from one status to another. Callers still have to perform
// the move as a conditional write; this check only rejects requests
// that could never be legal.
func CanTransition(from, to string) bool {
	return transitions[from][to]
}

// IsTerminal reports whether no further transitions exist from the
// given status.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}
