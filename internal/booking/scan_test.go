package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/cinebox/internal/model"
)

var scanNow = time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

func TestEvaluateScanConfirmedFutureShow(t *testing.T) {
	out := EvaluateScan(model.BookingConfirmed, scanNow.Add(30*time.Minute), scanNow)
	assert.True(t, out.Valid)
	assert.Equal(t, ScanOK, out.Reason)
	assert.Equal(t, "entry allowed", out.Message)
}

// Arriving more than two hours early is still valid, only the
// message changes.
func TestEvaluateScanEarlyArrivalAdvisory(t *testing.T) {
	out := EvaluateScan(model.BookingConfirmed, scanNow.Add(5*time.Hour), scanNow)
	assert.True(t, out.Valid)
	assert.Equal(t, ScanOK, out.Reason)
	assert.Contains(t, out.Message, "show starts in")
}

func TestEvaluateScanStatusOrder(t *testing.T) {
	// Status checks win over the time window: a used ticket for a
	// long-finished show reports ALREADY_USED, not EXPIRED.
	longOver := scanNow.Add(-6 * time.Hour)

	cases := []struct {
		name   string
		status string
		starts time.Time
		reason string
	}{
		{"used", model.BookingUsed, longOver, ScanAlreadyUsed},
		{"cancelled", model.BookingCancelled, longOver, ScanCancelled},
		{"pending", model.BookingPending, scanNow.Add(time.Hour), ScanNotPaid},
		{"unknown status", "???", scanNow, ScanNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := EvaluateScan(tc.status, tc.starts, scanNow)
			assert.False(t, out.Valid)
			assert.Equal(t, tc.reason, out.Reason)
		})
	}
}

func TestEvaluateScanExpiryBoundary(t *testing.T) {
	// Exactly three hours after the start is still allowed.
	out := EvaluateScan(model.BookingConfirmed, scanNow.Add(-EntryGraceAfterStart), scanNow)
	assert.True(t, out.Valid)

	// One second past the grace window is expired.
	out = EvaluateScan(model.BookingConfirmed, scanNow.Add(-EntryGraceAfterStart-time.Second), scanNow)
	assert.False(t, out.Valid)
	assert.Equal(t, ScanExpired, out.Reason)
}
