package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinebox/internal/model"
)

func TestClaimEventJSONFields(t *testing.T) {
	ev := ClaimEvent{
		EventID:          "e-1",
		ShowtimeID:       42,
		RowLabel:         "A",
		SeatNumber:       7,
		BookingReference: "BK-XYZ",
		ClaimedAt:        "2026-03-14T18:00:00Z",
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &m))
	assert.Equal(t, "A", m["row_label"])
	assert.Equal(t, float64(7), m["seat_number"])
	assert.Equal(t, float64(42), m["showtime_id"])
	assert.Equal(t, "BK-XYZ", m["booking_reference"])

	var back ClaimEvent
	require.NoError(t, json.Unmarshal(body, &back))
	assert.Equal(t, ev, back)
	assert.Equal(t, model.SeatRef{RowLabel: "A", SeatNumber: 7}, back.Seat())
}

func TestChannelForIsScopedPerShowtime(t *testing.T) {
	assert.Equal(t, "claims:1", ChannelFor(1))
	assert.NotEqual(t, ChannelFor(1), ChannelFor(2))
}

// Consumers must be idempotent to duplicate delivery: applying the
// same claim twice grows the set once.
func TestTakenSetIdempotentApply(t *testing.T) {
	set := NewTakenSet([]model.SeatRef{{RowLabel: "B", SeatNumber: 2}})
	ev := ClaimEvent{ShowtimeID: 1, RowLabel: "A", SeatNumber: 1}

	assert.True(t, set.Apply(ev))
	assert.False(t, set.Apply(ev))
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Has(model.SeatRef{RowLabel: "A", SeatNumber: 1}))
	assert.True(t, set.Has(model.SeatRef{RowLabel: "B", SeatNumber: 2}))
	assert.False(t, set.Has(model.SeatRef{RowLabel: "C", SeatNumber: 3}))
}

func TestTakenSetSeedSeatAlreadyTaken(t *testing.T) {
	seed := model.SeatRef{RowLabel: "D", SeatNumber: 12}
	set := NewTakenSet([]model.SeatRef{seed})
	// A claim event for a seeded seat is a duplicate, not news.
	assert.False(t, set.Apply(ClaimEvent{RowLabel: "D", SeatNumber: 12}))
	assert.Equal(t, 1, set.Len())
}
