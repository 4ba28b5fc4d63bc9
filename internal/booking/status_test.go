package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/cinebox/internal/model"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{model.BookingPending, model.BookingConfirmed, true},
		{model.BookingPending, model.BookingCancelled, true},
		{model.BookingConfirmed, model.BookingUsed, true},
		{model.BookingConfirmed, model.BookingCancelled, true},

		{model.BookingPending, model.BookingUsed, false},
		{model.BookingConfirmed, model.BookingPending, false},
		{model.BookingUsed, model.BookingCancelled, false},
		{model.BookingUsed, model.BookingConfirmed, false},
		{model.BookingCancelled, model.BookingConfirmed, false},
		{model.BookingCancelled, model.BookingPending, false},
		{"BOGUS", model.BookingConfirmed, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(model.BookingPending))
	assert.False(t, IsTerminal(model.BookingConfirmed))
	assert.True(t, IsTerminal(model.BookingUsed))
	assert.True(t, IsTerminal(model.BookingCancelled))
}
