package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinebox/internal/model"
)

func TestDedupeSeatsDropsInvalidAndDuplicates(t *testing.T) {
	got := dedupeSeats([]seatRefInput{
		{RowLabel: "A", SeatNumber: 7},
		{RowLabel: "A", SeatNumber: 7}, // duplicate
		{RowLabel: "", SeatNumber: 3},  // blank row
		{RowLabel: "B", SeatNumber: 0}, // zero seat
		{RowLabel: "B", SeatNumber: 1},
	})
	assert.Equal(t, []model.SeatRef{
		{RowLabel: "A", SeatNumber: 7},
		{RowLabel: "B", SeatNumber: 1},
	}, got)
}

func TestDedupeSeatsEmpty(t *testing.T) {
	assert.Empty(t, dedupeSeats(nil))
	assert.Empty(t, dedupeSeats([]seatRefInput{{RowLabel: "", SeatNumber: 0}}))
}

// Store failures are 503 with a retryable hint, never 500, so
// callers can distinguish "try again" from terminal rejections.
func TestStoreUnavailableIsRetryable503(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, storeUnavailable(c, "failed to load booking"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "failed to load booking", body["error"])
	assert.Equal(t, true, body["retryable"])
}

func TestMergeItemsSumsQuantities(t *testing.T) {
	got := mergeItems([]itemInput{
		{ID: 1, Quantity: 2},
		{ID: 2, Quantity: 1},
		{ID: 1, Quantity: 3}, // same item again
		{ID: 3, Quantity: 0}, // dropped
		{ID: 0, Quantity: 5}, // dropped
	})
	assert.Equal(t, []itemInput{
		{ID: 1, Quantity: 5},
		{ID: 2, Quantity: 1},
	}, got)
}
