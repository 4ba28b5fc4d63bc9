// Package handler contains the HTTP handlers. Handlers validate
// input, orchestrate repositories inside transactions where a commit
// must be atomic, and translate sentinel errors into status codes.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebox/internal/model"
)

// getUserID extracts the authenticated user's id from the context.
// JWT numeric claims decode as float64; older tokens may carry the
// subject as a string.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// storeUnavailable reports a transient store failure: 503 plus a
// retryable hint, so a caller can tell that replaying the same
// request may succeed, unlike the terminal 4xx mappings.
func storeUnavailable(c echo.Context, msg string) error {
	return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": msg, "retryable": true})
}

// pathID parses a numeric path parameter, rejecting zero.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// seatRefInput is the wire shape for one requested seat.
type seatRefInput struct {
	RowLabel   string `json:"row_label"`
	SeatNumber uint32 `json:"seat_number"`
}

// itemInput is the wire shape for one concession or combo line.
type itemInput struct {
	ID       uint64 `json:"id"`
	Quantity uint32 `json:"quantity"`
}

// dedupeSeats normalizes the requested seat list: blank rows and
// zero numbers are dropped, duplicates collapse to one.
func dedupeSeats(in []seatRefInput) []model.SeatRef {
	out := make([]model.SeatRef, 0, len(in))
	seen := make(map[model.SeatRef]struct{}, len(in))
	for _, s := range in {
		if s.RowLabel == "" || s.SeatNumber == 0 {
			continue
		}
		ref := model.SeatRef{RowLabel: s.RowLabel, SeatNumber: s.SeatNumber}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}

// mergeItems collapses duplicate item ids by summing quantities and
// drops zero-quantity lines.
func mergeItems(in []itemInput) []itemInput {
	out := make([]itemInput, 0, len(in))
	index := make(map[uint64]int, len(in))
	for _, it := range in {
		if it.ID == 0 || it.Quantity == 0 {
			continue
		}
		if i, ok := index[it.ID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		index[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}
