package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebox/internal/events"
	"github.com/iliyamo/cinebox/internal/repository"
)

// StreamHandler serves the live claim feed over Server-Sent Events.
// A client first receives a snapshot of the showtime's taken seats,
// then one event per subsequent claim. Duplicates from pub/sub are
// filtered through a per-connection taken-set, so downstream code
// can treat each seat as appearing at most once.
type StreamHandler struct {
	Bookings   *repository.BookingRepo
	Showtimes  *repository.ShowtimeRepo
	Subscriber *events.Subscriber
}

func NewStreamHandler(b *repository.BookingRepo, st *repository.ShowtimeRepo, sub *events.Subscriber) *StreamHandler {
	if b == nil || st == nil {
		panic("nil repository passed to NewStreamHandler")
	}
	return &StreamHandler{Bookings: b, Showtimes: st, Subscriber: sub}
}

// ClaimStream handles GET /v1/showtimes/:id/claims/stream. The
// subscription is opened before the snapshot is read, so a claim
// landing between the two shows up in the stream rather than being
// lost; the taken-set drops it if the snapshot already had it.
func (h *StreamHandler) ClaimStream(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	ctx := c.Request().Context()

	if _, err := h.Showtimes.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return storeUnavailable(c, "failed to load showtime")
	}
	if h.Subscriber == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "claim stream unavailable"})
	}

	ch, stop, err := h.Subscriber.Subscribe(ctx, id)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "claim stream unavailable"})
	}
	defer stop()

	snapshot, err := h.Bookings.TakenSeats(ctx, id)
	if err != nil {
		return storeUnavailable(c, "failed to load claims")
	}
	set := events.NewTakenSet(snapshot)

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	if err := writeSSE(resp, "snapshot", snapshot); err != nil {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, open := <-ch:
			if !open {
				return nil
			}
			if !set.Apply(ev) {
				continue // duplicate delivery or already in the snapshot
			}
			if err := writeSSE(resp, "claim", ev); err != nil {
				return nil
			}
		}
	}
}

func writeSSE(resp *echo.Response, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	resp.Flush()
	return nil
}
