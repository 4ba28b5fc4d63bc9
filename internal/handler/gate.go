package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebox/internal/booking"
	"github.com/iliyamo/cinebox/internal/model"
	"github.com/iliyamo/cinebox/internal/queue"
	"github.com/iliyamo/cinebox/internal/repository"
	qp "github.com/iliyamo/cinebox/internal/service"
)

// GateHandler validates tickets at the entrance. The evaluation in
// the booking package is advisory; admission is only granted when
// this handler wins the conditional CONFIRMED to USED write, which
// is what makes a ticket single-use under concurrent scans.
type GateHandler struct {
	Bookings  *repository.BookingRepo
	Showtimes *repository.ShowtimeRepo
}

func NewGateHandler(b *repository.BookingRepo, st *repository.ShowtimeRepo) *GateHandler {
	if b == nil || st == nil {
		panic("nil repository passed to NewGateHandler")
	}
	return &GateHandler{Bookings: b, Showtimes: st}
}

type scanReq struct {
	BookingReference string `json:"booking_reference"`
}

type scanResp struct {
	BookingReference string   `json:"booking_reference"`
	IsValid          bool     `json:"is_valid"`
	Reason           string   `json:"reason"`
	Message          string   `json:"message"`
	MovieTitle       string   `json:"movie_title,omitempty"`
	StartsAt         string   `json:"starts_at,omitempty"`
	Seats            []string `json:"seats,omitempty"`
}

// Scan handles POST /v1/gate/scan. Terminals always get 200 with a
// structured verdict; HTTP errors are reserved for malformed input
// and infrastructure failures so a scanner can key its display off
// the reason code alone.
func (h *GateHandler) Scan(c echo.Context) error {
	var req scanReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.BookingReference) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_reference required"})
	}
	ref := strings.TrimSpace(req.BookingReference)
	ctx := c.Request().Context()
	now := time.Now().UTC()

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return storeUnavailable(c, "failed to start transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := h.Bookings.GetByReferenceTx(ctx, tx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusOK, scanResp{
				BookingReference: ref,
				Reason:           booking.ScanNotFound,
				Message:          "booking not found",
			})
		}
		return storeUnavailable(c, "failed to load booking")
	}
	show, err := h.Showtimes.GetByID(ctx, b.ShowtimeID)
	if err != nil {
		return storeUnavailable(c, "failed to load showtime")
	}

	outcome := booking.EvaluateScan(b.Status, show.StartsAt, now)
	if !outcome.Valid {
		return c.JSON(http.StatusOK, h.verdict(ctx, b, show, outcome))
	}

	won, err := h.Bookings.CASStatusTx(ctx, tx, b.ID, model.BookingConfirmed, model.BookingUsed)
	if err != nil {
		return storeUnavailable(c, "failed to update booking")
	}
	if !won {
		// A concurrent scan got there first. Re-read and judge the
		// booking's real state; the usual answer is ALREADY_USED.
		_ = tx.Rollback()
		committed = true
		status, rerr := h.Bookings.StatusByID(ctx, b.ID)
		if rerr != nil {
			return storeUnavailable(c, "failed to re-read booking")
		}
		return c.JSON(http.StatusOK, h.verdict(ctx, b, show, booking.EvaluateScan(status, show.StartsAt, now)))
	}

	if err := tx.Commit(); err != nil {
		return storeUnavailable(c, "failed to commit transaction")
	}
	committed = true

	h.announceUsed(c, b, show, now)

	return c.JSON(http.StatusOK, h.verdict(ctx, b, show, outcome))
}

// verdict decorates the outcome with booking details a gate display
// shows on admit (and on ALREADY_USED, so staff can investigate).
func (h *GateHandler) verdict(ctx context.Context, b *model.Booking, show *model.Showtime, o booking.ScanOutcome) scanResp {
	resp := scanResp{
		BookingReference: b.Reference,
		IsValid:          o.Valid,
		Reason:           o.Reason,
		Message:          o.Message,
		MovieTitle:       show.MovieTitle,
		StartsAt:         show.StartsAt.UTC().Format(time.RFC3339),
	}
	if seats, err := h.Bookings.SeatsByBooking(ctx, b.ID); err == nil {
		labels := make([]string, len(seats))
		for i, s := range seats {
			labels[i] = model.SeatRef{RowLabel: s.RowLabel, SeatNumber: s.SeatNumber}.Label()
		}
		resp.Seats = labels
	}
	return resp
}

func (h *GateHandler) announceUsed(c echo.Context, b *model.Booking, show *model.Showtime, now time.Time) {
	ev := queue.TicketUsedEvent{
		EventID:          uuid.NewString(),
		BookingReference: b.Reference,
		ShowtimeID:       show.ID,
		MovieTitle:       show.MovieTitle,
		ScannedAt:        now.Format(time.RFC3339),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := qp.PublishTicketUsed(ctx, ev); err != nil {
		c.Logger().Warnf("ticket.used publish failed for %s: %v", b.Reference, err)
	}
}
