package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebox/internal/booking"
	"github.com/iliyamo/cinebox/internal/model"
	"github.com/iliyamo/cinebox/internal/repository"
)

// BookingHandler serves booking lookup for customers and the staff
// cancellation operation.
type BookingHandler struct {
	Bookings  *repository.BookingRepo
	Showtimes *repository.ShowtimeRepo
	Loyalty   *repository.LoyaltyRepo
}

func NewBookingHandler(b *repository.BookingRepo, st *repository.ShowtimeRepo, l *repository.LoyaltyRepo) *BookingHandler {
	if b == nil || st == nil || l == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: b, Showtimes: st, Loyalty: l}
}

// ListMine handles GET /v1/my-bookings.
func (h *BookingHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return storeUnavailable(c, "failed to load bookings")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/bookings/:reference. Customers see only their
// own bookings; staff may look up any reference.
func (h *BookingHandler) Get(c echo.Context) error {
	ref := c.Param("reference")
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reference"})
	}
	ctx := c.Request().Context()
	b, err := h.Bookings.GetByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return storeUnavailable(c, "failed to load booking")
	}
	if role, _ := c.Get("role").(string); role != model.RoleStaff {
		userID, err := getUserID(c)
		if err != nil || b.UserID == nil || *b.UserID != userID {
			// Hide the existence of other people's bookings.
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
	}

	show, err := h.Showtimes.GetByID(ctx, b.ShowtimeID)
	if err != nil {
		return storeUnavailable(c, "failed to load showtime")
	}
	seats, err := h.Bookings.SeatsByBooking(ctx, b.ID)
	if err != nil {
		return storeUnavailable(c, "failed to load seats")
	}
	items, err := h.Bookings.ItemsByBooking(ctx, b.ID)
	if err != nil {
		return storeUnavailable(c, "failed to load items")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"booking_reference": b.Reference,
		"status":            b.Status,
		"channel":           b.Channel,
		"movie_title":       show.MovieTitle,
		"starts_at":         show.StartsAt.UTC().Format(time.RFC3339),
		"customer_name":     b.CustomerName,
		"seats":             seats,
		"items":             items,
		"tickets_cents":     b.TicketsCents,
		"concessions_cents": b.ConcessionsCents,
		"combos_cents":      b.CombosCents,
		"discount_cents":    b.DiscountCents,
		"total_cents":       b.TotalCents,
	})
}

// Cancel handles POST /v1/bookings/:reference/cancel, a staff
// operation. Cancellation is a status transition plus a claim
// release in one transaction; the freed seats become claimable by
// anyone the instant it commits. Redeemed loyalty points are
// restored through the refund ledger entry, whose unique key makes
// a double cancel harmless.
func (h *BookingHandler) Cancel(c echo.Context) error {
	ref := c.Param("reference")
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reference"})
	}
	ctx := c.Request().Context()

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
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return storeUnavailable(c, "failed to load booking")
	}
	if !booking.CanTransition(b.Status, model.BookingCancelled) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":  "booking cannot be cancelled",
			"status": b.Status,
		})
	}

	won, err := h.Bookings.CASStatusTx(ctx, tx, b.ID, b.Status, model.BookingCancelled)
	if err != nil {
		return storeUnavailable(c, "failed to update booking")
	}
	if !won {
		// Someone changed the status under us; report the new truth.
		_ = tx.Rollback()
		committed = true
		status, rerr := h.Bookings.StatusByID(ctx, b.ID)
		if rerr != nil {
			return storeUnavailable(c, "failed to re-read booking")
		}
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking cannot be cancelled", "status": status})
	}

	freed, err := h.Bookings.DeleteClaimsTx(ctx, tx, b.ID)
	if err != nil {
		return storeUnavailable(c, "failed to release seats")
	}

	// Points come back only if they were actually debited. The
	// REDEEM ledger entry is the record of that debit and names the
	// exact account and amount to restore; a PENDING booking that
	// never confirmed has no entry and refunds nothing.
	if b.LoyaltyRewardID != nil {
		entry, err := h.Loyalty.LedgerEntryTx(ctx, tx, b.ID, model.LedgerRedeem)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return storeUnavailable(c, "failed to load loyalty ledger")
		}
		if entry != nil {
			if err := h.Loyalty.RefundTx(ctx, tx, entry.AccountID, b.ID, uint32(-entry.PointsDelta)); err != nil {
				return storeUnavailable(c, "failed to refund points")
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return storeUnavailable(c, "failed to commit transaction")
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"booking_reference": b.Reference,
		"status":            model.BookingCancelled,
		"released_seats":    len(freed),
	})
}
