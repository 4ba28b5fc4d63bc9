package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebox/internal/model"
	"github.com/iliyamo/cinebox/internal/queue"
	"github.com/iliyamo/cinebox/internal/repository"
	qp "github.com/iliyamo/cinebox/internal/service"
)

type paymentCallbackReq struct {
	BookingReference string `json:"booking_reference"`
	Verified         *bool  `json:"verified"`
}

// PaymentCallback handles POST /v1/payments/callback from the
// payment provider. verified=true moves the booking from PENDING to
// CONFIRMED via a conditional update, with promo consumption and
// loyalty debit in the same transaction; retried callbacks find the
// booking already CONFIRMED and return 200 without reapplying
// anything. verified=false cancels the booking and releases its
// claims.
func (h *CheckoutHandler) PaymentCallback(c echo.Context) error {
	var req paymentCallbackReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.BookingReference) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_reference required"})
	}
	if req.Verified == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "verified required"})
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

	b, err := h.Bookings.GetByReferenceTx(ctx, tx, req.BookingReference)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return storeUnavailable(c, "failed to load booking")
	}

	if !*req.Verified {
		return h.failPayment(c, ctx, tx, b, &committed)
	}

	// Idempotent replay: the transition already happened, the side
	// effects with it.
	if b.Status == model.BookingConfirmed {
		return c.JSON(http.StatusOK, echo.Map{"booking_reference": b.Reference, "status": b.Status})
	}
	if b.Status != model.BookingPending {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":  "booking is not awaiting payment",
			"status": b.Status,
		})
	}

	won, err := h.Bookings.CASStatusTx(ctx, tx, b.ID, model.BookingPending, model.BookingConfirmed)
	if err != nil {
		return storeUnavailable(c, "failed to update booking")
	}
	if !won {
		// Lost to a concurrent transition; the re-read decides.
		_ = tx.Rollback()
		committed = true
		status, rerr := h.Bookings.StatusByID(ctx, b.ID)
		if rerr != nil {
			return storeUnavailable(c, "failed to re-read booking")
		}
		if status == model.BookingConfirmed {
			return c.JSON(http.StatusOK, echo.Map{"booking_reference": b.Reference, "status": status})
		}
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not awaiting payment", "status": status})
	}

	if done := h.confirmationEffectsForBooking(c, ctx, tx, b); !done {
		return nil
	}

	if err := tx.Commit(); err != nil {
		return storeUnavailable(c, "failed to commit transaction")
	}
	committed = true

	h.announcePaidConfirmed(c, ctx, b)

	return c.JSON(http.StatusOK, echo.Map{
		"booking_reference": b.Reference,
		"status":            model.BookingConfirmed,
	})
}

// failPayment cancels a pending booking and frees its seats. A
// replayed verified=false callback on an already cancelled booking
// is a no-op 200.
func (h *CheckoutHandler) failPayment(c echo.Context, ctx context.Context, tx *sql.Tx, b *model.Booking, committed *bool) error {
	if b.Status == model.BookingCancelled {
		return c.JSON(http.StatusOK, echo.Map{"booking_reference": b.Reference, "status": b.Status})
	}
	if b.Status != model.BookingPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not awaiting payment", "status": b.Status})
	}
	won, err := h.Bookings.CASStatusTx(ctx, tx, b.ID, model.BookingPending, model.BookingCancelled)
	if err != nil {
		return storeUnavailable(c, "failed to update booking")
	}
	if !won {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not awaiting payment"})
	}
	if _, err := h.Bookings.DeleteClaimsTx(ctx, tx, b.ID); err != nil {
		return storeUnavailable(c, "failed to release seats")
	}
	if err := tx.Commit(); err != nil {
		return storeUnavailable(c, "failed to commit transaction")
	}
	*committed = true
	return c.JSON(http.StatusOK, echo.Map{
		"booking_reference": b.Reference,
		"status":            model.BookingCancelled,
	})
}

// confirmationEffectsForBooking loads the booking's attached promo
// and reward and applies the confirmation side effects in the
// caller's transaction.
func (h *CheckoutHandler) confirmationEffectsForBooking(c echo.Context, ctx context.Context, tx *sql.Tx, b *model.Booking) bool {
	var promo *model.PromoCode
	var reward *model.LoyaltyReward
	var account *model.LoyaltyAccount

	if b.PromoCodeID != nil {
		promo = &model.PromoCode{ID: *b.PromoCodeID}
	}
	if b.LoyaltyRewardID != nil {
		if b.UserID == nil {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "reward booking without user"})
			return false
		}
		r, err := h.Loyalty.GetReward(ctx, *b.LoyaltyRewardID)
		if err != nil {
			_ = storeUnavailable(c, "failed to load reward")
			return false
		}
		a, err := h.Loyalty.AccountByUser(ctx, *b.UserID)
		if err != nil {
			_ = storeUnavailable(c, "failed to load loyalty account")
			return false
		}
		reward, account = r, a
	}
	return h.applyConfirmationEffectsTx(c, ctx, tx, b, promo, reward, account)
}

// announcePaidConfirmed publishes the confirmation event after the
// commit. The showtime is loaded outside the closed transaction.
func (h *CheckoutHandler) announcePaidConfirmed(c echo.Context, ctx context.Context, b *model.Booking) {
	show, err := h.Showtimes.GetByID(ctx, b.ShowtimeID)
	if err != nil {
		c.Logger().Warnf("confirmed event skipped for %s: %v", b.Reference, err)
		return
	}
	seats, err := h.Bookings.SeatsByBooking(ctx, b.ID)
	if err != nil {
		c.Logger().Warnf("confirmed event skipped for %s: %v", b.Reference, err)
		return
	}
	labels := make([]string, len(seats))
	for i, s := range seats {
		labels[i] = model.SeatRef{RowLabel: s.RowLabel, SeatNumber: s.SeatNumber}.Label()
	}
	ev := queue.BookingConfirmedEvent{
		EventID:          uuid.NewString(),
		BookingReference: b.Reference,
		ShowtimeID:       show.ID,
		MovieTitle:       show.MovieTitle,
		StartsAt:         show.StartsAt.UTC().Format(time.RFC3339),
		Channel:          b.Channel,
		SeatLabels:       labels,
		DiscountCents:    b.DiscountCents,
		TotalCents:       b.TotalCents,
		ConfirmedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := qp.PublishBookingConfirmed(pubCtx, ev); err != nil {
		c.Logger().Warnf("booking.confirmed publish failed for %s: %v", b.Reference, err)
	}
}
