package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebox/internal/booking"
	"github.com/iliyamo/cinebox/internal/events"
	"github.com/iliyamo/cinebox/internal/model"
	"github.com/iliyamo/cinebox/internal/pricing"
	"github.com/iliyamo/cinebox/internal/queue"
	"github.com/iliyamo/cinebox/internal/repository"
	qp "github.com/iliyamo/cinebox/internal/service"
)

// CheckoutHandler owns the commit path: customer checkout, staff
// box-office sales and the payment callback. All three funnel into
// one transactional sequence in which the seat-claim insert is the
// only arbiter of seat conflicts; nothing pre-checks availability.
type CheckoutHandler struct {
	Screens   *repository.ScreenRepo
	Showtimes *repository.ShowtimeRepo
	Bookings  *repository.BookingRepo
	Catalog   *repository.CatalogRepo
	Promos    *repository.PromoRepo
	Loyalty   *repository.LoyaltyRepo
	Claims    *events.Publisher
}

func NewCheckoutHandler(sc *repository.ScreenRepo, st *repository.ShowtimeRepo, b *repository.BookingRepo,
	cat *repository.CatalogRepo, p *repository.PromoRepo, l *repository.LoyaltyRepo, claims *events.Publisher) *CheckoutHandler {
	if sc == nil || st == nil || b == nil || cat == nil || p == nil || l == nil {
		panic("nil repository passed to NewCheckoutHandler")
	}
	return &CheckoutHandler{Screens: sc, Showtimes: st, Bookings: b, Catalog: cat, Promos: p, Loyalty: l, Claims: claims}
}

type checkoutReq struct {
	CustomerName    string         `json:"customer_name"`
	CustomerEmail   string         `json:"customer_email"`
	Seats           []seatRefInput `json:"seats"`
	Concessions     []itemInput    `json:"concessions"`
	Combos          []itemInput    `json:"combos"`
	PromoCode       string         `json:"promo_code"`
	LoyaltyRewardID uint64         `json:"loyalty_reward_id"`
	// Box-office only: attach the sale to a registered customer so
	// loyalty redemption works for walk-ups who name their account.
	CustomerUserID uint64 `json:"user_id"`
}

// checkoutPlan is a validated, priced cart ready to be committed.
type checkoutPlan struct {
	show    *model.Showtime
	refs    []model.SeatRef
	seats   []pricing.SeatLine
	items   []model.BookingItem
	cart    pricing.Cart
	quote   pricing.Quote
	promo   *model.PromoCode
	reward  *model.LoyaltyReward
	account *model.LoyaltyAccount
	userID  *uint64
	name    string
	email   string
}

// Checkout handles POST /v1/showtimes/:id/checkout. The booking is
// created PENDING with its seats durably claimed; payment side
// effects (promo use, loyalty debit) wait for the callback.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	plan, ok := h.buildPlan(c, &uid)
	if !ok {
		return nil
	}
	return h.commit(c, plan, model.ChannelOnline, model.BookingPending)
}

// BoxOfficeSale handles POST /v1/box-office/showtimes/:id/sale. A
// cash sale is born CONFIRMED, so promo consumption and loyalty
// redemption happen inside the same transaction as the claims.
func (h *CheckoutHandler) BoxOfficeSale(c echo.Context) error {
	var userID *uint64
	// Peek at the body for an optional customer account; buildPlan
	// rebinds the same request.
	var peek checkoutReq
	if err := c.Bind(&peek); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if peek.CustomerUserID != 0 {
		userID = &peek.CustomerUserID
	}
	plan, ok := h.buildPlanFrom(c, peek, userID)
	if !ok {
		return nil
	}
	return h.commit(c, plan, model.ChannelBoxOffice, model.BookingConfirmed)
}

func (h *CheckoutHandler) buildPlan(c echo.Context, userID *uint64) (*checkoutPlan, bool) {
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		return nil, false
	}
	return h.buildPlanFrom(c, req, userID)
}

// buildPlanFrom validates the cart against the showtime's layout and
// the catalog, resolves promo and reward, and prices the result. On
// failure the response has already been written.
func (h *CheckoutHandler) buildPlanFrom(c echo.Context, req checkoutReq, userID *uint64) (*checkoutPlan, bool) {
	showtimeID, ok := pathID(c, "id")
	if !ok {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
		return nil, false
	}
	ctx := c.Request().Context()

	show, err := h.Showtimes.GetByID(ctx, showtimeID)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		} else {
			_ = storeUnavailable(c, "failed to load showtime")
		}
		return nil, false
	}

	refs := dedupeSeats(req.Seats)
	if len(refs) == 0 {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one seat is required"})
		return nil, false
	}

	layout, err := h.Screens.LayoutIndex(ctx, show.ScreenID)
	if err != nil {
		_ = storeUnavailable(c, "failed to load layout")
		return nil, false
	}
	seats := make([]pricing.SeatLine, 0, len(refs))
	for _, ref := range refs {
		seat, ok := layout[ref]
		if !ok {
			_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown seat " + ref.Label()})
			return nil, false
		}
		if seat.SeatType == model.SeatTypeUnavailable || !seat.IsAvailable {
			_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "seat " + ref.Label() + " is not sellable"})
			return nil, false
		}
		seats = append(seats, pricing.SeatLine{Seat: ref, PriceCents: show.SeatPriceCents(seat.SeatType)})
	}

	plan := &checkoutPlan{
		show:   show,
		refs:   refs,
		seats:  seats,
		userID: userID,
		name:   req.CustomerName,
		email:  req.CustomerEmail,
	}
	plan.cart.Seats = seats

	if !h.resolveItems(c, ctx, req, plan) {
		return nil, false
	}
	if !h.resolvePromo(c, ctx, req, plan) {
		return nil, false
	}
	if !h.resolveReward(c, ctx, req, plan) {
		return nil, false
	}

	quote, err := pricing.Compute(plan.cart, time.Now().UTC())
	if err != nil {
		// Oversized carts are malformed input; promo ineligibility
		// is a well-formed cart the pricing rules reject.
		if errors.Is(err, pricing.ErrQuantityTooLarge) || errors.Is(err, pricing.ErrCartTooLarge) {
			_ = c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		} else {
			_ = c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		}
		return nil, false
	}
	plan.quote = quote
	return plan, true
}

func (h *CheckoutHandler) resolveItems(c echo.Context, ctx context.Context, req checkoutReq, plan *checkoutPlan) bool {
	concessions := mergeItems(req.Concessions)
	combos := mergeItems(req.Combos)

	if len(concessions) > 0 {
		ids := make([]uint64, len(concessions))
		for i, it := range concessions {
			ids[i] = it.ID
		}
		byID, err := h.Catalog.ConcessionsByID(ctx, ids)
		if err != nil {
			if errors.Is(err, repository.ErrItemNotFound) {
				_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown concession"})
			} else {
				_ = storeUnavailable(c, "failed to load concessions")
			}
			return false
		}
		for _, it := range concessions {
			item := byID[it.ID]
			plan.cart.Concessions = append(plan.cart.Concessions, pricing.ItemLine{
				ItemID: item.ID, Name: item.Name, UnitPriceCents: item.PriceCents, Quantity: it.Quantity,
			})
			plan.items = append(plan.items, model.BookingItem{
				ItemType: model.ItemConcession, ItemID: item.ID, Quantity: it.Quantity, UnitPriceCents: item.PriceCents,
			})
		}
	}
	if len(combos) > 0 {
		ids := make([]uint64, len(combos))
		for i, it := range combos {
			ids[i] = it.ID
		}
		byID, err := h.Catalog.CombosByID(ctx, ids)
		if err != nil {
			if errors.Is(err, repository.ErrItemNotFound) {
				_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown combo"})
			} else {
				_ = storeUnavailable(c, "failed to load combos")
			}
			return false
		}
		for _, it := range combos {
			item := byID[it.ID]
			plan.cart.Combos = append(plan.cart.Combos, pricing.ItemLine{
				ItemID: item.ID, Name: item.Name, UnitPriceCents: item.PriceCents, Quantity: it.Quantity,
			})
			plan.items = append(plan.items, model.BookingItem{
				ItemType: model.ItemCombo, ItemID: item.ID, Quantity: it.Quantity, UnitPriceCents: item.PriceCents,
			})
		}
	}
	return true
}

func (h *CheckoutHandler) resolvePromo(c echo.Context, ctx context.Context, req checkoutReq, plan *checkoutPlan) bool {
	if req.PromoCode == "" {
		return true
	}
	promo, err := h.Promos.GetByCode(ctx, req.PromoCode)
	if err != nil {
		if errors.Is(err, repository.ErrPromoNotFound) {
			_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown promo code"})
		} else {
			_ = storeUnavailable(c, "failed to load promo code")
		}
		return false
	}
	plan.promo = promo
	plan.cart.Promo = promo
	return true
}

func (h *CheckoutHandler) resolveReward(c echo.Context, ctx context.Context, req checkoutReq, plan *checkoutPlan) bool {
	if req.LoyaltyRewardID == 0 {
		return true
	}
	if plan.userID == nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "loyalty redemption requires a customer account"})
		return false
	}
	reward, err := h.Loyalty.GetReward(ctx, req.LoyaltyRewardID)
	if err != nil {
		if errors.Is(err, repository.ErrRewardNotFound) {
			_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown loyalty reward"})
		} else {
			_ = storeUnavailable(c, "failed to load reward")
		}
		return false
	}
	if !reward.IsActive {
		_ = c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "loyalty reward is not active"})
		return false
	}
	account, err := h.Loyalty.AccountByUser(ctx, *plan.userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "no loyalty account for this customer"})
		} else {
			_ = storeUnavailable(c, "failed to load loyalty account")
		}
		return false
	}
	if account.Points < reward.PointCost {
		_ = c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "insufficient loyalty points"})
		return false
	}
	plan.reward = reward
	plan.account = account
	plan.cart.Reward = reward
	return true
}

// commit writes the booking, its lines and its seat claims in one
// transaction. A duplicate-key failure on the claims rolls the whole
// booking back and reports exactly which seats were lost. For
// CONFIRMED bookings (box office) the promo and loyalty side effects
// join the same transaction.
func (h *CheckoutHandler) commit(c echo.Context, plan *checkoutPlan, channel, status string) error {
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

	b := &model.Booking{
		ShowtimeID:       plan.show.ID,
		UserID:           plan.userID,
		CustomerName:     plan.name,
		CustomerEmail:    plan.email,
		Channel:          channel,
		TicketsCents:     plan.quote.TicketsCents,
		ConcessionsCents: plan.quote.ConcessionsCents,
		CombosCents:      plan.quote.CombosCents,
		DiscountCents:    plan.quote.DiscountCents,
		TotalCents:       plan.quote.TotalCents,
		Status:           status,
	}
	if plan.promo != nil {
		b.PromoCodeID = &plan.promo.ID
	}
	if plan.reward != nil {
		b.LoyaltyRewardID = &plan.reward.ID
	}
	// A reference collision is astronomically rare but the unique
	// index will report it; mint a fresh one and retry the insert.
	for attempt := 0; ; attempt++ {
		ref, err := booking.NewReference()
		if err != nil {
			return storeUnavailable(c, "failed to generate reference")
		}
		b.Reference = ref
		err = h.Bookings.CreateTx(ctx, tx, b)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrReferenceTaken) && attempt < 2 {
			continue
		}
		return storeUnavailable(c, "failed to create booking")
	}

	seatLines := make([]model.BookingSeat, 0, len(plan.seats))
	for _, s := range plan.seats {
		seatLines = append(seatLines, model.BookingSeat{
			BookingID:  b.ID,
			ShowtimeID: plan.show.ID,
			RowLabel:   s.Seat.RowLabel,
			SeatNumber: s.Seat.SeatNumber,
			PriceCents: s.PriceCents,
		})
	}
	if err := h.Bookings.CreateSeatsBulkTx(ctx, tx, seatLines); err != nil {
		return storeUnavailable(c, "failed to create booking seats")
	}
	for i := range plan.items {
		plan.items[i].BookingID = b.ID
	}
	if err := h.Bookings.CreateItemsBulkTx(ctx, tx, plan.items); err != nil {
		return storeUnavailable(c, "failed to create booking items")
	}

	if err := h.Bookings.ClaimSeatsTx(ctx, tx, plan.show.ID, b.ID, plan.refs); err != nil {
		if errors.Is(err, repository.ErrSeatTaken) {
			// Roll back before querying which seats were lost, so the
			// lookup sees the committed state, not our own inserts.
			_ = tx.Rollback()
			committed = true // suppress the deferred second rollback
			unavailable, lookupErr := h.Bookings.ClaimedAmong(ctx, plan.show.ID, plan.refs)
			if lookupErr != nil {
				return c.JSON(http.StatusConflict, echo.Map{"error": "seats already taken"})
			}
			return c.JSON(http.StatusConflict, echo.Map{
				"error":       "seats already taken",
				"unavailable": unavailable,
			})
		}
		return storeUnavailable(c, "failed to claim seats")
	}

	if status == model.BookingConfirmed {
		if done := h.applyConfirmationEffectsTx(c, ctx, tx, b, plan.promo, plan.reward, plan.account); !done {
			return nil
		}
	}

	if err := tx.Commit(); err != nil {
		return storeUnavailable(c, "failed to commit transaction")
	}
	committed = true

	h.announceClaims(c, plan.show.ID, b.Reference, plan.refs)
	if status == model.BookingConfirmed {
		h.announceConfirmed(c, b, plan.show, plan.refs)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"booking_reference": b.Reference,
		"status":            status,
		"quote":             plan.quote,
	})
}

// applyConfirmationEffectsTx consumes the promo use and debits the
// loyalty points inside the caller's transaction. Both writes are
// guarded (conditional update, unique ledger key) so a retry can
// never double-apply them. Reports false after writing the error
// response.
func (h *CheckoutHandler) applyConfirmationEffectsTx(c echo.Context, ctx context.Context, tx *sql.Tx,
	b *model.Booking, promo *model.PromoCode, reward *model.LoyaltyReward, account *model.LoyaltyAccount) bool {
	if promo != nil {
		if err := h.Promos.ConsumeTx(ctx, tx, promo.ID); err != nil {
			if errors.Is(err, repository.ErrPromoExhausted) {
				_ = c.JSON(http.StatusConflict, echo.Map{"error": "promo code usage limit reached"})
			} else {
				_ = storeUnavailable(c, "failed to consume promo")
			}
			return false
		}
	}
	if reward != nil && account != nil {
		if err := h.Loyalty.RedeemTx(ctx, tx, account.ID, b.ID, reward.PointCost); err != nil {
			if errors.Is(err, repository.ErrInsufficientPoints) {
				_ = c.JSON(http.StatusConflict, echo.Map{"error": "insufficient loyalty points"})
			} else {
				_ = storeUnavailable(c, "failed to redeem reward")
			}
			return false
		}
	}
	return true
}

// announceClaims publishes one claim event per seat so browsing
// clients mark them taken without refetching the seat map. Claims
// are already durable; a publish failure is logged, not surfaced.
func (h *CheckoutHandler) announceClaims(c echo.Context, showtimeID uint64, ref string, refs []model.SeatRef) {
	if h.Claims == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Claims.PublishClaims(ctx, showtimeID, ref, refs); err != nil {
		c.Logger().Warnf("claim publish failed for %s: %v", ref, err)
	}
}

func (h *CheckoutHandler) announceConfirmed(c echo.Context, b *model.Booking, show *model.Showtime, refs []model.SeatRef) {
	labels := make([]string, len(refs))
	for i, s := range refs {
		labels[i] = s.Label()
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
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := qp.PublishBookingConfirmed(ctx, ev); err != nil {
		c.Logger().Warnf("booking.confirmed publish failed for %s: %v", b.Reference, err)
	}
}
