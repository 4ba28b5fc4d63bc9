package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebox/internal/model"
	"github.com/iliyamo/cinebox/internal/repository"
)

// Seat map statuses returned to browsing clients. BLOCKED positions
// are part of the grid but can never be sold.
const (
	seatAvailable = "AVAILABLE"
	seatTaken     = "TAKEN"
	seatBlocked   = "BLOCKED"
)

// PublicHandler serves the unauthenticated browse surface: upcoming
// showtimes, the per-showtime seat map and the concession catalog.
// These routes sit behind the response cache, so seat maps are a
// snapshot; clients needing live availability attach to the claim
// stream as well.
type PublicHandler struct {
	Screens   *repository.ScreenRepo
	Showtimes *repository.ShowtimeRepo
	Bookings  *repository.BookingRepo
	Catalog   *repository.CatalogRepo
}

func NewPublicHandler(sc *repository.ScreenRepo, st *repository.ShowtimeRepo, b *repository.BookingRepo, cat *repository.CatalogRepo) *PublicHandler {
	if sc == nil || st == nil || b == nil || cat == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Screens: sc, Showtimes: st, Bookings: b, Catalog: cat}
}

type showtimePart struct {
	ID             uint64  `json:"id"`
	ScreenID       uint64  `json:"screen_id"`
	MovieTitle     string  `json:"movie_title"`
	StartsAt       string  `json:"starts_at"`
	BasePriceCents uint32  `json:"base_price_cents"`
	VIPPriceCents  *uint32 `json:"vip_price_cents,omitempty"`
}

func toShowtimePart(s model.Showtime) showtimePart {
	return showtimePart{
		ID:             s.ID,
		ScreenID:       s.ScreenID,
		MovieTitle:     s.MovieTitle,
		StartsAt:       s.StartsAt.UTC().Format(time.RFC3339),
		BasePriceCents: s.BasePriceCents,
		VIPPriceCents:  s.VIPPriceCents,
	}
}

// ListShowtimes handles GET /v1/showtimes.
func (h *PublicHandler) ListShowtimes(c echo.Context) error {
	shows, err := h.Showtimes.ListUpcoming(c.Request().Context(), 100)
	if err != nil {
		return storeUnavailable(c, "failed to load showtimes")
	}
	items := make([]showtimePart, 0, len(shows))
	for _, s := range shows {
		items = append(items, toShowtimePart(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetShowtime handles GET /v1/showtimes/:id.
func (h *PublicHandler) GetShowtime(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	s, err := h.Showtimes.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return storeUnavailable(c, "failed to load showtime")
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toShowtimePart(*s)})
}

type seatMapCell struct {
	RowLabel   string `json:"row_label"`
	SeatNumber uint32 `json:"seat_number"`
	SeatType   string `json:"seat_type"`
	Status     string `json:"status"`
	PriceCents uint32 `json:"price_cents,omitempty"`
}

// SeatMap handles GET /v1/showtimes/:id/seats. It merges the
// screen's layout template with the showtime's claim set: every
// layout position appears exactly once as AVAILABLE, TAKEN or
// BLOCKED, with the price the seat would sell for right now.
func (h *PublicHandler) SeatMap(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	ctx := c.Request().Context()
	show, err := h.Showtimes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return storeUnavailable(c, "failed to load showtime")
	}
	layout, err := h.Screens.LayoutByScreen(ctx, show.ScreenID)
	if err != nil {
		return storeUnavailable(c, "failed to load layout")
	}
	takenList, err := h.Bookings.TakenSeats(ctx, id)
	if err != nil {
		return storeUnavailable(c, "failed to load claims")
	}
	taken := make(map[model.SeatRef]struct{}, len(takenList))
	for _, s := range takenList {
		taken[s] = struct{}{}
	}

	cells := make([]seatMapCell, 0, len(layout))
	for _, seat := range layout {
		cell := seatMapCell{
			RowLabel:   seat.RowLabel,
			SeatNumber: seat.SeatNumber,
			SeatType:   seat.SeatType,
		}
		switch {
		case seat.SeatType == model.SeatTypeUnavailable || !seat.IsAvailable:
			cell.Status = seatBlocked
		default:
			if _, ok := taken[model.SeatRef{RowLabel: seat.RowLabel, SeatNumber: seat.SeatNumber}]; ok {
				cell.Status = seatTaken
			} else {
				cell.Status = seatAvailable
			}
			cell.PriceCents = show.SeatPriceCents(seat.SeatType)
		}
		cells = append(cells, cell)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"showtime_id": id,
		"seats":       cells,
	})
}

// ListCatalog handles GET /v1/catalog: the active concessions and
// combos a cart may reference.
func (h *PublicHandler) ListCatalog(c echo.Context) error {
	ctx := c.Request().Context()
	concessions, err := h.Catalog.ListConcessions(ctx)
	if err != nil {
		return storeUnavailable(c, "failed to load concessions")
	}
	combos, err := h.Catalog.ListCombos(ctx)
	if err != nil {
		return storeUnavailable(c, "failed to load combos")
	}
	type catalogItem struct {
		ID         uint64 `json:"id"`
		Name       string `json:"name"`
		PriceCents uint32 `json:"price_cents"`
	}
	cs := make([]catalogItem, 0, len(concessions))
	for _, x := range concessions {
		cs = append(cs, catalogItem{ID: x.ID, Name: x.Name, PriceCents: x.PriceCents})
	}
	cb := make([]catalogItem, 0, len(combos))
	for _, x := range combos {
		cb = append(cb, catalogItem{ID: x.ID, Name: x.Name, PriceCents: x.PriceCents})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"concessions": cs,
		"combos":      cb,
	})
}
