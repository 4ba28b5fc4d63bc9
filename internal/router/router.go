// Package router maps HTTP routes to handlers and attaches the
// middleware each surface needs: the cache and rate limiter on the
// public browse routes, JWT plus role checks on everything that acts
// on bookings.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebox/internal/handler"
	"github.com/iliyamo/cinebox/internal/middleware"
	"github.com/iliyamo/cinebox/internal/model"
)

// RegisterRoutes registers routes that carry no middleware at all.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints. Register, login,
// refresh and logout live under /v1/auth without JWT middleware;
// /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the guest browse surface. The whole group
// is rate limited; everything except the claim stream also goes
// through the response cache (an SSE response must never be cached).
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, s *handler.StreamHandler,
	cache echo.MiddlewareFunc, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1", limiter)
	g.GET("/showtimes", p.ListShowtimes, cache)
	g.GET("/showtimes/:id", p.GetShowtime, cache)
	g.GET("/showtimes/:id/seats", p.SeatMap, cache)
	g.GET("/catalog", p.ListCatalog, cache)
	g.GET("/showtimes/:id/claims/stream", s.ClaimStream)
}

// RegisterBooking registers the authenticated booking surface:
// customer checkout and lookup, staff box-office sale and
// cancellation, and the gate scan endpoint for scanner devices.
func RegisterBooking(e *echo.Echo, co *handler.CheckoutHandler, b *handler.BookingHandler,
	gate *handler.GateHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	customer := e.Group("/v1", limiter)
	customer.Use(middleware.JWTAuth(jwtSecret))
	customer.Use(middleware.RequireRole(model.RoleCustomer, model.RoleStaff))
	customer.POST("/showtimes/:id/checkout", co.Checkout)
	customer.GET("/my-bookings", b.ListMine)
	customer.GET("/bookings/:reference", b.Get)

	staff := e.Group("/v1", limiter)
	staff.Use(middleware.JWTAuth(jwtSecret))
	staff.Use(middleware.RequireRole(model.RoleStaff))
	staff.POST("/box-office/showtimes/:id/sale", co.BoxOfficeSale)
	staff.POST("/bookings/:reference/cancel", b.Cancel)

	scan := e.Group("/v1/gate", limiter)
	scan.Use(middleware.JWTAuth(jwtSecret))
	scan.Use(middleware.RequireRole(model.RoleGate, model.RoleStaff))
	scan.POST("/scan", gate.Scan)

	// Provider webhook: no JWT (the provider is not a user), guarded
	// by the rate limiter and the unguessable booking reference.
	e.POST("/v1/payments/callback", co.PaymentCallback, limiter)
}
