package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-reservation/internal/middleware"
)

// RegisterCustomer registers the authenticated endpoints under /v1.  All
// routes require a valid JWT; routes that move money also pass through
// the rate limiter, which keys on the user id JWTAuth stored.
func RegisterCustomer(e *echo.Echo, h Handlers, limit echo.MiddlewareFunc, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	money := guards(limit)

	// ---- Reservations ----
	g.POST("/events/:id/reserve", h.Reservations.Reserve, money...)
	g.POST("/reservations/:id/cancel", h.Reservations.Cancel, money...)
	g.GET("/reservations/unpaid", h.Reservations.Unpaid)
	g.GET("/reservations/upcoming", h.Reservations.Upcoming)
	g.GET("/reservations/past", h.Reservations.Past)
	g.GET("/reservations/:id", h.Reservations.Get)

	// ---- Wallet ----
	g.GET("/wallet", h.Wallet.Get)
	g.POST("/wallet/deposit", h.Wallet.Deposit, money...)
	g.POST("/wallet/withdraw", h.Wallet.Withdraw, money...)
	g.POST("/wallet/transfer", h.Wallet.Transfer, money...)

	// ---- Profile and passengers ----
	g.GET("/profile", h.Profile.GetProfile)
	g.PUT("/profile", h.Profile.UpdateProfile)
	g.GET("/passengers", h.Profile.ListPassengers)
	g.POST("/passengers", h.Profile.AddPassenger)
	g.DELETE("/passengers/:id", h.Profile.DeletePassenger)
}
