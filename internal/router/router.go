// Package router registers the HTTP routes on an echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-reservation/internal/handler"
)

// Handlers groups every endpoint handler the API serves.
type Handlers struct {
	Auth         *handler.AuthHandler
	Events       *handler.EventHandler
	Reservations *handler.ReservationHandler
	Wallet       *handler.WalletHandler
	Profile      *handler.ProfileHandler
}

// Guards are the optional per-route middlewares.  A nil guard is skipped.
type Guards struct {
	RateLimit echo.MiddlewareFunc // money-moving routes
	Cache     echo.MiddlewareFunc // public event reads
}

// Register mounts the whole API.
func Register(e *echo.Echo, h Handlers, g Guards, jwtSecret string) {
	RegisterRoutes(e)
	RegisterAuth(e, h.Auth)
	RegisterPublic(e, h.Events, g.Cache)
	RegisterCustomer(e, h, g.RateLimit, jwtSecret)
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session endpoints under /v1/auth.  None of
// them require an access token; logout reads one if present.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	g.POST("/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints.
func RegisterPublic(e *echo.Echo, ev *handler.EventHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/events/:id", ev.Get, guards(cache)...)
}

func guards(mw ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mw))
	for _, m := range mw {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
