package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/evgenyq/kitesafari-booking/internal/auth"
	"github.com/evgenyq/kitesafari-booking/internal/config"
	"github.com/evgenyq/kitesafari-booking/internal/handler"
	"github.com/evgenyq/kitesafari-booking/internal/middleware"
)

// RegisterBooking registers the authenticated booking endpoints.  Every
// route here runs the identity middleware, so handlers can rely on a
// verified Telegram id and admin flag in the context.  The booking
// endpoint is additionally rate limited per caller: the allocator
// tolerates races, but a misbehaving client hammering conditional
// commits only generates useless version mismatches.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, my *handler.MyBookingsHandler,
	verifier *auth.TelegramVerifier, jwtSecret string, admins middleware.AdminChecker, rdb *redis.Client) {
	g := e.Group(
		"/v1",
		middleware.Identity(verifier, jwtSecret, admins),
	)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	// The allocator entry point; handles both normal claims and admin
	// overrides (the latter checked against the admin flag in-handler so
	// both modes share one route, matching the mini-app's contract).
	g.POST("/bookings", b.CreateBooking, limiter)
	// A guest's own booking history and profile.
	g.GET("/my-bookings", my.List)
	g.GET("/me", my.Me)
}

// RegisterAdmin registers the explicit admin override route.  It funnels
// into the same handler and allocator commit path as POST /v1/bookings
// with admin_override set; the separate route exists for backoffice
// tooling that authenticates with service tokens and should fail fast
// with 403 before a request body is even parsed.
func RegisterAdmin(e *echo.Echo, b *handler.BookingHandler,
	verifier *auth.TelegramVerifier, jwtSecret string, admins middleware.AdminChecker) {
	g := e.Group(
		"/v1/admin",
		middleware.Identity(verifier, jwtSecret, admins),
		middleware.RequireAdmin(),
	)
	g.POST("/bookings", b.CreateBooking)
}
