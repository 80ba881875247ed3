package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/evgenyq/kitesafari-booking/internal/config"
	"github.com/evgenyq/kitesafari-booking/internal/handler"
	"github.com/evgenyq/kitesafari-booking/internal/middleware"
)

// RegisterPublic registers the unauthenticated browse endpoints.  These
// serve the read-model the mini-app renders before a guest opens the
// booking flow.  GET responses are cached in Redis when a client is
// available; the middleware degrades to a no-op otherwise.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, ev *handler.EventsHandler, rdb *redis.Client) {
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	// List all trips with departure dates
	e.GET("/v1/trips", p.GetTrips, cache)
	// Cabins of a trip in deck-plan order, with live status and version
	e.GET("/v1/trips/:id/cabins", p.GetTripCabins, cache)
	// Single cabin detail; observers re-fetch this after a snapshot event
	e.GET("/v1/cabins/:id", p.GetCabin, cache)
	// Server-sent cabin snapshots; never cached, the stream stays open
	e.GET("/v1/cabins/:id/events", ev.StreamCabin)
}
