package main // Entry point package

import (
	"log"  // Logging library
	"time" // Durations for auth configuration

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/evgenyq/kitesafari-booking/internal/allocator"
	"github.com/evgenyq/kitesafari-booking/internal/auth"
	"github.com/evgenyq/kitesafari-booking/internal/config"
	"github.com/evgenyq/kitesafari-booking/internal/database"
	"github.com/evgenyq/kitesafari-booking/internal/handler"
	"github.com/evgenyq/kitesafari-booking/internal/notifier"
	"github.com/evgenyq/kitesafari-booking/internal/queue"
	"github.com/evgenyq/kitesafari-booking/internal/repository"
	"github.com/evgenyq/kitesafari-booking/internal/router"
	queuepublisher "github.com/evgenyq/kitesafari-booking/internal/service"
)

func main() {
	// Load .env if present; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // Redis backs rate limiting and the response cache

	// Repositories over the shared connection pool.
	cabinRepo := repository.NewCabinRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	userRepo := repository.NewUserRepo(db)
	tripRepo := repository.NewTripRepo(db)
	adminRepo := repository.NewAdminRepo(db)

	// The notifier hub fans cabin snapshots out to SSE observers.
	hub := notifier.NewHub()

	alloc := allocator.New(cabinRepo, bookingRepo, userRepo, hub)

	verifier := auth.NewTelegramVerifier(cfg.TelegramBotToken,
		time.Duration(cfg.InitDataMaxAgeMin)*time.Minute)

	bookingHandler := handler.NewBookingHandler(alloc, queuepublisher.PublishBookingConfirmed)
	publicHandler := handler.NewPublicHandler(tripRepo, cabinRepo)
	myBookings := handler.NewMyBookingsHandler(userRepo, bookingRepo)
	eventsHandler := handler.NewEventsHandler(cabinRepo, hub)

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterPublic(e, publicHandler, eventsHandler, rdb)
	router.RegisterBooking(e, bookingHandler, myBookings, verifier, cfg.JWTSecret, adminRepo, rdb)
	router.RegisterAdmin(e, bookingHandler, verifier, cfg.JWTSecret, adminRepo)

	// Consume confirmed-booking events in the background; the consumer
	// reconnects on its own when the broker drops the connection.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
