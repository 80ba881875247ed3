package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/evgenyq/kitesafari-booking/internal/middleware"
	"github.com/evgenyq/kitesafari-booking/internal/model"
	"github.com/evgenyq/kitesafari-booking/internal/repository"
)

// MyBookingsHandler lets a verified guest list the bookings they have
// made across trips.
type MyBookingsHandler struct {
	UserRepo    *repository.UserRepo
	BookingRepo *repository.BookingRepo
}

// NewMyBookingsHandler constructs a MyBookingsHandler.  All dependencies
// must be non-nil.
func NewMyBookingsHandler(userRepo *repository.UserRepo, bookingRepo *repository.BookingRepo) *MyBookingsHandler {
	if userRepo == nil || bookingRepo == nil {
		panic("nil repository passed to NewMyBookingsHandler")
	}
	return &MyBookingsHandler{UserRepo: userRepo, BookingRepo: bookingRepo}
}

// List handles GET /v1/my-bookings.  A caller who has never booked gets
// an empty list, not an error; users are only created by the booking
// flow itself.
func (h *MyBookingsHandler) List(c echo.Context) error {
	telegramID, ok := c.Get(middleware.ContextTelegramID).(int64)
	if !ok || telegramID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	userID, err := h.UserRepo.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if userID == 0 {
		return c.JSON(http.StatusOK, echo.Map{"items": []model.Booking{}})
	}
	bookings, err := h.BookingRepo.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": bookings})
}

// Me handles GET /v1/me and returns the verified caller's profile as the
// booking flow knows it.  A caller who has never booked gets registered:
// false with no user object.
func (h *MyBookingsHandler) Me(c echo.Context) error {
	telegramID, ok := c.Get(middleware.ContextTelegramID).(int64)
	if !ok || telegramID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	user, err := h.UserRepo.GetByTelegramID(c.Request().Context(), telegramID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if user == nil {
		return c.JSON(http.StatusOK, echo.Map{"registered": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"registered": true, "user": user})
}
