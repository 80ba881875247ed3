package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/evgenyq/kitesafari-booking/internal/repository"
)

// PublicHandler serves the read-model the mini-app browses before a
// guest opens the booking flow: trips, their cabins with live status,
// and single-cabin detail.  These endpoints require no authentication
// and sit behind the response cache middleware.
type PublicHandler struct {
	TripRepo  *repository.TripRepo
	CabinRepo *repository.CabinRepo
}

// NewPublicHandler constructs a PublicHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewPublicHandler(tripRepo *repository.TripRepo, cabinRepo *repository.CabinRepo) *PublicHandler {
	if tripRepo == nil || cabinRepo == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{TripRepo: tripRepo, CabinRepo: cabinRepo}
}

// GetTrips handles GET /v1/trips and returns all trips ordered by
// departure date.
func (h *PublicHandler) GetTrips(c echo.Context) error {
	trips, err := h.TripRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load trips"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": trips})
}

// GetTripCabins handles GET /v1/trips/:id/cabins.  It returns the trip's
// cabins in deck-plan order, including each cabin's current status and
// version so a client can open the booking flow against fresh state.
func (h *PublicHandler) GetTripCabins(c echo.Context) error {
	tripID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || tripID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	ctx := c.Request().Context()
	if _, err := h.TripRepo.GetByID(ctx, tripID); err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	cabins, err := h.CabinRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load cabins"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": cabins})
}

// GetCabin handles GET /v1/cabins/:id.  Observers poll this after a
// notifier snapshot to re-fetch authoritative cabin state.
func (h *PublicHandler) GetCabin(c echo.Context) error {
	cabinID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || cabinID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
	}
	cabin, err := h.CabinRepo.GetByID(c.Request().Context(), cabinID)
	if err != nil {
		if errors.Is(err, repository.ErrCabinNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cabin not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load cabin"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": cabin})
}
