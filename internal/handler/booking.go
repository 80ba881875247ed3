package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/evgenyq/kitesafari-booking/internal/allocator"
	"github.com/evgenyq/kitesafari-booking/internal/middleware"
	"github.com/evgenyq/kitesafari-booking/internal/model"
	"github.com/evgenyq/kitesafari-booking/internal/queue"
)

// BookingHandler exposes the booking allocator over HTTP.  It assumes
// the identity middleware has already verified the caller and stored
// the Telegram id and admin flag in the context.  The handler itself
// never touches cabin state; everything funnels through the allocator.
type BookingHandler struct {
	Alloc *allocator.Allocator
	// Publish broadcasts a confirmed booking to the message broker.  It
	// is called asynchronously and its failure never reaches the client;
	// tests inject a stub here.
	Publish func(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// NewBookingHandler constructs a BookingHandler.  publish may be nil to
// disable broker events (useful in tests).
func NewBookingHandler(alloc *allocator.Allocator, publish func(context.Context, queue.BookingConfirmedEvent) error) *BookingHandler {
	if alloc == nil {
		panic("nil allocator passed to NewBookingHandler")
	}
	return &BookingHandler{Alloc: alloc, Publish: publish}
}

// createBookingRequest mirrors the mini-app's create-booking payload.
// Normal mode fills the claimant fields; admin mode sets admin_override
// together with a target cabin_status and free-text guests_info.
type createBookingRequest struct {
	TripID        uint64            `json:"trip_id"`
	CabinID       uint64            `json:"cabin_id"`
	TelegramID    int64             `json:"telegram_id"`
	Handle        string            `json:"telegram_handle"`
	FullName      string            `json:"full_name"`
	BookingType   model.BookingType `json:"booking_type"`
	GuestsInfo    string            `json:"guests_info"`
	PayerDetails  string            `json:"payer_details"`
	AdminOverride bool              `json:"admin_override"`
	CabinStatus   model.CabinStatus `json:"cabin_status"`
}

// CreateBooking handles POST /v1/bookings.  It validates the request,
// routes it to the allocator's normal or override path, and translates
// the allocator's typed failures into the error-code contract the
// mini-app understands.  A lost race returns RACE_CONDITION and the
// client is expected to re-fetch cabin state before deciding again.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success":    false,
			"error":      "invalid request body",
			"error_code": "VALIDATION_ERROR",
		})
	}

	ctx := c.Request().Context()

	if req.AdminOverride {
		isAdmin, _ := c.Get(middleware.ContextIsAdmin).(bool)
		if !isAdmin {
			return c.JSON(http.StatusForbidden, echo.Map{
				"success":    false,
				"error":      "admin privileges required",
				"error_code": "FORBIDDEN",
			})
		}
		actorID, _ := c.Get(middleware.ContextTelegramID).(int64)
		target := req.CabinStatus
		if target == "" {
			target = model.StatusBooked
		}
		result, err := h.Alloc.AdminOverride(ctx, &allocator.Override{
			TripID:       req.TripID,
			CabinID:      req.CabinID,
			TargetStatus: target,
			GuestsInfo:   req.GuestsInfo,
			ActorID:      actorID,
		})
		if err != nil {
			return h.writeFailure(c, err)
		}
		return c.JSON(http.StatusCreated, echo.Map{
			"success":            true,
			"booking_id":         result.BookingID,
			"total_amount_cents": result.TotalAmountCents,
			"message":            "cabin updated by admin",
		})
	}

	claim := &allocator.Claim{
		TripID:     req.TripID,
		CabinID:    req.CabinID,
		TelegramID: req.TelegramID,
		Handle:     req.Handle,
		FullName:   req.FullName,
		Type:       req.BookingType,
		GuestsInfo: req.GuestsInfo,
		PayerNote:  req.PayerDetails,
	}
	result, err := h.Alloc.Attempt(ctx, claim)
	if err != nil {
		return h.writeFailure(c, err)
	}

	if h.Publish != nil {
		ev := queue.BookingConfirmedEvent{
			BookingID:        result.BookingID,
			TripID:           req.TripID,
			CabinID:          req.CabinID,
			CabinNumber:      result.CabinNumber,
			Deck:             result.Deck,
			GuestHandle:      req.Handle,
			GuestName:        req.FullName,
			BookingType:      string(req.BookingType),
			NewStatus:        string(result.NewStatus),
			TotalAmountCents: result.TotalAmountCents,
			ConfirmedAt:      time.Now().UTC().Format(time.RFC3339),
		}
		// Fire and forget; the publisher logs its own failures.
		go func() { _ = h.Publish(context.Background(), ev) }()
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success":            true,
		"booking_id":         result.BookingID,
		"total_amount_cents": result.TotalAmountCents,
	})
}

// writeFailure renders an allocator failure using its wire code and
// suggested HTTP status.  Anything that is not a typed failure is
// reported as an opaque internal error.
func (h *BookingHandler) writeFailure(c echo.Context, err error) error {
	var f *allocator.Failure
	if !errors.As(err, &f) {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success":    false,
			"error":      "internal server error",
			"error_code": "INTERNAL_ERROR",
		})
	}
	body := echo.Map{
		"success":    false,
		"error":      f.Message,
		"error_code": string(f.Code),
	}
	if f.CurrentStatus != "" {
		body["current_status"] = f.CurrentStatus
	}
	return c.JSON(f.HTTPStatus(), body)
}
