package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/evgenyq/kitesafari-booking/internal/notifier"
	"github.com/evgenyq/kitesafari-booking/internal/repository"
)

// EventsHandler streams cabin state snapshots to clients watching a
// cabin during their booking flow, so a guest mid-form learns that the
// cabin was just taken without polling.  Snapshots are only a cue to
// re-fetch GET /v1/cabins/:id; the stream never substitutes for calling
// the booking endpoint.
type EventsHandler struct {
	CabinRepo *repository.CabinRepo
	Hub       *notifier.Hub
}

// NewEventsHandler constructs an EventsHandler.  All dependencies must
// be non-nil.
func NewEventsHandler(cabinRepo *repository.CabinRepo, hub *notifier.Hub) *EventsHandler {
	if cabinRepo == nil || hub == nil {
		panic("nil dependency passed to NewEventsHandler")
	}
	return &EventsHandler{CabinRepo: cabinRepo, Hub: hub}
}

// StreamCabin handles GET /v1/cabins/:id/events as a server-sent-events
// stream.  The first event carries the cabin's current status and
// version; subsequent events follow successful commits.  Heartbeats
// keep intermediaries from closing an idle connection.  Delivery is
// best-effort: an observer may miss an intermediate transition but will
// see the latest state on its next re-fetch.
func (h *EventsHandler) StreamCabin(c echo.Context) error {
	cabinID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || cabinID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
	}
	ctx := c.Request().Context()
	cabin, err := h.CabinRepo.GetByID(ctx, cabinID)
	if err != nil {
		if errors.Is(err, repository.ErrCabinNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cabin not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load cabin"})
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	stream, cancel := h.Hub.Subscribe(ctx, cabinID)
	defer cancel()

	// Initial snapshot so the observer starts from known state.
	initial := notifier.Snapshot{
		CabinID: cabin.ID,
		Status:  cabin.Status,
		Version: cabin.Version,
		At:      time.Now().UTC(),
	}
	if err := writeEvent(res, "cabin-status", initial); err != nil {
		return nil
	}

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-stream:
			if err := writeEvent(res, "cabin-status", snap); err != nil {
				return nil
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(res, ": heartbeat\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

func writeEvent(res *echo.Response, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
