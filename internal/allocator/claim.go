package allocator

import (
	"strings"

	"github.com/evgenyq/kitesafari-booking/internal/model"
)

// Claim is one attempt to change a cabin's occupancy state through the
// normal booking flow.  A claim is ephemeral: it exists for the duration
// of a single Attempt and is never persisted when rejected.
//
// Fields:
//  TripID     – trip the cabin belongs to (recorded on the ledger).
//  CabinID    – target cabin.
//  TelegramID – verified claimant account id.
//  Handle     – claimant's messenger handle, as submitted (may carry '@').
//  FullName   – claimant's display name.
//  Type       – one of the four normal booking types.
//  GuestsInfo – optional occupant descriptor overriding the default
//               "handle name" text; for full_double it usually names both
//               guests.
//  PayerNote  – optional free-text payer details.
type Claim struct {
	TripID     uint64
	CabinID    uint64
	TelegramID int64
	Handle     string
	FullName   string
	Type       model.BookingType
	GuestsInfo string
	PayerNote  string
}

// Validate checks the claim's input constraints before any store access.
// It returns a *Failure with CodeValidation so rejected claims surface
// the field problem verbatim and cause zero writes.
func (c *Claim) Validate() error {
	if c.TripID == 0 {
		return failValidation("trip_id is required")
	}
	if c.CabinID == 0 {
		return failValidation("cabin_id is required")
	}
	if c.TelegramID == 0 {
		return failValidation("telegram_id is required")
	}
	if strings.TrimSpace(c.Handle) == "" {
		return failValidation("telegram_handle is required")
	}
	if strings.TrimSpace(c.FullName) == "" {
		return failValidation("full_name is required")
	}
	if !model.ValidBookingType(c.Type) {
		return failValidation("invalid booking type")
	}
	return nil
}

// occupantEntry is the descriptor text contributed by this claimant: the
// supplied guests info when present, otherwise "handle name".
func (c *Claim) occupantEntry() string {
	if s := strings.TrimSpace(c.GuestsInfo); s != "" {
		return s
	}
	return c.Handle + " " + c.FullName
}

// Override is the privileged variant of a claim.  It bypasses the
// eligibility table entirely but still goes through the same conditional
// commit, so an admin can also lose a race against a concurrent normal
// claim.
//
// Fields:
//  TripID       – trip the cabin belongs to.
//  CabinID      – target cabin.
//  TargetStatus – status to force; any member of the closed set.
//  GuestsInfo   – descriptor to write; ignored for statuses that carry no
//                 occupant.
//  ActorID      – verified Telegram id of the administrator.
type Override struct {
	TripID       uint64
	CabinID      uint64
	TargetStatus model.CabinStatus
	GuestsInfo   string
	ActorID      int64
}

// Validate checks the override's input constraints.
func (o *Override) Validate() error {
	if o.TripID == 0 {
		return failValidation("trip_id is required")
	}
	if o.CabinID == 0 {
		return failValidation("cabin_id is required")
	}
	if !model.ValidStatus(o.TargetStatus) {
		return failValidation("invalid target status")
	}
	return nil
}
