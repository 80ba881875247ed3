package model

import "time"

// BookingType enumerates how a guest claims a cabin.  The values are part
// of the API contract with the mini-app and of the bookings.booking_type
// column.
type BookingType string

const (
	BookingFullSingle BookingType = "full_single" // whole cabin, one guest
	BookingFullDouble BookingType = "full_double" // whole cabin, two guests
	BookingHalf       BookingType = "half"        // one berth, cabin stays joinable
	BookingJoin       BookingType = "join"        // second berth of a half-booked cabin
)

// ValidBookingType reports whether t is one of the four normal claim types.
// The administrative override path does not carry a booking type from the
// client; it records BookingFullDouble on the ledger by convention.
func ValidBookingType(t BookingType) bool {
	switch t {
	case BookingFullSingle, BookingFullDouble, BookingHalf, BookingJoin:
		return true
	}
	return false
}

// Booking source values recorded in bookings.booking_source.
const (
	SourceMiniApp = "miniapp" // created by a guest through the mini-app
	SourceAdmin   = "admin"   // created through the admin override path
)

// Booking status values recorded in bookings.booking_status.  Only the
// active flag matters to the allocator; the rest of the payment lifecycle
// is handled by external flows.
const (
	BookingActive    = "active"
	BookingCancelled = "cancelled"
)

// Payment status values recorded in bookings.payment_status.  Payment
// tracking itself is out of scope for this service; new bookings always
// start out pending with nothing paid.
const (
	PaymentPending = "pending"
)

// Booking is one immutable ledger entry describing an accepted claim on a
// cabin.  Cabin attributes are denormalized onto the row at booking time so
// the ledger stays meaningful even if the cabin is later repriced or moved.
//
// Fields:
//  ID               – primary key identifier.
//  TripID           – trip the booking belongs to.
//  CabinID          – cabin that was claimed.
//  UserID           – booking user; nil for administrative entries.
//  GuestHandle      – claimant's messenger handle ("admin" for overrides).
//  GuestName        – claimant's display name.
//  CabinNumber      – cabin number at booking time.
//  CabinDeck        – deck at booking time.
//  CabinBedType     – bed configuration at booking time.
//  CabinPriceCents  – full cabin price at booking time.
//  Type             – claim type, see BookingType.
//  PayerNote        – free-text payer details supplied by the claimant.
//  TotalAmountCents – amount charged for this claim.
//  PaidAmountCents  – amount received so far (maintained externally).
//  PaymentStatus    – payment lifecycle state (maintained externally).
//  PaymentDeadline  – latest date payment is expected; nil for overrides.
//  Status           – active/cancelled flag; only active entries count.
//  GuestsInfo       – occupant descriptor as submitted with the claim.
//  Source           – "miniapp" or "admin".
//  AdminBookedBy    – telegram id of the admin actor for override entries.
type Booking struct {
	ID               uint64      `json:"id"`
	TripID           uint64      `json:"trip_id"`
	CabinID          uint64      `json:"cabin_id"`
	UserID           *uint64     `json:"user_id,omitempty"`
	GuestHandle      string      `json:"guest_handle"`
	GuestName        string      `json:"guest_name"`
	CabinNumber      uint32      `json:"cabin_number"`
	CabinDeck        string      `json:"cabin_deck"`
	CabinBedType     string      `json:"cabin_bed_type"`
	CabinPriceCents  uint32      `json:"cabin_price_cents"`
	Type             BookingType `json:"booking_type"`
	PayerNote        string      `json:"payer_note,omitempty"`
	TotalAmountCents uint32      `json:"total_amount_cents"`
	PaidAmountCents  uint32      `json:"paid_amount_cents"`
	PaymentStatus    string      `json:"payment_status"`
	PaymentDeadline  *time.Time  `json:"payment_deadline,omitempty"`
	Status           string      `json:"booking_status"`
	GuestsInfo       string      `json:"guests_info,omitempty"`
	Source           string      `json:"booking_source"`
	AdminBookedBy    *int64      `json:"admin_booked_by,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}
