package model

import "time"

// CabinStatus enumerates the closed set of occupancy states a cabin can be
// in.  The string values match what is stored in the cabins.status column
// and what clients receive over the wire, so they must never be renamed.
type CabinStatus string

const (
	StatusAvailable     CabinStatus = "Available"      // both berths free, bookable
	StatusHalfAvailable CabinStatus = "Half Available" // one berth taken, joinable
	StatusBooked        CabinStatus = "Booked"         // fully booked, awaiting payment
	StatusPaid          CabinStatus = "Paid"           // fully booked and paid
	StatusUnavailable   CabinStatus = "Unavailable"    // blocked by the organizers
	StatusStaff         CabinStatus = "STAFF"          // reserved for crew, never sold
)

// ValidStatus reports whether s is a member of the closed status set.  Any
// status arriving from a client (the admin override path accepts an explicit
// target status) must pass this check before it reaches the database.
func ValidStatus(s CabinStatus) bool {
	switch s {
	case StatusAvailable, StatusHalfAvailable, StatusBooked,
		StatusPaid, StatusUnavailable, StatusStaff:
		return true
	}
	return false
}

// HasOccupant reports whether a status implies that somebody occupies the
// cabin.  Available and STAFF cabins carry no guest descriptor and no
// booking record; every other status does.
func (s CabinStatus) HasOccupant() bool {
	return s != StatusAvailable && s != StatusStaff
}

// Cabin is a bookable sleeping unit aboard a yacht for a specific trip.
// The status and guests columns are mutated exclusively through the
// allocator's conditional-commit path; version is incremented on every
// successful commit and is the compare-and-swap marker that arbitrates
// concurrent booking attempts.
//
// Fields:
//  ID          – primary key identifier.
//  TripID      – trip this cabin belongs to.
//  CabinNumber – human-facing cabin number on the deck plan.
//  Deck        – deck name ("upper", "main", "lower").
//  BedType     – bed configuration ("double", "twin", "bunk").
//  PriceCents  – full cabin price in cents.
//  MaxGuests   – maximum occupancy (1 or 2 on current yachts).
//  Status      – current occupancy state, see CabinStatus.
//  Guests      – free-text occupant descriptor; empty unless Status implies
//                an occupant.
//  Version     – monotonically increasing commit counter.
type Cabin struct {
	ID          uint64      `json:"id"`           // cabins.id
	TripID      uint64      `json:"trip_id"`      // cabins.trip_id
	CabinNumber uint32      `json:"cabin_number"` // cabins.cabin_number
	Deck        string      `json:"deck"`         // cabins.deck
	BedType     string      `json:"bed_type"`     // cabins.bed_type
	PriceCents  uint32      `json:"price_cents"`  // cabins.price_cents
	MaxGuests   uint32      `json:"max_guests"`   // cabins.max_guests
	Status      CabinStatus `json:"status"`       // cabins.status
	Guests      string      `json:"guests"`       // cabins.guests
	Version     uint64      `json:"version"`      // cabins.version
	CreatedAt   time.Time   `json:"created_at"`   // cabins.created_at
	UpdatedAt   time.Time   `json:"updated_at"`   // cabins.updated_at
}
