package model

import "time"

// Trip groups the cabins of one yacht departure.  Trips are provisioned by
// an out-of-scope admin process; this service only reads them for the
// browse endpoints.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – trip title shown in the mini-app.
//  YachtName – name of the yacht sailing this trip.
//  StartsOn  – departure date.
//  EndsOn    – return date.
type Trip struct {
	ID        uint64    `json:"id"`         // trips.id
	Name      string    `json:"name"`       // trips.name
	YachtName string    `json:"yacht_name"` // trips.yacht_name
	StartsOn  time.Time `json:"starts_on"`  // trips.starts_on
	EndsOn    time.Time `json:"ends_on"`    // trips.ends_on
	CreatedAt time.Time `json:"created_at"` // trips.created_at
}
