package queue

// BookingConfirmedEvent is published when a cabin claim commits
// successfully.  It contains enough information for downstream consumers
// (the Telegram bot, audit logging, analytics) to act without querying
// the primary database.
type BookingConfirmedEvent struct {
	BookingID        uint64 `json:"booking_id"`
	TripID           uint64 `json:"trip_id"`
	CabinID          uint64 `json:"cabin_id"`
	CabinNumber      uint32 `json:"cabin_number"`
	Deck             string `json:"deck"`
	GuestHandle      string `json:"guest_handle"`
	GuestName        string `json:"guest_name"`
	BookingType      string `json:"booking_type"`
	NewStatus        string `json:"new_status"`
	TotalAmountCents uint32 `json:"total_amount_cents"`
	ConfirmedAt      string `json:"confirmed_at"`
}
