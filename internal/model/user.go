package model

import "time"

// User is a Telegram account that has interacted with the booking flow.
// Users are created lazily the first time a verified claimant books a
// cabin; there is no registration step.
//
// Fields:
//  ID         – primary key identifier.
//  TelegramID – stable Telegram account id.
//  Username   – Telegram handle without the leading '@'.
//  FirstName  – first word of the submitted full name.
//  LastName   – remainder of the submitted full name.
type User struct {
	ID         uint64    `json:"id"`          // users.id
	TelegramID int64     `json:"telegram_id"` // users.telegram_id
	Username   string    `json:"username"`    // users.username
	FirstName  string    `json:"first_name"`  // users.first_name
	LastName   string    `json:"last_name"`   // users.last_name
	CreatedAt  time.Time `json:"created_at"`  // users.created_at
}
