package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/evgenyq/kitesafari-booking/internal/model"
)

// BookingRepo provides access to the bookings ledger.  The ledger is
// append-only: entries are inserted when a claim commits and are never
// mutated afterwards, except for the active/cancelled flag flipped by
// payment flows that live outside this service.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Insert appends one booking entry and populates the generated ID and
// timestamps on the provided record.
func (r *BookingRepo) Insert(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
		(trip_id, cabin_id, user_id, guest_handle, guest_name,
		 cabin_number, cabin_deck, cabin_bed_type, cabin_price_cents,
		 booking_type, payer_note, total_amount_cents, paid_amount_cents,
		 payment_status, payment_deadline, booking_status, guests_info,
		 booking_source, admin_booked_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var deadline interface{}
	if b.PaymentDeadline != nil {
		deadline = b.PaymentDeadline.UTC().Format("2006-01-02 15:04:05")
	}
	res, err := r.db.ExecContext(ctx, q,
		b.TripID, b.CabinID, b.UserID, b.GuestHandle, b.GuestName,
		b.CabinNumber, b.CabinDeck, b.CabinBedType, b.CabinPriceCents,
		b.Type, b.PayerNote, b.TotalAmountCents, b.PaidAmountCents,
		b.PaymentStatus, deadline, b.Status, b.GuestsInfo,
		b.Source, b.AdminBookedBy,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

// ListByUser returns all bookings created by the given user, newest
// first.  Cabin attributes come from the denormalized ledger columns, so
// this needs no joins.  When the user has no bookings an empty slice is
// returned.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	const q = `SELECT id, trip_id, cabin_id, user_id, guest_handle, guest_name,
					  cabin_number, cabin_deck, cabin_bed_type, cabin_price_cents,
					  booking_type, payer_note, total_amount_cents, paid_amount_cents,
					  payment_status, payment_deadline, booking_status, guests_info,
					  booking_source, admin_booked_by, created_at, updated_at
			   FROM bookings
			   WHERE user_id = ?
			   ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		var userID sql.NullInt64
		var payerNote, guestsInfo sql.NullString
		var deadline sql.NullTime
		var adminBy sql.NullInt64
		if err := rows.Scan(
			&b.ID, &b.TripID, &b.CabinID, &userID, &b.GuestHandle, &b.GuestName,
			&b.CabinNumber, &b.CabinDeck, &b.CabinBedType, &b.CabinPriceCents,
			&b.Type, &payerNote, &b.TotalAmountCents, &b.PaidAmountCents,
			&b.PaymentStatus, &deadline, &b.Status, &guestsInfo,
			&b.Source, &adminBy, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if userID.Valid {
			uid := uint64(userID.Int64)
			b.UserID = &uid
		}
		if payerNote.Valid {
			b.PayerNote = payerNote.String
		}
		if guestsInfo.Valid {
			b.GuestsInfo = guestsInfo.String
		}
		if deadline.Valid {
			d := deadline.Time.UTC()
			b.PaymentDeadline = &d
		}
		if adminBy.Valid {
			a := adminBy.Int64
			b.AdminBookedBy = &a
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}
