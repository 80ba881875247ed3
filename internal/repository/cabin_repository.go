package repository // repository for cabin persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/evgenyq/kitesafari-booking/internal/model"
)

// CabinRepo encapsulates database operations for cabins.  The status,
// guests and version columns are only ever written through
// ConditionalUpdate so that every mutation goes through the same
// compare-and-swap gate, no matter whether it originates from a normal
// claim or an admin override.
type CabinRepo struct {
	db *sql.DB
}

// NewCabinRepo returns a new CabinRepo bound to the given database.
func NewCabinRepo(db *sql.DB) *CabinRepo { return &CabinRepo{db: db} }

const cabinColumns = `id, trip_id, cabin_number, deck, bed_type, price_cents,
		max_guests, status, guests, version, created_at, updated_at`

func scanCabin(row interface{ Scan(dest ...any) error }) (*model.Cabin, error) {
	var c model.Cabin
	var guests sql.NullString
	if err := row.Scan(
		&c.ID, &c.TripID, &c.CabinNumber, &c.Deck, &c.BedType, &c.PriceCents,
		&c.MaxGuests, &c.Status, &guests, &c.Version, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if guests.Valid {
		c.Guests = guests.String
	}
	return &c, nil
}

// GetByID returns the cabin with the given id, including its current
// status and version.  The returned version is the value a caller must
// pass to ConditionalUpdate to commit a state transition computed from
// this read.  Returns ErrCabinNotFound when no such cabin exists.
func (r *CabinRepo) GetByID(ctx context.Context, id uint64) (*model.Cabin, error) {
	const q = `SELECT ` + cabinColumns + ` FROM cabins WHERE id = ?`
	c, err := scanCabin(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCabinNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListByTrip returns all cabins of a trip ordered by deck and cabin
// number, the order the deck plan renders them in.  When the trip has no
// cabins an empty slice is returned.
func (r *CabinRepo) ListByTrip(ctx context.Context, tripID uint64) ([]model.Cabin, error) {
	const q = `SELECT ` + cabinColumns + ` FROM cabins
			   WHERE trip_id = ?
			   ORDER BY deck, cabin_number`
	rows, err := r.db.QueryContext(ctx, q, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cabins := make([]model.Cabin, 0)
	for rows.Next() {
		c, err := scanCabin(rows)
		if err != nil {
			return nil, err
		}
		cabins = append(cabins, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cabins, nil
}

// ConditionalUpdate writes a new status and guest descriptor to a cabin
// row only if the stored version still equals expectedVersion, and bumps
// the version in the same statement.  It returns (true, nil) when the row
// was updated and (false, nil) when the version no longer matched, which
// means another commit landed between the caller's read and this write.
// No distinction is made between a missing row and a stale version; the
// caller has already read the row, so a zero-row update means it lost the
// race.
func (r *CabinRepo) ConditionalUpdate(ctx context.Context, id, expectedVersion uint64, status model.CabinStatus, guests string) (bool, error) {
	const q = `UPDATE cabins
			   SET status = ?, guests = ?, version = version + 1, updated_at = UTC_TIMESTAMP()
			   WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, q, status, guests, id, expectedVersion)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
