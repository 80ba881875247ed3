package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/evgenyq/kitesafari-booking/internal/model"
)

// TripRepo provides read access to trips.  Trips are provisioned
// externally; this service never writes them.
type TripRepo struct {
	db *sql.DB
}

// NewTripRepo returns a new TripRepo bound to the given database.
func NewTripRepo(db *sql.DB) *TripRepo { return &TripRepo{db: db} }

// List returns all trips ordered by departure date ascending.
func (r *TripRepo) List(ctx context.Context) ([]model.Trip, error) {
	const q = `SELECT id, name, yacht_name, starts_on, ends_on, created_at
			   FROM trips
			   ORDER BY starts_on`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	trips := make([]model.Trip, 0)
	for rows.Next() {
		var t model.Trip
		if err := rows.Scan(&t.ID, &t.Name, &t.YachtName, &t.StartsOn, &t.EndsOn, &t.CreatedAt); err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trips, nil
}

// GetByID returns a single trip.  Returns ErrTripNotFound when no trip
// with the given id exists.
func (r *TripRepo) GetByID(ctx context.Context, id uint64) (*model.Trip, error) {
	const q = `SELECT id, name, yacht_name, starts_on, ends_on, created_at
			   FROM trips WHERE id = ?`
	var t model.Trip
	err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &t.YachtName, &t.StartsOn, &t.EndsOn, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return &t, nil
}
