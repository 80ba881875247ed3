package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/evgenyq/kitesafari-booking/internal/model"
)

// UserRepo provides access to the users table.  Users are created
// lazily when a verified claimant books for the first time, mirroring
// how the mini-app never has an explicit registration step.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// GetOrCreateByTelegramID returns the id of the user with the given
// Telegram account id, inserting a new row when none exists.  The handle
// is stored without its leading '@' and the full name is split into first
// and last name on the first space.  A concurrent insert of the same
// Telegram id is resolved by re-reading after a duplicate-key error, so
// two simultaneous first bookings from one account both succeed.
func (r *UserRepo) GetOrCreateByTelegramID(ctx context.Context, telegramID int64, handle, fullName string) (uint64, error) {
	id, err := r.lookup(ctx, telegramID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	username := strings.TrimPrefix(handle, "@")
	first, last := splitName(fullName)
	const ins = `INSERT INTO users (telegram_id, username, first_name, last_name) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, ins, telegramID, username, first, last)
	if err != nil {
		// Lost a race against another first booking from the same account.
		if id, lerr := r.lookup(ctx, telegramID); lerr == nil {
			return id, nil
		}
		return 0, err
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(newID), nil
}

// FindByTelegramID returns the users-table id for a Telegram account, or
// 0 when the account has never booked.  Unlike GetOrCreateByTelegramID it
// never writes, so read-only endpoints can use it safely.
func (r *UserRepo) FindByTelegramID(ctx context.Context, telegramID int64) (uint64, error) {
	id, err := r.lookup(ctx, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return id, err
}

// GetByTelegramID returns the full user row for a Telegram account, or
// nil when the account has never booked.
func (r *UserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	const q = `SELECT id, telegram_id, username, first_name, last_name, created_at
	           FROM users WHERE telegram_id = ?`
	var u model.User
	err := r.db.QueryRowContext(ctx, q, telegramID).Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) lookup(ctx context.Context, telegramID int64) (uint64, error) {
	var id uint64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM users WHERE telegram_id = ?`, telegramID).Scan(&id)
	return id, err
}

func splitName(fullName string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(fullName))
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
