package repository

import (
	"context"
	"database/sql"
	"errors"
)

// AdminRepo answers admin membership checks against the admin_users
// table.  Rows are managed by the operators directly; the service only
// reads them.  The override path trusts this check completely, so it is
// the single place where administrative privilege is decided.
type AdminRepo struct {
	db *sql.DB
}

// NewAdminRepo returns a new AdminRepo bound to the given database.
func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{db: db} }

// IsAdmin reports whether the given Telegram account id belongs to an
// administrator.  An absent row simply means "not an admin"; only real
// query failures surface as errors.
func (r *AdminRepo) IsAdmin(ctx context.Context, telegramID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM admin_users WHERE telegram_id = ?`, telegramID,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
