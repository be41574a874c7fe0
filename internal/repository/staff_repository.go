package repository

import (
	"context"
	"database/sql"

	"github.com/moviekiosk/film-rental/internal/model"
)

// StaffRepo reads staff accounts for authentication.  Staff rows are
// provisioned out-of-band; the API only verifies credentials.
type StaffRepo struct{ DB *sql.DB }

func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{DB: db} }

// GetByEmail fetches a staff account by normalized email.
func (r *StaffRepo) GetByEmail(ctx context.Context, email string) (model.Staff, error) {
	var s model.Staff
	err := r.DB.QueryRowContext(ctx,
		"SELECT staff_id, first_name, last_name, email, password_hash, active, created_at FROM staff WHERE email=? LIMIT 1",
		normalizeEmail(email)).Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.PasswordHash, &s.Active, &s.CreatedAt)
	return s, err
}

// UpdatePassword replaces a staff account's password hash.
func (r *StaffRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE staff SET password_hash=? WHERE staff_id=?", hash, id)
	return err
}

// GetByID fetches a staff account by id.
func (r *StaffRepo) GetByID(ctx context.Context, id uint64) (model.Staff, error) {
	var s model.Staff
	err := r.DB.QueryRowContext(ctx,
		"SELECT staff_id, first_name, last_name, email, password_hash, active, created_at FROM staff WHERE staff_id=? LIMIT 1",
		id).Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.PasswordHash, &s.Active, &s.CreatedAt)
	return s, err
}
