package model

import "time"

// Staff mirrors the `staff` table.  Staff accounts perform rentals and
// returns at the counter; they are provisioned out-of-band and only log in
// through the API.
type Staff struct {
    ID           uint64    // staff.staff_id
    FirstName    string    // staff.first_name
    LastName     string    // staff.last_name
    Email        string    // staff.email (unique)
    PasswordHash string    // staff.password_hash (bcrypt)
    Active       bool      // staff.active
    CreatedAt    time.Time // staff.created_at
}
