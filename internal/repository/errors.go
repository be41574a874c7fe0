// Package repository defines the data access layer over the shared MySQL
// store and the sentinel error values reused across repositories. These
// sentinel values let the service and handler layers distinguish failure
// scenarios with errors.Is instead of inspecting driver errors: a missing
// film is a different user-visible outcome than a film with every copy out.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrFilmNotFound is returned when a film id does not exist in the catalog.
var ErrFilmNotFound = errors.New("film not found")

// ErrCustomerNotFound is returned when a customer id does not exist.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrNoAvailableCopy is returned when every inventory unit of the requested
// film has an open rental. A rent call that loses the race for the last free
// copy surfaces this same error; callers may retry.
var ErrNoAvailableCopy = errors.New("no available copy")

// ErrNoOpenRental is returned when a return finds no open rental for the
// (customer, film) pair.
var ErrNoOpenRental = errors.New("no open rental")

// ErrDuplicateEmail is returned when a customer insert or update collides
// with the unique index on customer.email.  It is the only duplicate-key
// conflict that reaches callers; the location upserts absorb theirs through
// ON DUPLICATE KEY UPDATE.
var ErrDuplicateEmail = errors.New("email already in use")

// isDuplicateEntry reports whether err is the MySQL duplicate-entry error
// (errno 1062) raised by a unique index violation. The schema, not the
// application, is the authority on natural-key uniqueness.
func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
