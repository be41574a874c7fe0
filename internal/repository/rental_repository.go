package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/moviekiosk/film-rental/internal/model"
)

// RentalRepo is the ledger of rentals: rows are appended when a copy goes
// out, closed once when it comes back, and otherwise never mutated.  All
// timestamp fields are stored in UTC.
type RentalRepo struct {
    db *sql.DB
}

// NewRentalRepo returns a new RentalRepo bound to the given database.
func NewRentalRepo(db *sql.DB) *RentalRepo { return &RentalRepo{db: db} }

// CreateTx appends a new open rental within the scope of an existing
// transaction and returns the generated rental id.  The caller must have
// locked the inventory unit in the same transaction so that no second open
// rental can reference it.
func (r *RentalRepo) CreateTx(ctx context.Context, tx *sql.Tx, inventoryID, customerID uint64, rentedAt time.Time) (uint64, error) {
    const q = `INSERT INTO rental (inventory_id, customer_id, rental_date) VALUES (?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, inventoryID, customerID, rentedAt.UTC())
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// OldestOpenForFilmTx locks and returns the id of the oldest open rental the
// customer holds for the given film.  Ordering is rental_date ascending with
// rental_id as the tie-break for equal timestamps, so returns drain FIFO and
// deterministically.  The IN subquery keeps the FOR UPDATE lock on rental
// rows only.  Returns sql.ErrNoRows when the customer has no open rental
// for that film.
func (r *RentalRepo) OldestOpenForFilmTx(ctx context.Context, tx *sql.Tx, customerID, filmID uint64) (uint64, error) {
    const q = `SELECT r.rental_id
               FROM rental r
               WHERE r.customer_id = ?
                 AND r.return_date IS NULL
                 AND r.inventory_id IN (SELECT inventory_id FROM inventory WHERE film_id = ?)
               ORDER BY r.rental_date ASC, r.rental_id ASC
               LIMIT 1
               FOR UPDATE`
    var id uint64
    if err := tx.QueryRowContext(ctx, q, customerID, filmID).Scan(&id); err != nil {
        return 0, err
    }
    return id, nil
}

// CloseTx sets return_date on an open rental.  The return_date IS NULL guard
// makes the write conditional: even if the row lock were ever bypassed, a
// rental can not be closed twice.  Returns false when the rental was already
// closed.
func (r *RentalRepo) CloseTx(ctx context.Context, tx *sql.Tx, rentalID uint64, returnedAt time.Time) (bool, error) {
    const q = `UPDATE rental SET return_date = ? WHERE rental_id = ? AND return_date IS NULL`
    res, err := tx.ExecContext(ctx, q, returnedAt.UTC(), rentalID)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n == 1, nil
}

// OpenByCustomerTx lists the customer's open rentals, oldest first with
// rental_id as the tie-break, so the listing shows them in the order a
// return would close them.
func (r *RentalRepo) OpenByCustomerTx(ctx context.Context, tx *sql.Tx, customerID uint64) ([]model.Rental, error) {
    const q = `SELECT rental_id, inventory_id, customer_id, rental_date
               FROM rental
               WHERE customer_id = ? AND return_date IS NULL
               ORDER BY rental_date ASC, rental_id ASC`
    rows, err := tx.QueryContext(ctx, q, customerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    rentals := make([]model.Rental, 0)
    for rows.Next() {
        var re model.Rental
        if err := rows.Scan(&re.ID, &re.InventoryID, &re.CustomerID, &re.RentalDate); err != nil {
            return nil, err
        }
        rentals = append(rentals, re)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return rentals, nil
}

// DeleteByCustomerTx removes all rental rows for a customer.  Used only by
// the customer deletion cascade; the rows go away together with the payments
// that reference them, inside one transaction.
func (r *RentalRepo) DeleteByCustomerTx(ctx context.Context, tx *sql.Tx, customerID uint64) (int64, error) {
    res, err := tx.ExecContext(ctx, `DELETE FROM rental WHERE customer_id = ?`, customerID)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
