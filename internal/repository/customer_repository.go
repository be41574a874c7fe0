package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/moviekiosk/film-rental/internal/model"
)

// CustomerRepo provides CRUD operations on the customer table.  Email
// uniqueness is enforced by the schema's unique index; writes map the
// resulting duplicate-entry error to ErrDuplicateEmail instead of
// pre-checking, so concurrent inserts of the same email cannot both pass.
type CustomerRepo struct {
    db *sql.DB
}

// NewCustomerRepo returns a new CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// ExistsTx reports whether a customer id exists inside an existing transaction.
func (r *CustomerRepo) ExistsTx(ctx context.Context, tx *sql.Tx, customerID uint64) (bool, error) {
    var one int
    err := tx.QueryRowContext(ctx, `SELECT 1 FROM customer WHERE customer_id = ?`, customerID).Scan(&one)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// LockTx locks a customer row for the remainder of the transaction.  The
// deletion cascade takes this lock first so that "nothing was deleted" maps
// cleanly to ErrCustomerNotFound and two concurrent deletes cannot both
// cascade.  Returns sql.ErrNoRows when the customer does not exist.
func (r *CustomerRepo) LockTx(ctx context.Context, tx *sql.Tx, customerID uint64) error {
    var one int
    return tx.QueryRowContext(ctx, `SELECT 1 FROM customer WHERE customer_id = ? FOR UPDATE`, customerID).Scan(&one)
}

// CreateTx inserts a customer within an existing transaction and returns the
// generated id.  A collision on the email unique index yields ErrDuplicateEmail.
func (r *CustomerRepo) CreateTx(ctx context.Context, tx *sql.Tx, firstName, lastName, email string, addressID uint64) (uint64, error) {
    const q = `INSERT INTO customer (first_name, last_name, email, address_id, active) VALUES (?, ?, ?, ?, 1)`
    res, err := tx.ExecContext(ctx, q, firstName, lastName, normalizeEmail(email), addressID)
    if err != nil {
        if isDuplicateEntry(err) {
            return 0, ErrDuplicateEmail
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// UpdateTx rewrites a customer's name, email and address reference.  The
// caller must have verified existence beforehand; a zero row count here only
// means the values were already identical.
func (r *CustomerRepo) UpdateTx(ctx context.Context, tx *sql.Tx, customerID uint64, firstName, lastName, email string, addressID uint64) error {
    const q = `UPDATE customer SET first_name = ?, last_name = ?, email = ?, address_id = ? WHERE customer_id = ?`
    _, err := tx.ExecContext(ctx, q, firstName, lastName, normalizeEmail(email), addressID, customerID)
    if err != nil && isDuplicateEntry(err) {
        return ErrDuplicateEmail
    }
    return err
}

// DeleteTx removes the customer row itself.  Payments and rentals must be
// gone already or the foreign keys reject the delete.
func (r *CustomerRepo) DeleteTx(ctx context.Context, tx *sql.Tx, customerID uint64) (int64, error) {
    res, err := tx.ExecContext(ctx, `DELETE FROM customer WHERE customer_id = ?`, customerID)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// GetByID returns a single customer or ErrCustomerNotFound.
func (r *CustomerRepo) GetByID(ctx context.Context, customerID uint64) (*model.Customer, error) {
    const q = `SELECT customer_id, first_name, last_name, email, address_id, active, create_date
               FROM customer WHERE customer_id = ?`
    var c model.Customer
    err := r.db.QueryRowContext(ctx, q, customerID).Scan(
        &c.ID, &c.FirstName, &c.LastName, &c.Email, &c.AddressID, &c.Active, &c.CreatedAt,
    )
    if err == sql.ErrNoRows {
        return nil, ErrCustomerNotFound
    }
    if err != nil {
        return nil, err
    }
    return &c, nil
}

// List returns customers ordered by id.  Used by the read-only directory
// listing; limit is capped to keep the endpoint cheap.
func (r *CustomerRepo) List(ctx context.Context, limit int) ([]model.Customer, error) {
    if limit <= 0 || limit > 500 {
        limit = 100
    }
    const q = `SELECT customer_id, first_name, last_name, email, address_id, active, create_date
               FROM customer ORDER BY customer_id LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    customers := make([]model.Customer, 0)
    for rows.Next() {
        var c model.Customer
        if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.AddressID, &c.Active, &c.CreatedAt); err != nil {
            return nil, err
        }
        customers = append(customers, c)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return customers, nil
}

func normalizeEmail(email string) string {
    return strings.ToLower(strings.TrimSpace(email))
}
