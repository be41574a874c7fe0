package repository

import (
    "context"
    "database/sql"
)

// PaymentRepo touches the payment table only for the customer deletion
// cascade; billing itself is handled by a separate system.
type PaymentRepo struct{ db *sql.DB }

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// DeleteByCustomerTx removes all payment rows for a customer.  Must run
// before the rental delete because payments reference rental rows.
func (r *PaymentRepo) DeleteByCustomerTx(ctx context.Context, tx *sql.Tx, customerID uint64) (int64, error) {
    res, err := tx.ExecContext(ctx, `DELETE FROM payment WHERE customer_id = ?`, customerID)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
