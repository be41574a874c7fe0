package repository

import (
    "context"
    "database/sql"
)

// InventoryRepo provides access to the physical copies of films.  A copy's
// occupancy is derived: it is rented exactly when an open rental row (one
// with return_date IS NULL) references it.  There is no status column to
// keep in sync, so every query here phrases availability as the absence of
// such a row.
type InventoryRepo struct {
    db *sql.DB
}

// NewInventoryRepo returns a new InventoryRepo bound to the given database.
func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// SelectFreeUnitTx picks the free copy of a film with the lowest inventory
// id and locks it until the surrounding transaction ends.  The locking read
// is what serializes two rent calls racing for the last copy: the loser
// blocks on the row lock, re-evaluates the predicate once the winner
// commits, and then either finds another free unit or nothing at all.
// Returns sql.ErrNoRows when no copy of the film is currently free.
//
// The lowest-id tie-break is a contract, not an accident: it keeps
// allocation reproducible and testable.
func (r *InventoryRepo) SelectFreeUnitTx(ctx context.Context, tx *sql.Tx, filmID uint64) (uint64, error) {
    // NOT EXISTS instead of a JOIN keeps the locking read on the inventory
    // table alone; MySQL locks only the selected inventory row.
    const q = `SELECT i.inventory_id
               FROM inventory i
               WHERE i.film_id = ?
                 AND NOT EXISTS (
                     SELECT 1 FROM rental r
                     WHERE r.inventory_id = i.inventory_id
                       AND r.return_date IS NULL
                 )
               ORDER BY i.inventory_id
               LIMIT 1
               FOR UPDATE`
    var unitID uint64
    if err := tx.QueryRowContext(ctx, q, filmID).Scan(&unitID); err != nil {
        return 0, err
    }
    return unitID, nil
}

// CountFreeUnitsTx returns how many copies of a film have no open rental.
// It runs inside the caller's transaction so the count and any allocation
// decision based on it share one consistent snapshot.
func (r *InventoryRepo) CountFreeUnitsTx(ctx context.Context, tx *sql.Tx, filmID uint64) (int, error) {
    const q = `SELECT COUNT(*)
               FROM inventory i
               WHERE i.film_id = ?
                 AND NOT EXISTS (
                     SELECT 1 FROM rental r
                     WHERE r.inventory_id = i.inventory_id
                       AND r.return_date IS NULL
                 )`
    var n int
    if err := tx.QueryRowContext(ctx, q, filmID).Scan(&n); err != nil {
        return 0, err
    }
    return n, nil
}
