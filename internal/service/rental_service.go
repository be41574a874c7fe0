// Package service contains the business operations of the rental store.
// Each operation opens one transaction against the shared MySQL store,
// performs its reads and writes inside it, and commits or rolls back as a
// unit; there is no partial commit on any exit path.
package service

import (
    "context"
    "database/sql"
    "time"

    "github.com/moviekiosk/film-rental/internal/model"
    "github.com/moviekiosk/film-rental/internal/repository"
)

// RentalService owns the rental lifecycle: allocating a free copy to a
// customer, answering availability queries, and reconciling returns.  All
// coordination between concurrent requests happens through row locks in the
// store, never through in-process state, so multiple processes sharing the
// database stay correct.
type RentalService struct {
    db        *sql.DB
    films     *repository.FilmRepo
    inventory *repository.InventoryRepo
    rentals   *repository.RentalRepo
    customers *repository.CustomerRepo
    now       func() time.Time
}

// NewRentalService constructs a RentalService.  All dependencies must be non-nil.
func NewRentalService(db *sql.DB, films *repository.FilmRepo, inventory *repository.InventoryRepo, rentals *repository.RentalRepo, customers *repository.CustomerRepo) *RentalService {
    if db == nil || films == nil || inventory == nil || rentals == nil || customers == nil {
        panic("nil dependency passed to NewRentalService")
    }
    return &RentalService{
        db:        db,
        films:     films,
        inventory: inventory,
        rentals:   rentals,
        customers: customers,
        now:       func() time.Time { return time.Now().UTC() },
    }
}

// RentResult reports a successful allocation.
type RentResult struct {
    RentalID uint64    `json:"rental_id"`
    UnitID   uint64    `json:"unit_id"`
    RentedAt time.Time `json:"rented_at"`
}

// ReturnResult reports a successful return.
type ReturnResult struct {
    RentalID   uint64    `json:"rental_id"`
    ReturnedAt time.Time `json:"return_time"`
}

// Rent hands one free copy of the film to the customer.  The free-copy read
// and the rental insert share a transaction, and the read locks the chosen
// inventory row, so two calls racing for the last copy serialize: exactly
// one commits, the other re-evaluates and gets ErrNoAvailableCopy.  Nothing
// prevents a customer from holding several open rentals of the same film.
func (s *RentalService) Rent(ctx context.Context, customerID, filmID uint64) (*RentResult, error) {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if ok, err := s.films.ExistsTx(ctx, tx, filmID); err != nil {
        return nil, err
    } else if !ok {
        return nil, repository.ErrFilmNotFound
    }
    if ok, err := s.customers.ExistsTx(ctx, tx, customerID); err != nil {
        return nil, err
    } else if !ok {
        return nil, repository.ErrCustomerNotFound
    }

    unitID, err := s.inventory.SelectFreeUnitTx(ctx, tx, filmID)
    if err == sql.ErrNoRows {
        return nil, repository.ErrNoAvailableCopy
    }
    if err != nil {
        return nil, err
    }

    rentedAt := s.now()
    rentalID, err := s.rentals.CreateTx(ctx, tx, unitID, customerID, rentedAt)
    if err != nil {
        return nil, err
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return &RentResult{RentalID: rentalID, UnitID: unitID, RentedAt: rentedAt}, nil
}

// Return closes the oldest open rental the customer holds for the film
// (FIFO by rental_date).  Selection and closing share a transaction and the
// selected row is locked, so a rental is never closed twice and concurrent
// returns of two same-film rentals drain them oldest-first.
func (s *RentalService) Return(ctx context.Context, customerID, filmID uint64) (*ReturnResult, error) {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    rentalID, err := s.rentals.OldestOpenForFilmTx(ctx, tx, customerID, filmID)
    if err == sql.ErrNoRows {
        return nil, repository.ErrNoOpenRental
    }
    if err != nil {
        return nil, err
    }

    returnedAt := s.now()
    closed, err := s.rentals.CloseTx(ctx, tx, rentalID, returnedAt)
    if err != nil {
        return nil, err
    }
    if !closed {
        // The row lock should make this unreachable; treat it as a lost
        // race rather than silently succeeding against the wrong rental.
        return nil, repository.ErrNoOpenRental
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return &ReturnResult{RentalID: rentalID, ReturnedAt: returnedAt}, nil
}

// OpenRentals lists the customer's open rentals, oldest first.  The desk
// uses it to see what a customer still has out before taking a return.
func (s *RentalService) OpenRentals(ctx context.Context, customerID uint64) ([]model.Rental, error) {
    tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if ok, err := s.customers.ExistsTx(ctx, tx, customerID); err != nil {
        return nil, err
    } else if !ok {
        return nil, repository.ErrCustomerNotFound
    }
    rentals, err := s.rentals.OpenByCustomerTx(ctx, tx, customerID)
    if err != nil {
        return nil, err
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return rentals, nil
}

// Availability returns the number of free copies of the film.  It runs in
// the same transactional substrate as Rent and uses the same definition of
// "open rental", so the count is a consistent snapshot: it can only be
// contradicted by an allocation that validly happened afterwards.
func (s *RentalService) Availability(ctx context.Context, filmID uint64) (int, error) {
    tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
    if err != nil {
        return 0, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if ok, err := s.films.ExistsTx(ctx, tx, filmID); err != nil {
        return 0, err
    } else if !ok {
        return 0, repository.ErrFilmNotFound
    }
    n, err := s.inventory.CountFreeUnitsTx(ctx, tx, filmID)
    if err != nil {
        return 0, err
    }

    if err := tx.Commit(); err != nil {
        return 0, err
    }
    committed = true
    return n, nil
}
