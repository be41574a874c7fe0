package service

import (
    "context"
    "database/sql"
    "fmt"
    "strings"

    "github.com/moviekiosk/film-rental/internal/repository"
)

// ValidationError names the first required field found missing on a customer
// create or update.  It is recoverable: the caller fixes the field and
// resubmits.
type ValidationError struct {
    Field string
}

func (e *ValidationError) Error() string {
    return fmt.Sprintf("field %s is required", e.Field)
}

// CustomerInput carries the customer contact and address fields of a create
// or update request.
type CustomerInput struct {
    FirstName  string `json:"first_name"`
    LastName   string `json:"last_name"`
    Email      string `json:"email"`
    Phone      string `json:"phone"`
    Address    string `json:"address"`
    Address2   string `json:"address2"`
    District   string `json:"district"`
    City       string `json:"city"`
    Country    string `json:"country"`
    PostalCode string `json:"postal_code"`
}

// CustomerService is the customer directory: it validates input, resolves
// the deduplicated location hierarchy, and owns the deletion cascade.  Like
// the rental operations, each call is one transaction.
type CustomerService struct {
    db        *sql.DB
    locations *repository.LocationRepo
    customers *repository.CustomerRepo
    payments  *repository.PaymentRepo
    rentals   *repository.RentalRepo
}

// NewCustomerService constructs a CustomerService.  All dependencies must be non-nil.
func NewCustomerService(db *sql.DB, locations *repository.LocationRepo, customers *repository.CustomerRepo, payments *repository.PaymentRepo, rentals *repository.RentalRepo) *CustomerService {
    if db == nil || locations == nil || customers == nil || payments == nil || rentals == nil {
        panic("nil dependency passed to NewCustomerService")
    }
    return &CustomerService{db: db, locations: locations, customers: customers, payments: payments, rentals: rentals}
}

// requiredFields lists the fields that must be non-empty, in the order they
// are reported.  address2 and postal_code are optional.
func validate(in CustomerInput) error {
    checks := []struct {
        name  string
        value string
    }{
        {"first_name", in.FirstName},
        {"last_name", in.LastName},
        {"email", in.Email},
        {"phone", in.Phone},
        {"address", in.Address},
        {"district", in.District},
        {"city", in.City},
        {"country", in.Country},
    }
    for _, c := range checks {
        if strings.TrimSpace(c.value) == "" {
            return &ValidationError{Field: c.name}
        }
    }
    return nil
}

func locationInput(in CustomerInput) repository.LocationInput {
    return repository.LocationInput{
        Country:    strings.TrimSpace(in.Country),
        City:       strings.TrimSpace(in.City),
        Address:    strings.TrimSpace(in.Address),
        Address2:   strings.TrimSpace(in.Address2),
        District:   strings.TrimSpace(in.District),
        PostalCode: strings.TrimSpace(in.PostalCode),
        Phone:      strings.TrimSpace(in.Phone),
    }
}

// Add validates the input, resolves country → city → address idempotently,
// and creates the customer row referencing the resolved address.  No write
// happens when validation fails; a duplicate email fails the whole
// transaction with ErrDuplicateEmail.
func (s *CustomerService) Add(ctx context.Context, in CustomerInput) (uint64, error) {
    if err := validate(in); err != nil {
        return 0, err
    }
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return 0, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    addressID, err := s.locations.UpsertLocationTx(ctx, tx, locationInput(in))
    if err != nil {
        return 0, err
    }
    customerID, err := s.customers.CreateTx(ctx, tx, strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName), in.Email, addressID)
    if err != nil {
        return 0, err
    }

    if err := tx.Commit(); err != nil {
        return 0, err
    }
    committed = true
    return customerID, nil
}

// Update re-validates, re-resolves the location and rewrites the customer
// row.  The email unique index re-checks uniqueness against other customers
// on the way; ErrCustomerNotFound when the id does not exist.
func (s *CustomerService) Update(ctx context.Context, customerID uint64, in CustomerInput) error {
    if err := validate(in); err != nil {
        return err
    }
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if ok, err := s.customers.ExistsTx(ctx, tx, customerID); err != nil {
        return err
    } else if !ok {
        return repository.ErrCustomerNotFound
    }
    addressID, err := s.locations.UpsertLocationTx(ctx, tx, locationInput(in))
    if err != nil {
        return err
    }
    if err := s.customers.UpdateTx(ctx, tx, customerID, strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName), in.Email, addressID); err != nil {
        return err
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// Delete cascades: payments first (they reference rentals), then rentals,
// then the customer row, all in one transaction.  The initial locking read
// both reserves the row against a concurrent delete and yields
// ErrCustomerNotFound when there is nothing to delete.  The address row is
// left alone; other customers may share it.
func (s *CustomerService) Delete(ctx context.Context, customerID uint64) error {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if err := s.customers.LockTx(ctx, tx, customerID); err == sql.ErrNoRows {
        return repository.ErrCustomerNotFound
    } else if err != nil {
        return err
    }
    if _, err := s.payments.DeleteByCustomerTx(ctx, tx, customerID); err != nil {
        return err
    }
    if _, err := s.rentals.DeleteByCustomerTx(ctx, tx, customerID); err != nil {
        return err
    }
    if _, err := s.customers.DeleteTx(ctx, tx, customerID); err != nil {
        return err
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}
