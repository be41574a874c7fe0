package service

import (
    "context"
    "database/sql"
    "regexp"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/moviekiosk/film-rental/internal/repository"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newRentalService(t *testing.T) (*RentalService, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() {
        assert.NoError(t, mock.ExpectationsWereMet())
        db.Close()
    })
    svc := NewRentalService(
        db,
        repository.NewFilmRepo(db),
        repository.NewInventoryRepo(db),
        repository.NewRentalRepo(db),
        repository.NewCustomerRepo(db),
    )
    svc.now = func() time.Time { return fixedNow }
    return svc, mock
}

// The allocation and return queries are matched in full: the lowest-id
// selection and the rental_date/rental_id ordering are contracts, and a
// regression dropping an ORDER BY must fail these tests.
const (
    filmExistsQ     = `SELECT 1 FROM film WHERE film_id = ?`
    customerExistsQ = `SELECT 1 FROM customer WHERE customer_id = ?`
    freeUnitQ       = `SELECT i.inventory_id
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
    countFreeQ = `SELECT COUNT(*)
               FROM inventory i
               WHERE i.film_id = ?
                 AND NOT EXISTS (
                     SELECT 1 FROM rental r
                     WHERE r.inventory_id = i.inventory_id
                       AND r.return_date IS NULL
                 )`
    insertRentalQ = `INSERT INTO rental (inventory_id, customer_id, rental_date) VALUES (?, ?, ?)`
    oldestOpenQ   = `SELECT r.rental_id
               FROM rental r
               WHERE r.customer_id = ?
                 AND r.return_date IS NULL
                 AND r.inventory_id IN (SELECT inventory_id FROM inventory WHERE film_id = ?)
               ORDER BY r.rental_date ASC, r.rental_id ASC
               LIMIT 1
               FOR UPDATE`
    closeRentalQ = `UPDATE rental SET return_date = ? WHERE rental_id = ? AND return_date IS NULL`
)

func expectFilmExists(mock sqlmock.Sqlmock, filmID uint64) {
    mock.ExpectQuery(regexp.QuoteMeta(filmExistsQ)).
        WithArgs(filmID).
        WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
}

func expectCustomerExists(mock sqlmock.Sqlmock, customerID uint64) {
    mock.ExpectQuery(regexp.QuoteMeta(customerExistsQ)).
        WithArgs(customerID).
        WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
}

func TestRentAllocatesLowestFreeUnit(t *testing.T) {
    svc, mock := newRentalService(t)

    mock.ExpectBegin()
    expectFilmExists(mock, 3)
    expectCustomerExists(mock, 9)
    mock.ExpectQuery(regexp.QuoteMeta(freeUnitQ)).
        WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"inventory_id"}).AddRow(42))
    mock.ExpectExec(regexp.QuoteMeta(insertRentalQ)).
        WithArgs(uint64(42), uint64(9), fixedNow).
        WillReturnResult(sqlmock.NewResult(7, 1))
    mock.ExpectCommit()

    res, err := svc.Rent(context.Background(), 9, 3)
    require.NoError(t, err)
    assert.Equal(t, uint64(7), res.RentalID)
    assert.Equal(t, uint64(42), res.UnitID)
    assert.Equal(t, fixedNow, res.RentedAt)
}

func TestRentUnknownFilm(t *testing.T) {
    svc, mock := newRentalService(t)

    mock.ExpectBegin()
    mock.ExpectQuery(regexp.QuoteMeta(filmExistsQ)).
        WithArgs(uint64(999)).
        WillReturnError(sql.ErrNoRows)
    mock.ExpectRollback()

    _, err := svc.Rent(context.Background(), 9, 999)
    assert.ErrorIs(t, err, repository.ErrFilmNotFound)
}

func TestRentUnknownCustomer(t *testing.T) {
    svc, mock := newRentalService(t)

    mock.ExpectBegin()
    expectFilmExists(mock, 3)
    mock.ExpectQuery(regexp.QuoteMeta(customerExistsQ)).
        WithArgs(uint64(888)).
        WillReturnError(sql.ErrNoRows)
    mock.ExpectRollback()

    _, err := svc.Rent(context.Background(), 888, 3)
    assert.ErrorIs(t, err, repository.ErrCustomerNotFound)
}

// Every copy out: the free-unit read comes back empty and no rental row is
// written.  The same path covers the loser of a last-copy race, which
// re-evaluates after the winner commits and finds nothing.
func TestRentNoFreeCopy(t *testing.T) {
    svc, mock := newRentalService(t)

    mock.ExpectBegin()
    expectFilmExists(mock, 3)
    expectCustomerExists(mock, 9)
    mock.ExpectQuery(regexp.QuoteMeta(freeUnitQ)).
        WithArgs(uint64(3)).
        WillReturnError(sql.ErrNoRows)
    mock.ExpectRollback()

    _, err := svc.Rent(context.Background(), 9, 3)
    assert.ErrorIs(t, err, repository.ErrNoAvailableCopy)
}

// A second rental of the same film by the same customer goes through the
// exact same path; nothing in the flow inspects the customer's other open
// rentals.
func TestRentSameFilmTwice(t *testing.T) {
    svc, mock := newRentalService(t)

    for _, unit := range []int64{42, 43} {
        mock.ExpectBegin()
        expectFilmExists(mock, 3)
        expectCustomerExists(mock, 9)
        mock.ExpectQuery(regexp.QuoteMeta(freeUnitQ)).
            WithArgs(uint64(3)).
            WillReturnRows(sqlmock.NewRows([]string{"inventory_id"}).AddRow(unit))
        mock.ExpectExec(regexp.QuoteMeta(insertRentalQ)).
            WithArgs(uint64(unit), uint64(9), fixedNow).
            WillReturnResult(sqlmock.NewResult(unit+100, 1))
        mock.ExpectCommit()
    }

    first, err := svc.Rent(context.Background(), 9, 3)
    require.NoError(t, err)
    second, err := svc.Rent(context.Background(), 9, 3)
    require.NoError(t, err)
    assert.NotEqual(t, first.UnitID, second.UnitID)
}

func TestRentInsertFailureRollsBack(t *testing.T) {
    svc, mock := newRentalService(t)

    mock.ExpectBegin()
    expectFilmExists(mock, 3)
    expectCustomerExists(mock, 9)
    mock.ExpectQuery(regexp.QuoteMeta(freeUnitQ)).
        WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"inventory_id"}).AddRow(42))
    mock.ExpectExec(regexp.QuoteMeta(insertRentalQ)).
        WillReturnError(sql.ErrConnDone)
    mock.ExpectRollback()

    _, err := svc.Rent(context.Background(), 9, 3)
    assert.Error(t, err)
}

func TestReturnClosesOldestOpenRental(t *testing.T) {
    svc, mock := newRentalService(t)

    mock.ExpectBegin()
    mock.ExpectQuery(regexp.QuoteMeta(oldestOpenQ)).
        WithArgs(uint64(9), uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"rental_id"}).AddRow(11))
    mock.ExpectExec(regexp.QuoteMeta(closeRentalQ)).
        WithArgs(fixedNow, uint64(11)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    res, err := svc.Return(context.Background(), 9, 3)
    require.NoError(t, err)
    assert.Equal(t, uint64(11), res.RentalID)
    assert.Equal(t, fixedNow, res.ReturnedAt)
}

// No open rental for the pair: nothing is written, nothing is committed.
func TestReturnWithoutOpenRental(t *testing.T) {
    svc, mock := newRentalService(t)

    mock.ExpectBegin()
    mock.ExpectQuery(regexp.QuoteMeta(oldestOpenQ)).
        WithArgs(uint64(9), uint64(3)).
        WillReturnError(sql.ErrNoRows)
    mock.ExpectRollback()

    _, err := svc.Return(context.Background(), 9, 3)
    assert.ErrorIs(t, err, repository.ErrNoOpenRental)
}

// The close is conditional on return_date IS NULL; zero rows affected means
// someone else closed the rental first and the whole transaction is abandoned.
func TestReturnLostRaceRollsBack(t *testing.T) {
    svc, mock := newRentalService(t)

    mock.ExpectBegin()
    mock.ExpectQuery(regexp.QuoteMeta(oldestOpenQ)).
        WithArgs(uint64(9), uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"rental_id"}).AddRow(11))
    mock.ExpectExec(regexp.QuoteMeta(closeRentalQ)).
        WithArgs(fixedNow, uint64(11)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectRollback()

    _, err := svc.Return(context.Background(), 9, 3)
    assert.ErrorIs(t, err, repository.ErrNoOpenRental)
}

func TestReturnAfterRentRoundTrip(t *testing.T) {
    svc, mock := newRentalService(t)

    rentAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
    returnAt := rentAt.Add(48 * time.Hour)
    times := []time.Time{rentAt, returnAt}
    svc.now = func() time.Time {
        next := times[0]
        times = times[1:]
        return next
    }

    mock.ExpectBegin()
    expectFilmExists(mock, 3)
    expectCustomerExists(mock, 9)
    mock.ExpectQuery(regexp.QuoteMeta(freeUnitQ)).
        WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"inventory_id"}).AddRow(42))
    mock.ExpectExec(regexp.QuoteMeta(insertRentalQ)).
        WithArgs(uint64(42), uint64(9), rentAt).
        WillReturnResult(sqlmock.NewResult(7, 1))
    mock.ExpectCommit()

    mock.ExpectBegin()
    mock.ExpectQuery(regexp.QuoteMeta(oldestOpenQ)).
        WithArgs(uint64(9), uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"rental_id"}).AddRow(7))
    mock.ExpectExec(regexp.QuoteMeta(closeRentalQ)).
        WithArgs(returnAt, uint64(7)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    rented, err := svc.Rent(context.Background(), 9, 3)
    require.NoError(t, err)
    returned, err := svc.Return(context.Background(), 9, 3)
    require.NoError(t, err)

    assert.Equal(t, rented.RentalID, returned.RentalID)
    assert.False(t, returned.ReturnedAt.Before(rented.RentedAt))
}

const openByCustomerQ = `SELECT rental_id, inventory_id, customer_id, rental_date
               FROM rental
               WHERE customer_id = ? AND return_date IS NULL
               ORDER BY rental_date ASC, rental_id ASC`

func TestOpenRentalsOldestFirst(t *testing.T) {
    svc, mock := newRentalService(t)

    mock.ExpectBegin()
    expectCustomerExists(mock, 9)
    mock.ExpectQuery(regexp.QuoteMeta(openByCustomerQ)).
        WithArgs(uint64(9)).
        WillReturnRows(sqlmock.NewRows([]string{"rental_id", "inventory_id", "customer_id", "rental_date"}).
            AddRow(11, 42, 9, fixedNow.Add(-48*time.Hour)).
            AddRow(15, 43, 9, fixedNow.Add(-2*time.Hour)))
    mock.ExpectCommit()

    rentals, err := svc.OpenRentals(context.Background(), 9)
    require.NoError(t, err)
    require.Len(t, rentals, 2)
    assert.Equal(t, uint64(11), rentals[0].ID)
    assert.Equal(t, uint64(15), rentals[1].ID)
    assert.True(t, rentals[0].RentalDate.Before(rentals[1].RentalDate))
    assert.Nil(t, rentals[0].ReturnDate)
}

func TestOpenRentalsUnknownCustomer(t *testing.T) {
    svc, mock := newRentalService(t)

    mock.ExpectBegin()
    mock.ExpectQuery(regexp.QuoteMeta(customerExistsQ)).
        WithArgs(uint64(404)).
        WillReturnError(sql.ErrNoRows)
    mock.ExpectRollback()

    _, err := svc.OpenRentals(context.Background(), 404)
    assert.ErrorIs(t, err, repository.ErrCustomerNotFound)
}

func TestAvailabilityCountsFreeUnits(t *testing.T) {
    svc, mock := newRentalService(t)

    mock.ExpectBegin()
    expectFilmExists(mock, 3)
    mock.ExpectQuery(regexp.QuoteMeta(countFreeQ)).
        WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
    mock.ExpectCommit()

    n, err := svc.Availability(context.Background(), 3)
    require.NoError(t, err)
    assert.Equal(t, 4, n)
}

func TestAvailabilityUnknownFilm(t *testing.T) {
    svc, mock := newRentalService(t)

    mock.ExpectBegin()
    mock.ExpectQuery(regexp.QuoteMeta(filmExistsQ)).
        WithArgs(uint64(999)).
        WillReturnError(sql.ErrNoRows)
    mock.ExpectRollback()

    _, err := svc.Availability(context.Background(), 999)
    assert.ErrorIs(t, err, repository.ErrFilmNotFound)
}

func TestAvailabilityZeroCopies(t *testing.T) {
    svc, mock := newRentalService(t)

    mock.ExpectBegin()
    expectFilmExists(mock, 3)
    mock.ExpectQuery(regexp.QuoteMeta(countFreeQ)).
        WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
    mock.ExpectCommit()

    n, err := svc.Availability(context.Background(), 3)
    require.NoError(t, err)
    assert.Zero(t, n)
}
