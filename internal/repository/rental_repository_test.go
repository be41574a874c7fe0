package repository

import (
    "context"
    "database/sql"
    "regexp"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

var returnedAt = time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)

// Matched in full so the FIFO ordering clause is part of the contract.
const oldestOpenForFilmQ = `SELECT r.rental_id
               FROM rental r
               WHERE r.customer_id = ?
                 AND r.return_date IS NULL
                 AND r.inventory_id IN (SELECT inventory_id FROM inventory WHERE film_id = ?)
               ORDER BY r.rental_date ASC, r.rental_id ASC
               LIMIT 1
               FOR UPDATE`

func TestCloseTxClosesOpenRental(t *testing.T) {
    tx, mock := newMockTx(t)
    repo := NewRentalRepo(nil)

    mock.ExpectExec(regexp.QuoteMeta(`UPDATE rental SET return_date = ? WHERE rental_id = ? AND return_date IS NULL`)).
        WithArgs(returnedAt, uint64(11)).
        WillReturnResult(sqlmock.NewResult(0, 1))

    closed, err := repo.CloseTx(context.Background(), tx, 11, returnedAt)
    require.NoError(t, err)
    assert.True(t, closed)
}

// The IS NULL guard makes the close a no-op on an already-closed rental.
func TestCloseTxAlreadyClosed(t *testing.T) {
    tx, mock := newMockTx(t)
    repo := NewRentalRepo(nil)

    mock.ExpectExec(regexp.QuoteMeta(`UPDATE rental SET return_date = ?`)).
        WithArgs(returnedAt, uint64(11)).
        WillReturnResult(sqlmock.NewResult(0, 0))

    closed, err := repo.CloseTx(context.Background(), tx, 11, returnedAt)
    require.NoError(t, err)
    assert.False(t, closed)
}

func TestOldestOpenForFilmTx(t *testing.T) {
    tx, mock := newMockTx(t)
    repo := NewRentalRepo(nil)

    mock.ExpectQuery(regexp.QuoteMeta(oldestOpenForFilmQ)).
        WithArgs(uint64(9), uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"rental_id"}).AddRow(11))

    id, err := repo.OldestOpenForFilmTx(context.Background(), tx, 9, 3)
    require.NoError(t, err)
    assert.Equal(t, uint64(11), id)
}

func TestOldestOpenForFilmTxNone(t *testing.T) {
    tx, mock := newMockTx(t)
    repo := NewRentalRepo(nil)

    mock.ExpectQuery(regexp.QuoteMeta(oldestOpenForFilmQ)).
        WithArgs(uint64(9), uint64(3)).
        WillReturnError(sql.ErrNoRows)

    _, err := repo.OldestOpenForFilmTx(context.Background(), tx, 9, 3)
    assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCreateTxStoresUTC(t *testing.T) {
    tx, mock := newMockTx(t)
    repo := NewRentalRepo(nil)

    local := time.Date(2025, 6, 1, 14, 0, 0, 0, time.FixedZone("CEST", 2*3600))

    mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO rental (inventory_id, customer_id, rental_date) VALUES (?, ?, ?)`)).
        WithArgs(uint64(42), uint64(9), local.UTC()).
        WillReturnResult(sqlmock.NewResult(7, 1))

    id, err := repo.CreateTx(context.Background(), tx, 42, 9, local)
    require.NoError(t, err)
    assert.Equal(t, uint64(7), id)
}
