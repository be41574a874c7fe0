package repository

import (
    "context"
    "database/sql"
    "regexp"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func newMockTx(t *testing.T) (*sql.Tx, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() {
        assert.NoError(t, mock.ExpectationsWereMet())
        db.Close()
    })
    mock.ExpectBegin()
    tx, err := db.Begin()
    require.NoError(t, err)
    return tx, mock
}

func sampleLocation() LocationInput {
    return LocationInput{
        Country:    "USA",
        City:       "Springfield",
        Address:    "12 Elm St",
        District:   "Center",
        PostalCode: "12345",
        Phone:      "555-0101",
    }
}

func expectUpsertChain(mock sqlmock.Sqlmock, countryID, cityID, addressID int64) {
    mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO country (country) VALUES (?)`)).
        WithArgs("USA").
        WillReturnResult(sqlmock.NewResult(countryID, 1))
    mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO city (city, country_id) VALUES (?, ?)`)).
        WithArgs("Springfield", uint64(countryID)).
        WillReturnResult(sqlmock.NewResult(cityID, 1))
    mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO address (address, address2, district, city_id, postal_code, phone)`)).
        WithArgs("12 Elm St", nil, "Center", uint64(cityID), "12345", "555-0101").
        WillReturnResult(sqlmock.NewResult(addressID, 1))
}

func TestUpsertLocationResolvesHierarchy(t *testing.T) {
    tx, mock := newMockTx(t)
    repo := NewLocationRepo(nil)

    expectUpsertChain(mock, 1, 2, 3)

    addressID, err := repo.UpsertLocationTx(context.Background(), tx, sampleLocation())
    require.NoError(t, err)
    assert.Equal(t, uint64(3), addressID)
}

// Upserting the same location twice yields the same ids.  On the second pass
// the database reports the existing rows through LAST_INSERT_ID; the repo
// only relays what the upsert returns.
func TestUpsertLocationIdempotent(t *testing.T) {
    tx, mock := newMockTx(t)
    repo := NewLocationRepo(nil)

    expectUpsertChain(mock, 1, 2, 3)
    expectUpsertChain(mock, 1, 2, 3)

    first, err := repo.UpsertLocationTx(context.Background(), tx, sampleLocation())
    require.NoError(t, err)
    second, err := repo.UpsertLocationTx(context.Background(), tx, sampleLocation())
    require.NoError(t, err)
    assert.Equal(t, first, second)
}

// Empty optional fields are stored as NULL, not empty strings, so the
// (address, city_id) natural key stays clean.
func TestUpsertAddressNullsOptionalFields(t *testing.T) {
    tx, mock := newMockTx(t)
    repo := NewLocationRepo(nil)

    in := sampleLocation()
    in.Address2 = ""
    in.PostalCode = ""

    mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO address`)).
        WithArgs("12 Elm St", nil, "Center", uint64(2), nil, "555-0101").
        WillReturnResult(sqlmock.NewResult(3, 1))

    addressID, err := repo.UpsertAddressTx(context.Background(), tx, in, 2)
    require.NoError(t, err)
    assert.Equal(t, uint64(3), addressID)
}

func TestUpsertCountryError(t *testing.T) {
    tx, mock := newMockTx(t)
    repo := NewLocationRepo(nil)

    mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO country`)).
        WillReturnError(sql.ErrConnDone)

    _, err := repo.UpsertLocationTx(context.Background(), tx, sampleLocation())
    assert.Error(t, err)
}
