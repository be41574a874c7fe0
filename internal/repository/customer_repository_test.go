package repository

import (
    "context"
    "errors"
    "regexp"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/go-sql-driver/mysql"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestCreateTxNormalizesEmail(t *testing.T) {
    tx, mock := newMockTx(t)
    repo := NewCustomerRepo(nil)

    mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO customer`)).
        WithArgs("Ann", "Lee", "ann.lee@example.com", uint64(3)).
        WillReturnResult(sqlmock.NewResult(5, 1))

    id, err := repo.CreateTx(context.Background(), tx, "Ann", "Lee", "  Ann.Lee@Example.COM ", 3)
    require.NoError(t, err)
    assert.Equal(t, uint64(5), id)
}

func TestCreateTxDuplicateEmail(t *testing.T) {
    tx, mock := newMockTx(t)
    repo := NewCustomerRepo(nil)

    mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO customer`)).
        WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ann.lee@example.com'"})

    _, err := repo.CreateTx(context.Background(), tx, "Ann", "Lee", "ann.lee@example.com", 3)
    assert.ErrorIs(t, err, ErrDuplicateEmail)
}

// Only MySQL error 1062 maps to the duplicate sentinel; everything else
// passes through untouched.
func TestCreateTxOtherMySQLError(t *testing.T) {
    tx, mock := newMockTx(t)
    repo := NewCustomerRepo(nil)

    dbErr := &mysql.MySQLError{Number: 1452, Message: "foreign key constraint fails"}
    mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO customer`)).
        WillReturnError(dbErr)

    _, err := repo.CreateTx(context.Background(), tx, "Ann", "Lee", "ann.lee@example.com", 3)
    assert.NotErrorIs(t, err, ErrDuplicateEmail)
    var me *mysql.MySQLError
    require.True(t, errors.As(err, &me))
    assert.Equal(t, uint16(1452), me.Number)
}

func TestUpdateTxDuplicateEmail(t *testing.T) {
    tx, mock := newMockTx(t)
    repo := NewCustomerRepo(nil)

    mock.ExpectExec(regexp.QuoteMeta(`UPDATE customer SET`)).
        WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

    err := repo.UpdateTx(context.Background(), tx, 5, "Ann", "Lee", "taken@example.com", 3)
    assert.ErrorIs(t, err, ErrDuplicateEmail)
}
