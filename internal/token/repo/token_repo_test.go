package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/onlyarts/service-core-go/internal/status"
	"github.com/ovaphlow/onlyarts/service-core-go/internal/token"
)

func newRepoWithMock(t *testing.T) (*TokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTokenRepo(sqlx.NewDb(db, "postgres")), mock
}

var tokenColumns = []string{"id", "user_id", "token", "valid_from", "valid_until", "status"}

func TestSaveToken(t *testing.T) {
	r, mock := newRepoWithMock(t)
	now := time.Now()
	tok := &token.Token{ID: "1", UserID: "u1", Value: "abc", ValidFrom: now, ValidUntil: now.Add(time.Hour), Status: 0b101}

	mock.ExpectExec(`INSERT INTO tokens`).
		WithArgs("1", "u1", "abc", now, now.Add(time.Hour), tok.Status).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.SaveToken(context.Background(), tok))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindTokenByValue(t *testing.T) {
	r, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM tokens WHERE token = \$1`).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows(tokenColumns).AddRow("1", "u1", "abc", now, now.Add(time.Hour), int64(0b011)))

	tok, err := r.FindTokenByValue(context.Background(), "abc")
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "u1", tok.UserID)
	assert.Equal(t, status.Flags(0b011), tok.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindTokenByValueAbsent(t *testing.T) {
	r, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT .* FROM tokens`).WithArgs("nope").WillReturnRows(sqlmock.NewRows(tokenColumns))

	tok, err := r.FindTokenByValue(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, tok)
}

func TestFindTokenByValueUndefinedBits(t *testing.T) {
	r, mock := newRepoWithMock(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM tokens`).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows(tokenColumns).AddRow("1", "u1", "abc", now, now.Add(time.Hour), int64(0b1101)))

	tok, err := r.FindTokenByValue(context.Background(), "abc")
	assert.Nil(t, tok)
	assert.True(t, errors.Is(err, status.ErrUndefinedBits))
}

func TestFindTokenByValueDBError(t *testing.T) {
	r, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT .* FROM tokens`).WillReturnError(errors.New("db down"))

	_, err := r.FindTokenByValue(context.Background(), "abc")
	assert.EqualError(t, err, "db down")
}

func TestUpdateTokenStatus(t *testing.T) {
	r, mock := newRepoWithMock(t)
	mock.ExpectExec(`UPDATE tokens SET status = \$2 WHERE token = \$1`).
		WithArgs("abc", status.Flags(0b100)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE tokens`).
		WithArgs("gone", status.Flags(0)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := r.UpdateTokenStatus(context.Background(), "abc", 0b100)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.UpdateTokenStatus(context.Background(), "gone", 0)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
