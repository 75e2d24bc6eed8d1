package common

import (
	"testing"

	"fcshop/src/db"
	"fcshop/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqldb,
	}))
	require.NoError(t, err)

	db.NewDB(gormDB)
	return gormDB, mock
}

func eventRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "ticket_price", "capacity", "available"}).
		AddRow(1, "Home Derby", 40.0, 100, 3)
}

func noStaleHolds() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "member_id", "event_id", "quantity", "status"})
}

func TestReserveTicketsRejectsSecondActiveHold(t *testing.T) {
	_, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "events"`).WillReturnRows(eventRows())
	mock.ExpectQuery(`SELECT (.+) FROM "ticket_holds"`).WillReturnRows(noStaleHolds())
	mock.ExpectQuery(`SELECT count\(\*\) FROM "ticket_holds"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	hold, err := ReserveTickets(10, 1, 2)
	assert.Nil(t, hold)
	assert.ErrorIs(t, err, types.ErrDuplicateHold)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveTicketsCapacityExceededMutatesNothing(t *testing.T) {
	_, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "events"`).WillReturnRows(eventRows())
	mock.ExpectQuery(`SELECT (.+) FROM "ticket_holds"`).WillReturnRows(noStaleHolds())
	mock.ExpectQuery(`SELECT count\(\*\) FROM "ticket_holds"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	// 4 requested against 3 available: the guarded decrement matches no row.
	mock.ExpectExec(`UPDATE "events" SET "available"=available - `).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	hold, err := ReserveTickets(10, 1, 4)
	assert.Nil(t, hold)
	assert.ErrorIs(t, err, types.ErrCapacityExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveTicketsReleasesExpiredUnsweptHold(t *testing.T) {
	_, mock := newMockDB(t)

	staleRows := sqlmock.NewRows([]string{"id", "member_id", "event_id", "quantity", "status"}).
		AddRow(4, 10, 1, 2, string(types.HOLD_RESERVED))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "events"`).WillReturnRows(eventRows())
	// The member's old hold expired but the sweep has not run yet: the
	// reserve releases it in-transaction instead of refusing the member.
	mock.ExpectQuery(`SELECT (.+) FROM "ticket_holds"`).WillReturnRows(staleRows)
	mock.ExpectExec(`UPDATE "ticket_holds" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "events" SET "available"=available \+ `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "ticket_holds"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`UPDATE "events" SET "available"=available - `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "membership_standings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "ticket_holds"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	hold, err := ReserveTickets(10, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint(7), hold.ID)
	assert.Equal(t, types.HOLD_RESERVED, hold.Status)
	assert.NotNil(t, hold.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelHoldAlreadyCanceled(t *testing.T) {
	_, mock := newMockDB(t)

	holdRows := sqlmock.NewRows([]string{"id", "member_id", "event_id", "quantity", "status"}).
		AddRow(5, 10, 1, 2, string(types.HOLD_CANCELED))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "ticket_holds"`).WillReturnRows(holdRows)
	mock.ExpectExec(`UPDATE "ticket_holds" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := CancelHold(10, 5)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
