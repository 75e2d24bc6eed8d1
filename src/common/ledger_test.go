package common

import (
	"testing"

	"fcshop/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestRedeemCashbackZeroIsNoop(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := gormDB.Transaction(func(tx *gorm.DB) error {
		return RedeemCashback(tx, 10, 0)
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeemCashbackNegativeRejected(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := gormDB.Transaction(func(tx *gorm.DB) error {
		return RedeemCashback(tx, 10, -3)
	})
	assert.ErrorIs(t, err, types.ErrInsufficientCashback)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeemCashbackInsufficientBalance(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectBegin()
	// No active standing carries a balance >= 50, so no row matches.
	mock.ExpectExec(`UPDATE "membership_standings" SET "cashback_balance"=cashback_balance - `).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := gormDB.Transaction(func(tx *gorm.DB) error {
		return RedeemCashback(tx, 10, 50)
	})
	assert.ErrorIs(t, err, types.ErrInsufficientCashback)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeemCashbackDecrementsOnce(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "membership_standings" SET "cashback_balance"=cashback_balance - `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := gormDB.Transaction(func(tx *gorm.DB) error {
		return RedeemCashback(tx, 10, 10)
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccrueCashbackZeroIsNoop(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := gormDB.Transaction(func(tx *gorm.DB) error {
		return AccrueCashback(tx, 10, 0)
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
