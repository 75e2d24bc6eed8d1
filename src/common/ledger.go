package common

import (
	"errors"
	"log"
	"time"

	"fcshop/src/db"
	"fcshop/src/models"
	"fcshop/src/types"

	"gorm.io/gorm"
)

// Membership ledger. Rates come from the member's active standing; the
// cashback balance is one of the three shared counters and is only ever
// written through RedeemCashback/AccrueCashback inside a settlement
// transaction.

// ActiveStanding returns the member's current active standing with its tier
// preloaded, or nil when the member has none.
func ActiveStanding(tx *gorm.DB, memberID uint) (*models.MembershipStanding, error) {
	var standing models.MembershipStanding
	err := tx.
		Model(&models.MembershipStanding{}).
		Where(&models.MembershipStanding{MemberID: memberID, Status: types.STANDING_ACTIVE}).
		Preload("Tier").
		Order("created_at DESC").
		First(&standing).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &standing, nil
}

// DiscountRateFor returns the member's tier discount percentage, 0 without
// an active standing.
func DiscountRateFor(memberID uint) (float64, error) {
	standing, err := ActiveStanding(db.GetDb(), memberID)
	if err != nil || standing == nil {
		return 0, err
	}
	return standing.Tier.DiscountPercentage, nil
}

// AccrualRateFor returns the member's cashback accrual percentage, 0 without
// an active standing.
func AccrualRateFor(memberID uint) (float64, error) {
	standing, err := ActiveStanding(db.GetDb(), memberID)
	if err != nil || standing == nil {
		return 0, err
	}
	return standing.Tier.CashbackRate, nil
}

// AvailableCashback returns the member's current redeemable balance.
func AvailableCashback(memberID uint) (float64, error) {
	standing, err := ActiveStanding(db.GetDb(), memberID)
	if err != nil || standing == nil {
		return 0, err
	}
	return standing.CashbackBalance, nil
}

// RedeemCashback decrements the member's balance by amount inside the given
// transaction. The floor check and the decrement are one conditional UPDATE:
// a redemption can never drive the balance negative, and a redemption whose
// settlement rolls back rolls back with it.
func RedeemCashback(tx *gorm.DB, memberID uint, amount float64) error {
	if amount == 0 {
		return nil
	}
	if amount < 0 {
		return types.ErrInsufficientCashback
	}
	res := tx.
		Model(&models.MembershipStanding{}).
		Where("member_id = ? AND status = ? AND cashback_balance >= ?", memberID, types.STANDING_ACTIVE, amount).
		UpdateColumn("cashback_balance", gorm.Expr("cashback_balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.ErrInsufficientCashback
	}
	return nil
}

// AccrueCashback increments the member's balance by amount inside the given
// transaction. A member without an active standing accrues nothing (their
// accrual rate is 0, so amount is 0 too).
func AccrueCashback(tx *gorm.DB, memberID uint, amount float64) error {
	if amount <= 0 {
		return nil
	}
	res := tx.
		Model(&models.MembershipStanding{}).
		Where("member_id = ? AND status = ?", memberID, types.STANDING_ACTIVE).
		UpdateColumn("cashback_balance", gorm.Expr("cashback_balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	return nil
}

// ExpireLapsedStandings flips active standings past their expiry date to
// expired. Run opportunistically before membership reads, like the hold
// sweep. Idempotent.
func ExpireLapsedStandings() (int64, error) {
	dbh := db.GetDb()
	res := dbh.
		Model(&models.MembershipStanding{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", types.STANDING_ACTIVE, time.Now()).
		Update("status", types.STANDING_EXPIRED)
	if res.Error != nil {
		log.Printf("[ledger] Error expiring standings: %s\n", res.Error.Error())
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("[ledger] Expired %d lapsed standings\n", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
