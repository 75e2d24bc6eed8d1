package common

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"fcshop/src/db"
	"fcshop/src/lib"
	"fcshop/src/models"
	"fcshop/src/types"
	"fcshop/src/utils"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Cart aggregator: the ephemeral gear selection (session-scoped, redis) plus
// the member's reserved ticket holds, priced into one preview.

func cartKey(memberID uint) string {
	return fmt.Sprintf("cart:%d", memberID)
}

// GetCartSelection reads the member's gear selection. An absent key is an
// empty cart.
func GetCartSelection(ctx context.Context, memberID uint) (types.CartSelection, error) {
	rd := lib.GetRedisClient()
	val, err := rd.Get(ctx, cartKey(memberID)).Result()
	if err == redis.Nil {
		return types.CartSelection{}, nil
	} else if err != nil {
		return nil, err
	}
	var selection types.CartSelection
	if err := json.Unmarshal([]byte(val), &selection); err != nil {
		return nil, err
	}
	return selection, nil
}

// PutCartSelection replaces the member's gear selection after checking each
// gear item exists. No expiry: the selection lives until checkout commits or
// the session store clears it.
func PutCartSelection(ctx context.Context, memberID uint, selection types.CartSelection) error {
	dbh := db.GetDb()
	for _, line := range selection {
		var gear models.GearItem
		if err := dbh.
			Model(&models.GearItem{}).
			Where(&models.GearItem{ID: line.GearID}).
			First(&gear).
			Error; err != nil {
			return err
		}
	}
	body, err := json.Marshal(selection)
	if err != nil {
		return err
	}
	rd := lib.GetRedisClient()
	return rd.Set(ctx, cartKey(memberID), string(body), 0).Err()
}

// RemoveCartLine drops one gear line from the selection.
func RemoveCartLine(ctx context.Context, memberID uint, gearID uint) error {
	selection, err := GetCartSelection(ctx, memberID)
	if err != nil {
		return err
	}
	kept := selection[:0]
	for _, line := range selection {
		if line.GearID != gearID {
			kept = append(kept, line)
		}
	}
	body, err := json.Marshal(kept)
	if err != nil {
		return err
	}
	rd := lib.GetRedisClient()
	return rd.Set(ctx, cartKey(memberID), string(body), 0).Err()
}

// ClearCartSelection empties the member's gear selection.
func ClearCartSelection(ctx context.Context, memberID uint) error {
	rd := lib.GetRedisClient()
	return rd.Del(ctx, cartKey(memberID)).Err()
}

// ComputePreview does the preview arithmetic on already-resolved inputs.
// Rates are percentages. cashbackOverride, when set, lowers the applied
// cashback below the default min(balance, afterDiscount); it can never raise
// it above that bound or below zero.
func ComputePreview(gearLines []types.PreviewLine, holds []types.PreviewHold, discountRate, accrualRate, cashbackBalance float64, cashbackOverride *float64) *types.Preview {
	gearTotal := 0.0
	for _, l := range gearLines {
		gearTotal += l.LineTotal
	}
	ticketTotal := 0.0
	for _, h := range holds {
		ticketTotal += h.LineTotal
	}
	gearTotal = utils.RoundMoney(gearTotal)
	ticketTotal = utils.RoundMoney(ticketTotal)
	subtotal := utils.RoundMoney(gearTotal + ticketTotal)
	discount := utils.RoundMoney(subtotal * discountRate / 100)
	afterDiscount := utils.RoundMoney(subtotal - discount)

	cashbackMax := utils.RoundMoney(math.Min(cashbackBalance, afterDiscount))
	cashbackToApply := cashbackMax
	if cashbackOverride != nil {
		cashbackToApply = utils.RoundMoney(math.Min(math.Max(*cashbackOverride, 0), cashbackMax))
	}

	finalTotal := utils.RoundMoney(afterDiscount - cashbackToApply)
	projectedAccrual := utils.RoundMoney(finalTotal * accrualRate / 100)

	return &types.Preview{
		GearLines:        gearLines,
		Holds:            holds,
		GearTotal:        gearTotal,
		TicketTotal:      ticketTotal,
		Subtotal:         subtotal,
		DiscountRate:     discountRate,
		Discount:         discount,
		AfterDiscount:    afterDiscount,
		CashbackMax:      cashbackMax,
		CashbackToApply:  cashbackToApply,
		FinalTotal:       finalTotal,
		AccrualRate:      accrualRate,
		ProjectedAccrual: projectedAccrual,
	}
}

// BuildPreview resolves live gear prices and the member's reserved holds and
// prices the whole checkout. Previews are never persisted; settlement
// recomputes from live data again.
func BuildPreview(tx *gorm.DB, memberID uint, selection types.CartSelection, cashbackOverride *float64) (*types.Preview, error) {
	gearLines := make([]types.PreviewLine, 0, len(selection))
	for _, line := range selection {
		var gear models.GearItem
		if err := tx.
			Model(&models.GearItem{}).
			Where(&models.GearItem{ID: line.GearID}).
			First(&gear).
			Error; err != nil {
			return nil, err
		}
		gearLines = append(gearLines, types.PreviewLine{
			GearID:    gear.ID,
			Name:      gear.Name,
			Quantity:  line.Quantity,
			UnitPrice: gear.PricePerUnit,
			LineTotal: utils.RoundMoney(gear.PricePerUnit * float64(line.Quantity)),
		})
	}

	reserved, err := ReservedHolds(tx, memberID)
	if err != nil {
		return nil, err
	}
	holds := make([]types.PreviewHold, 0, len(reserved))
	for _, h := range reserved {
		holds = append(holds, types.PreviewHold{
			HoldID:    h.ID,
			EventID:   h.EventID,
			EventName: h.Event.Name,
			Quantity:  h.Quantity,
			UnitPrice: h.UnitPrice,
			LineTotal: h.TotalPrice,
			ExpiresAt: *h.ExpiresAt,
		})
	}

	standing, err := ActiveStanding(tx, memberID)
	if err != nil {
		return nil, err
	}
	discountRate, accrualRate, balance := 0.0, 0.0, 0.0
	if standing != nil {
		discountRate = standing.Tier.DiscountPercentage
		accrualRate = standing.Tier.CashbackRate
		balance = standing.CashbackBalance
	}

	return ComputePreview(gearLines, holds, discountRate, accrualRate, balance, cashbackOverride), nil
}
