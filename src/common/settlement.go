package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fcshop/src/config"
	"fcshop/src/db"
	"fcshop/src/lib/mailer"
	"fcshop/src/models"
	"fcshop/src/payments"
	"fcshop/src/types"
	"fcshop/src/utils"

	"gorm.io/gorm"
)

// Settlement engine. A persisted checkout attempt moves
// awaiting_confirmation → committed | failed; the commit itself is one
// database transaction so no other request ever observes a partially
// settled checkout.

// IntentHandle is what the checkout UI needs to drive the external
// processor.
type IntentHandle struct {
	IntentID    uint           `json:"intent_id"`
	Reference   string         `json:"reference"`
	ClientToken string         `json:"client_token"`
	Preview     *types.Preview `json:"preview"`
}

// CreateCheckoutIntent reprices the checkout from live data, opens an intent
// with the chosen processor and pins the agreed figures to the external
// reference. Nothing is applied to any ledger here. The gateway call happens
// outside any database transaction.
func CreateCheckoutIntent(ctx context.Context, memberID uint, selection types.CartSelection, cashbackOverride *float64, processor types.Processor) (*IntentHandle, error) {
	if _, err := ExpireStaleHolds(); err != nil {
		return nil, err
	}

	dbh := db.GetDb()
	preview, err := BuildPreview(dbh, memberID, selection, cashbackOverride)
	if err != nil {
		return nil, err
	}
	if len(preview.GearLines) == 0 && len(preview.Holds) == 0 {
		return nil, errors.New("nothing to check out")
	}

	gw, err := payments.For(processor)
	if err != nil {
		return nil, err
	}
	metadata := map[string]string{
		"member_id":        fmt.Sprintf("%d", memberID),
		"cashback_applied": fmt.Sprintf("%.2f", preview.CashbackToApply),
		"cashback_earned":  fmt.Sprintf("%.2f", preview.ProjectedAccrual),
	}
	reference, clientToken, err := gw.CreateIntent(ctx, preview.FinalTotal, config.Currency(), metadata)
	if err != nil {
		return nil, err
	}

	gearLines := make(types.JSONBArray, 0, len(preview.GearLines))
	for _, l := range preview.GearLines {
		gearLines = append(gearLines, map[string]any{
			"gear_id":    l.GearID,
			"quantity":   l.Quantity,
			"unit_price": l.UnitPrice,
			"line_total": l.LineTotal,
		})
	}
	holdIDs := make(types.JSONBArray, 0, len(preview.Holds))
	for _, h := range preview.Holds {
		holdIDs = append(holdIDs, h.HoldID)
	}

	intent := models.CheckoutIntent{
		Reference:        reference,
		MemberID:         memberID,
		Processor:        processor,
		Status:           types.INTENT_AWAITING,
		GearLines:        gearLines,
		HoldIDs:          holdIDs,
		Subtotal:         preview.Subtotal,
		Discount:         preview.Discount,
		CashbackToApply:  preview.CashbackToApply,
		ProjectedAccrual: preview.ProjectedAccrual,
		FinalTotal:       preview.FinalTotal,
	}
	if err := dbh.Create(&intent).Error; err != nil {
		return nil, err
	}
	log.Printf("[settlement] Intent %s (%s) opened for member %d, total %.2f\n", reference, processor, memberID, preview.FinalTotal)

	return &IntentHandle{
		IntentID:    intent.ID,
		Reference:   reference,
		ClientToken: clientToken,
		Preview:     preview,
	}, nil
}

// Settle applies a confirmed payment: one all-or-nothing transaction that
// re-validates holds and stock, persists the order, confirms the tickets,
// moves the cashback ledger and records the payment. Idempotent on the
// external reference; a duplicate callback gets the stored receipt back and
// changes nothing.
func Settle(ctx context.Context, reference string) (*types.Receipt, error) {
	dbh := db.GetDb()

	var existing models.PaymentRecord
	err := dbh.
		Model(&models.PaymentRecord{}).
		Where(&models.PaymentRecord{TransactionReference: reference}).
		First(&existing).
		Error
	if err == nil {
		log.Printf("[settlement] Replaying receipt for reference %s\n", reference)
		return replayReceipt(&existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var receipt types.Receipt
	var intent models.CheckoutIntent
	err = dbh.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where(&models.CheckoutIntent{Reference: reference}).
			First(&intent).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrIntentNotFound
			}
			return err
		}
		if intent.Status == types.INTENT_COMMITTED {
			return types.ErrDuplicateSettlement
		}

		now := time.Now()
		holds, err := loadHoldsForUpdate(tx, intentHoldIDs(&intent))
		if err != nil {
			return err
		}
		for i := range holds {
			if holds[i].Status != types.HOLD_RESERVED || holds[i].Expired(now) {
				return types.ErrHoldExpired
			}
		}

		gearLines := intentGearLines(&intent)
		var orderID *uint
		if len(gearLines) > 0 {
			gearTotal := 0.0
			for _, l := range gearLines {
				gearTotal += l.LineTotal
			}
			gearTotal = utils.RoundMoney(gearTotal)
			discountShare := utils.ProportionalShare(intent.Discount, gearTotal, intent.Subtotal)

			order := models.Order{
				MemberID:        intent.MemberID,
				TotalAmount:     gearTotal,
				DiscountApplied: discountShare,
				FinalAmount:     utils.RoundMoney(gearTotal - discountShare),
				Status:          types.ORDER_CONFIRMED,
			}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			for _, l := range gearLines {
				res := tx.
					Model(&models.GearItem{}).
					Where("id = ? AND stock_quantity >= ?", l.GearID, l.Quantity).
					UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", l.Quantity))
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return types.ErrStockExceeded
				}
				line := models.OrderLine{
					OrderID:    order.ID,
					GearID:     l.GearID,
					Quantity:   l.Quantity,
					UnitPrice:  l.UnitPrice,
					TotalPrice: l.LineTotal,
				}
				if err := tx.Create(&line).Error; err != nil {
					return err
				}
			}
			orderID = &order.ID
		}

		codes := make([]string, 0, len(holds))
		confirmed := make(types.JSONBArray, 0, len(holds))
		for i := range holds {
			code, err := ConfirmHold(tx, &holds[i], now)
			if err != nil {
				return err
			}
			codes = append(codes, code)
			confirmed = append(confirmed, code)
		}

		if err := RedeemCashback(tx, intent.MemberID, intent.CashbackToApply); err != nil {
			return err
		}
		if err := AccrueCashback(tx, intent.MemberID, intent.ProjectedAccrual); err != nil {
			return err
		}

		payment := models.PaymentRecord{
			MemberID:             intent.MemberID,
			Amount:               intent.FinalTotal,
			Processor:            intent.Processor,
			TransactionReference: reference,
			Status:               types.PAYMENT_COMPLETED,
			OrderID:              orderID,
			CashbackRedeemed:     intent.CashbackToApply,
			CashbackAccrued:      intent.ProjectedAccrual,
			ConfirmedHolds:       confirmed,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if err := tx.
			Model(&models.CheckoutIntent{}).
			Where("id = ?", intent.ID).
			Update("status", types.INTENT_COMMITTED).
			Error; err != nil {
			return err
		}

		receipt = types.Receipt{
			Reference:         reference,
			Processor:         intent.Processor,
			Amount:            intent.FinalTotal,
			OrderID:           orderID,
			ConfirmationCodes: codes,
			CashbackRedeemed:  intent.CashbackToApply,
			CashbackAccrued:   intent.ProjectedAccrual,
			SettledAt:         payment.CreatedAt,
		}
		return nil
	})
	if err != nil {
		// A concurrent settle may have won the unique reference; their
		// receipt is ours too.
		var winner models.PaymentRecord
		ferr := dbh.
			Model(&models.PaymentRecord{}).
			Where(&models.PaymentRecord{TransactionReference: reference}).
			First(&winner).
			Error
		if ferr == nil {
			log.Printf("[settlement] Replaying receipt for reference %s after losing settle race\n", reference)
			return replayReceipt(&winner), nil
		}
		if isRevalidationFailure(err) {
			markIntentFailed(reference)
		}
		log.Printf("[settlement] Settle failed for reference %s: %s\n", reference, err.Error())
		return nil, err
	}

	go func() {
		if err := ClearCartSelection(context.Background(), intent.MemberID); err != nil {
			log.Printf("[settlement] Error clearing cart for member %d: %s\n", intent.MemberID, err.Error())
		}
		var member models.Member
		if err := dbh.First(&member, intent.MemberID).Error; err != nil {
			return
		}
		if member.Email == "" {
			return
		}
		if err := mailer.SendReceipt(member.Email, member.FirstName, &receipt); err != nil {
			log.Printf("[settlement] Error emailing receipt %s: %s\n", reference, err.Error())
		}
	}()

	log.Printf("[settlement] Committed settlement %s for member %d, amount %.2f\n", reference, intent.MemberID, receipt.Amount)
	return &receipt, nil
}

// IntentByReference fetches the checkout intent pinned to an external
// reference.
func IntentByReference(reference string) (*models.CheckoutIntent, error) {
	var intent models.CheckoutIntent
	err := db.GetDb().
		Where(&models.CheckoutIntent{Reference: reference}).
		First(&intent).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrIntentNotFound
		}
		return nil, err
	}
	return &intent, nil
}

// isRevalidationFailure reports whether the commit failed because live state
// no longer matches the intent (funds must then be reversed by the caller
// through the gateway).
func isRevalidationFailure(err error) bool {
	return errors.Is(err, types.ErrHoldExpired) ||
		errors.Is(err, types.ErrStockExceeded) ||
		errors.Is(err, types.ErrInsufficientCashback)
}

func markIntentFailed(reference string) {
	dbh := db.GetDb()
	if err := dbh.
		Model(&models.CheckoutIntent{}).
		Where("reference = ? AND status <> ?", reference, types.INTENT_COMMITTED).
		Update("status", types.INTENT_FAILED).
		Error; err != nil {
		log.Printf("[settlement] Error marking intent %s failed: %s\n", reference, err.Error())
	}
}

func replayReceipt(p *models.PaymentRecord) *types.Receipt {
	codes := make([]string, 0, len(p.ConfirmedHolds))
	for _, c := range p.ConfirmedHolds {
		if s, ok := c.(string); ok {
			codes = append(codes, s)
		}
	}
	return &types.Receipt{
		Reference:         p.TransactionReference,
		Processor:         p.Processor,
		Amount:            p.Amount,
		OrderID:           p.OrderID,
		ConfirmationCodes: codes,
		CashbackRedeemed:  p.CashbackRedeemed,
		CashbackAccrued:   p.CashbackAccrued,
		Replayed:          true,
		SettledAt:         p.CreatedAt,
	}
}

// JSONB numbers round-trip as float64.

func intentHoldIDs(intent *models.CheckoutIntent) []uint {
	ids := make([]uint, 0, len(intent.HoldIDs))
	for _, v := range intent.HoldIDs {
		switch n := v.(type) {
		case float64:
			ids = append(ids, uint(n))
		case uint:
			ids = append(ids, n)
		}
	}
	return ids
}

func intentGearLines(intent *models.CheckoutIntent) []types.PreviewLine {
	lines := make([]types.PreviewLine, 0, len(intent.GearLines))
	for _, v := range intent.GearLines {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		line := types.PreviewLine{}
		if n, ok := m["gear_id"].(float64); ok {
			line.GearID = uint(n)
		} else if n, ok := m["gear_id"].(uint); ok {
			line.GearID = n
		}
		if n, ok := m["quantity"].(float64); ok {
			line.Quantity = uint(n)
		} else if n, ok := m["quantity"].(uint); ok {
			line.Quantity = n
		}
		if n, ok := m["unit_price"].(float64); ok {
			line.UnitPrice = n
		}
		if n, ok := m["line_total"].(float64); ok {
			line.LineTotal = n
		}
		lines = append(lines, line)
	}
	return lines
}
