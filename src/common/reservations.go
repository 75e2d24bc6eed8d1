package common

import (
	"errors"
	"log"
	"time"

	"fcshop/src/config"
	"fcshop/src/db"
	"fcshop/src/models"
	"fcshop/src/types"
	"fcshop/src/utils"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Reservation manager. Owns the hold lifecycle and is the only writer of
// Event.Available.

// ReserveTickets places a time-bounded hold of quantity tickets on an event.
// The availability check and the decrement are a single conditional UPDATE,
// so two concurrent reserves can never both win the last ticket.
func ReserveTickets(memberID uint, eventID uint, quantity uint) (*models.TicketHold, error) {
	dbh := db.GetDb()
	var hold models.TicketHold
	err := dbh.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Event{ID: eventID}).
			First(&event).
			Error; err != nil {
			return err
		}

		// Release this member's expired-but-unswept holds on the event first,
		// so the one-active-hold count and the partial unique index agree on
		// what counts as held.
		var stale []models.TicketHold
		if err := tx.
			Where("member_id = ? AND event_id = ? AND status = ? AND expires_at < ?",
				memberID, eventID, types.HOLD_RESERVED, time.Now()).
			Find(&stale).
			Error; err != nil {
			return err
		}
		for _, h := range stale {
			res := tx.
				Model(&models.TicketHold{}).
				Where("id = ? AND status = ?", h.ID, types.HOLD_RESERVED).
				Update("status", types.HOLD_CANCELED)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}
			if err := tx.
				Model(&models.Event{}).
				Where("id = ?", h.EventID).
				UpdateColumn("available", gorm.Expr("available + ?", h.Quantity)).
				Error; err != nil {
				return err
			}
		}

		var active int64
		if err := tx.
			Model(&models.TicketHold{}).
			Where(&models.TicketHold{MemberID: memberID, EventID: eventID, Status: types.HOLD_RESERVED}).
			Count(&active).
			Error; err != nil {
			return err
		}
		if active >= int64(config.MaxActiveHoldsPerEvent()) {
			return types.ErrDuplicateHold
		}

		res := tx.
			Model(&models.Event{}).
			Where("id = ? AND available >= ?", eventID, quantity).
			UpdateColumn("available", gorm.Expr("available - ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.ErrCapacityExceeded
		}

		standing, err := ActiveStanding(tx, memberID)
		if err != nil {
			return err
		}
		discountRate := 0.0
		if standing != nil {
			discountRate = standing.Tier.DiscountPercentage
		}

		unitPrice := event.TicketPrice
		totalPrice := utils.RoundMoney(unitPrice * float64(quantity))
		discount := utils.RoundMoney(totalPrice * discountRate / 100)
		expiresAt := time.Now().Add(event.HoldTTL(config.HoldTTL()))

		hold = models.TicketHold{
			MemberID:        memberID,
			EventID:         eventID,
			Quantity:        quantity,
			UnitPrice:       unitPrice,
			TotalPrice:      totalPrice,
			DiscountApplied: discount,
			FinalPrice:      utils.RoundMoney(totalPrice - discount),
			Status:          types.HOLD_RESERVED,
			ExpiresAt:       &expiresAt,
		}
		if err := tx.Create(&hold).Error; err != nil {
			// The partial unique index backstops the count above; a loser of
			// that race gets the domain error, not a raw constraint violation.
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return types.ErrDuplicateHold
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[reservations] Member %d reserved %d tickets for event %d, hold %d expires %s\n",
		memberID, quantity, eventID, hold.ID, hold.ExpiresAt.Format(time.RFC3339))
	return &hold, nil
}

// ExpireStaleHolds cancels reserved holds whose TTL has passed and restores
// their quantity to the event's availability. Safe to run concurrently and
// repeatedly: the status guard makes a hold already canceled a no-op.
func ExpireStaleHolds() (int64, error) {
	dbh := db.GetDb()
	var expired int64
	err := dbh.Transaction(func(tx *gorm.DB) error {
		var stale []models.TicketHold
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ? AND expires_at < ?", types.HOLD_RESERVED, time.Now()).
			Find(&stale).
			Error; err != nil {
			return err
		}
		for _, h := range stale {
			res := tx.
				Model(&models.TicketHold{}).
				Where("id = ? AND status = ?", h.ID, types.HOLD_RESERVED).
				Update("status", types.HOLD_CANCELED)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}
			if err := tx.
				Model(&models.Event{}).
				Where("id = ?", h.EventID).
				UpdateColumn("available", gorm.Expr("available + ?", h.Quantity)).
				Error; err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		log.Printf("[reservations] Error sweeping stale holds: %s\n", err.Error())
		return 0, err
	}
	if expired > 0 {
		log.Printf("[reservations] Swept %d stale holds\n", expired)
	}
	return expired, nil
}

// CancelHold is the member-initiated release of a reserved hold.
func CancelHold(memberID uint, holdID uint) error {
	dbh := db.GetDb()
	return dbh.Transaction(func(tx *gorm.DB) error {
		var hold models.TicketHold
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.TicketHold{ID: holdID, MemberID: memberID}).
			First(&hold).
			Error; err != nil {
			return err
		}
		res := tx.
			Model(&models.TicketHold{}).
			Where("id = ? AND status = ?", holdID, types.HOLD_RESERVED).
			Update("status", types.HOLD_CANCELED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.
			Model(&models.Event{}).
			Where("id = ?", hold.EventID).
			UpdateColumn("available", gorm.Expr("available + ?", hold.Quantity)).
			Error
	})
}

// ConfirmHold flips a reserved hold to confirmed inside the settlement
// transaction: stamps a confirmation code and clears the expiry. Does not
// touch availability (that was decremented at reservation time). The status
// guard loses gracefully to a concurrent sweep.
func ConfirmHold(tx *gorm.DB, hold *models.TicketHold, now time.Time) (string, error) {
	if hold.Status != types.HOLD_RESERVED || hold.Expired(now) {
		return "", types.ErrHoldExpired
	}
	code := utils.NewConfirmationCode()
	res := tx.
		Model(&models.TicketHold{}).
		Where("id = ? AND status = ?", hold.ID, types.HOLD_RESERVED).
		Updates(map[string]any{
			"status":            types.HOLD_CONFIRMED,
			"confirmation_code": code,
			"expires_at":        nil,
		})
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", types.ErrHoldExpired
	}
	return code, nil
}

// ReservedHolds returns the member's active holds with events preloaded,
// soonest expiry first.
func ReservedHolds(tx *gorm.DB, memberID uint) ([]models.TicketHold, error) {
	var holds []models.TicketHold
	err := tx.
		Where(&models.TicketHold{MemberID: memberID, Status: types.HOLD_RESERVED}).
		Where("expires_at > ?", time.Now()).
		Preload("Event").
		Order("expires_at ASC").
		Find(&holds).
		Error
	return holds, err
}

// HoldsForMember returns all of a member's holds, newest first.
func HoldsForMember(memberID uint) ([]models.TicketHold, error) {
	var holds []models.TicketHold
	err := db.GetDb().
		Where(&models.TicketHold{MemberID: memberID}).
		Preload("Event").
		Order("created_at DESC").
		Limit(100).
		Find(&holds).
		Error
	return holds, err
}

// GetHold fetches one hold owned by the member.
func GetHold(memberID uint, holdID uint) (*models.TicketHold, error) {
	var hold models.TicketHold
	err := db.GetDb().
		Where(&models.TicketHold{ID: holdID, MemberID: memberID}).
		Preload("Event").
		First(&hold).
		Error
	if err != nil {
		return nil, err
	}
	return &hold, nil
}

// loadHoldsForUpdate locks and returns the given holds.
func loadHoldsForUpdate(tx *gorm.DB, ids []uint) ([]models.TicketHold, error) {
	var holds []models.TicketHold
	if len(ids) == 0 {
		return holds, nil
	}
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN (?)", ids).
		Find(&holds).
		Error
	if err != nil {
		return nil, err
	}
	if len(holds) != len(ids) {
		return nil, errors.New("one or more holds no longer exist")
	}
	return holds, nil
}
