package models

import (
	"time"

	"fcshop/src/types"
)

// TicketHold is a time-bounded claim on event inventory prior to payment.
//
// Lifecycle: reserved → confirmed (settlement) or reserved → canceled
// (expiry sweep, member cancel). Confirmed and canceled are terminal.
// ExpiresAt is set only while reserved; ConfirmationCode only once
// confirmed. Prices are snapshots taken at reservation time.
type TicketHold struct {
	ID               uint             `gorm:"primarykey" json:"id"`
	MemberID         uint             `gorm:"index" json:"member_id,omitempty"`
	EventID          uint             `gorm:"index" json:"event_id,omitempty"`
	Quantity         uint             `json:"quantity"`
	UnitPrice        float64          `json:"unit_price"`
	TotalPrice       float64          `json:"total_price"`
	DiscountApplied  float64          `json:"discount_applied"`
	FinalPrice       float64          `json:"final_price"`
	Status           types.HoldStatus `gorm:"default:'reserved';index" json:"status,omitempty"`
	ExpiresAt        *time.Time       `json:"expires_at,omitempty"`
	ConfirmationCode *string          `json:"confirmation_code,omitempty"`

	Member Member `gorm:"foreignKey:member_id" json:"-"`
	Event  Event  `gorm:"foreignKey:event_id" json:"event,omitempty"`

	types.Timestamps
}

// Expired reports whether a reserved hold's TTL had passed at the given
// instant. Terminal holds never report expired.
func (h *TicketHold) Expired(now time.Time) bool {
	return h.Status == types.HOLD_RESERVED && h.ExpiresAt != nil && h.ExpiresAt.Before(now)
}
