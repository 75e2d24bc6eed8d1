package models

import (
	"time"

	"fcshop/src/types"
)

// MembershipTier holds the pricing terms applied at checkout: a percentage
// discount on the subtotal and a percentage cashback accrual on the final
// total. Tier administration is out of scope; rows arrive as plain reads.
type MembershipTier struct {
	ID                 uint    `gorm:"primarykey" json:"id"`
	Name               string  `json:"name,omitempty"`
	Description        *string `json:"description,omitempty"`
	Price              float64 `json:"price"`
	DiscountPercentage float64 `json:"discount_percentage"`
	CashbackRate       float64 `json:"cashback_rate"`
	DurationMonths     uint    `gorm:"default:12" json:"duration_months,omitempty"`
	Active             bool    `gorm:"default:true" json:"active"`

	types.Timestamps
}

// MembershipStanding is a member's subscription to a tier plus the running
// cashback balance. Standings are soft-expired by status transition, never
// deleted; CashbackBalance never goes negative (enforced by the conditional
// redeem update).
type MembershipStanding struct {
	ID              uint                 `gorm:"primarykey" json:"id"`
	MemberID        uint                 `json:"member_id,omitempty"`
	TierID          uint                 `json:"tier_id,omitempty"`
	Status          types.StandingStatus `gorm:"default:'active'" json:"status,omitempty"`
	CashbackBalance float64              `gorm:"default:0" json:"cashback_balance"`
	ExpiresAt       *time.Time           `json:"expires_at,omitempty"`

	Member Member         `gorm:"foreignKey:member_id" json:"-"`
	Tier   MembershipTier `gorm:"foreignKey:tier_id" json:"tier,omitempty"`

	types.Timestamps
}
