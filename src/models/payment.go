package models

import "fcshop/src/types"

// PaymentRecord is written exactly once per successful settlement. The
// unique TransactionReference is the idempotency key: a duplicate
// confirmation callback hits the constraint and the stored receipt is
// returned instead of re-applying effects.
type PaymentRecord struct {
	ID                   uint                `gorm:"primarykey" json:"id"`
	MemberID             uint                `gorm:"index" json:"member_id,omitempty"`
	Amount               float64             `json:"amount"`
	Processor            types.Processor     `json:"processor,omitempty"`
	TransactionReference string              `gorm:"uniqueIndex" json:"transaction_reference,omitempty"`
	Status               types.PaymentStatus `gorm:"default:'completed'" json:"status,omitempty"`
	OrderID              *uint               `json:"order_id,omitempty"`
	CashbackRedeemed     float64             `json:"cashback_redeemed"`
	CashbackAccrued      float64             `json:"cashback_accrued"`
	ConfirmedHolds       types.JSONBArray    `gorm:"type:jsonb" json:"confirmed_holds,omitempty"`

	Member Member `gorm:"foreignKey:member_id" json:"-"`
	Order  *Order `gorm:"foreignKey:order_id" json:"order,omitempty"`

	types.Timestamps
}
