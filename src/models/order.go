package models

import "fcshop/src/types"

// Order is the persisted record of a confirmed merchandise purchase, created
// atomically by the settlement transaction. Immutable afterwards except for
// Status (refunds happen in an out-of-scope admin flow).
type Order struct {
	ID              uint              `gorm:"primarykey" json:"id"`
	MemberID        uint              `gorm:"index" json:"member_id,omitempty"`
	TotalAmount     float64           `json:"total_amount"`
	DiscountApplied float64           `json:"discount_applied"`
	FinalAmount     float64           `json:"final_amount"`
	Status          types.OrderStatus `gorm:"default:'confirmed'" json:"status,omitempty"`

	Member Member      `gorm:"foreignKey:member_id" json:"-"`
	Lines  []OrderLine `gorm:"foreignKey:order_id" json:"lines,omitempty"`

	types.Timestamps
}

// OrderLine snapshots one gear line at purchase time.
type OrderLine struct {
	ID         uint    `gorm:"primarykey" json:"id"`
	OrderID    uint    `gorm:"index" json:"order_id,omitempty"`
	GearID     uint    `json:"gear_id,omitempty"`
	Quantity   uint    `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`

	Gear GearItem `gorm:"foreignKey:gear_id" json:"gear,omitempty"`

	types.Timestamps
}
