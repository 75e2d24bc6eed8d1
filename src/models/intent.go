package models

import "fcshop/src/types"

// CheckoutIntent pins a priced preview to an external payment reference
// while the processor confirmation is outstanding. It is the persisted state
// of a checkout attempt: awaiting_confirmation → committed | failed. The
// attempt before the processor returns a reference is never persisted.
//
// Nothing here is applied to any ledger until Settle commits; the row only
// records what the member agreed to pay and which holds/lines the intent
// covers, so settlement can re-validate against live data.
type CheckoutIntent struct {
	ID               uint               `gorm:"primarykey" json:"id"`
	Reference        string             `gorm:"uniqueIndex" json:"reference,omitempty"`
	MemberID         uint               `gorm:"index" json:"member_id,omitempty"`
	Processor        types.Processor    `json:"processor,omitempty"`
	Status           types.IntentStatus `gorm:"default:'awaiting_confirmation'" json:"status,omitempty"`
	GearLines        types.JSONBArray   `gorm:"type:jsonb" json:"gear_lines,omitempty"`
	HoldIDs          types.JSONBArray   `gorm:"type:jsonb" json:"hold_ids,omitempty"`
	Subtotal         float64            `json:"subtotal"`
	Discount         float64            `json:"discount"`
	CashbackToApply  float64            `json:"cashback_to_apply"`
	ProjectedAccrual float64            `json:"projected_accrual"`
	FinalTotal       float64            `json:"final_total"`

	Member Member `gorm:"foreignKey:member_id" json:"-"`

	types.Timestamps
}
