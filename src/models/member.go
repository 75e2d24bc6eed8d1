package models

import "fcshop/src/types"

// Member is the resolved identity supplied by the (external) auth layer.
// The row exists for foreign keys and receipt mail; this subsystem never
// authenticates.
type Member struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	Email     string `gorm:"uniqueIndex" json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	Surname   string `json:"surname,omitempty"`

	Standings []MembershipStanding `gorm:"foreignKey:member_id" json:"standings,omitempty"`

	types.Timestamps
}
