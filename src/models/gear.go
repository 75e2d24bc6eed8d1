package models

import (
	"fcshop/src/types"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// GearItem is a piece of physical merchandise. Price and catalog fields are
// owned by (external) catalog administration; this subsystem only ever writes
// StockQuantity, and only inside the settlement transaction.
type GearItem struct {
	ID            uint    `gorm:"primarykey" json:"id"`
	Name          string  `json:"name,omitempty"`
	Slug          string  `gorm:"index" json:"slug,omitempty"`
	Description   *string `json:"description,omitempty"`
	PricePerUnit  float64 `json:"price_per_unit"`
	StockQuantity uint    `gorm:"default:0" json:"stock_quantity"`

	types.Timestamps
}

func (g *GearItem) BeforeCreate(tx *gorm.DB) error {
	if g.Slug == "" {
		g.Slug = slug.Make(g.Name)
	}
	return nil
}
