package models

import (
	"time"

	"fcshop/src/types"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Event is a ticketed match or club event with finite capacity.
//
// Invariant: Available = Capacity − Σ(quantity of reserved holds and
// confirmed tickets). Available is written only by the Reservation Manager
// (reserve, cancel, expiry sweep) and read by everything else; the decrement
// is a single conditional UPDATE so concurrent reserves can never oversell.
type Event struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Name        string     `json:"name,omitempty"`
	Slug        string     `gorm:"index" json:"slug,omitempty"`
	About       *string    `json:"about,omitempty"`
	Location    string     `json:"location,omitempty"`
	DateTime    time.Time  `json:"date_time,omitempty"`
	TicketPrice float64    `json:"ticket_price"`
	Capacity    uint       `json:"capacity"`
	Available   uint       `json:"available"`
	HoldTTLMins *uint      `json:"hold_ttl_minutes,omitempty"`

	Holds []TicketHold `gorm:"foreignKey:event_id" json:"holds,omitempty"`

	types.Timestamps
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.Slug == "" {
		e.Slug = slug.Make(e.Name)
	}
	return nil
}

// HoldTTL returns the event's reservation TTL, falling back to def when no
// per-event override is set.
func (e *Event) HoldTTL(def time.Duration) time.Duration {
	if e.HoldTTLMins != nil && *e.HoldTTLMins > 0 {
		return time.Duration(*e.HoldTTLMins) * time.Minute
	}
	return def
}
