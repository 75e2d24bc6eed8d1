package utils

import (
	"math"

	"github.com/google/uuid"
)

// RoundMoney rounds to cents. All settlement math goes through here so the
// totals charged, redeemed and accrued agree with what the preview showed.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// ProportionalShare splits amount by part/whole, in cents. Used to carry the
// membership discount onto the merchandise order when a checkout mixes gear
// and tickets.
func ProportionalShare(amount, part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return RoundMoney(amount * (part / whole))
}

// NewConfirmationCode mints the code stamped on a confirmed ticket hold.
func NewConfirmationCode() string {
	return uuid.New().String()
}
