package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 4.5, RoundMoney(4.49775))
	assert.Equal(t, 1.23, RoundMoney(1.234))
	assert.Equal(t, 1.24, RoundMoney(1.236))
	assert.Equal(t, 2.5, RoundMoney(2.5))
	assert.Equal(t, 0.0, RoundMoney(0))
	assert.Equal(t, 59.97, RoundMoney(19.99*3))
}

func TestProportionalShare(t *testing.T) {
	// 60 of a 100 subtotal carries 60% of a 5.00 discount.
	assert.Equal(t, 3.0, ProportionalShare(5, 60, 100))
	assert.Equal(t, 5.0, ProportionalShare(5, 100, 100))
	assert.Equal(t, 0.0, ProportionalShare(5, 0, 100))
	assert.Equal(t, 0.0, ProportionalShare(5, 60, 0))
}

func TestNewConfirmationCode(t *testing.T) {
	a := NewConfirmationCode()
	b := NewConfirmationCode()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
