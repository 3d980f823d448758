package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoinRule_MaxCoinFor(t *testing.T) {
	t.Parallel()

	rule := &CoinRule{
		CoinValue:            800,
		MinTransactionForUse: 20000,
		MinTransactionHigh:   100000,
		MaxCoinMid:           20,
		MaxCoinHigh:          50,
	}

	tests := []struct {
		name       string
		orderTotal int64
		expected   int64
	}{
		{name: "below high tier", orderTotal: 50000, expected: 20},
		{name: "exactly high tier", orderTotal: 100000, expected: 50},
		{name: "above high tier", orderTotal: 150000, expected: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, rule.MaxCoinFor(tt.orderTotal))
		})
	}
}

func TestDefaultCoinRule(t *testing.T) {
	t.Parallel()

	rule := DefaultCoinRule(800)

	assert.True(t, rule.IsDefault)
	assert.Equal(t, int64(800), rule.CoinValue)
	assert.Equal(t, int64(0), rule.MinTransactionForUse)
	assert.Equal(t, int64(math.MaxInt64), rule.MaxCoinFor(1))
	assert.Equal(t, int64(math.MaxInt64), rule.MaxCoinFor(1_000_000))
}

func TestCoinRule_CurrencyValue(t *testing.T) {
	t.Parallel()

	rule := &CoinRule{CoinValue: 800}

	assert.Equal(t, int64(32000), rule.CurrencyValue(40))
	assert.Equal(t, int64(0), rule.CurrencyValue(0))
	assert.Equal(t, int64(0), rule.CurrencyValue(-5))
	assert.Equal(t, int64(math.MaxInt64), rule.CurrencyValue(math.MaxInt64/10))
}
