package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// CoinRule converts coins into rupiah and bounds how many coins one order may spend.
// There is at most one persisted rule; when none exists DefaultCoinRule is used.
type CoinRule struct {
	CoinValue            int64 `json:"coin_value"`              // Rupiah value of one coin.
	MinTransactionForUse int64 `json:"min_transaction_for_use"` // Orders below this total cannot use coins.
	MinTransactionHigh   int64 `json:"min_transaction_high"`    // Orders at or above this total use MaxCoinHigh.
	MaxCoinMid           int64 `json:"max_coin_mid"`            // Coin cap for orders below MinTransactionHigh.
	MaxCoinHigh          int64 `json:"max_coin_high"`           // Coin cap for orders at or above MinTransactionHigh.
	IsDefault            bool  `json:"is_default"`              // True when no rule row exists.
}

// DefaultCoinRule returns the rule used when the rule table is empty: only the coin value is
// configured, there is no minimum and the caps are bounded by the client's balance alone.
func DefaultCoinRule(coinValue int64) *CoinRule {
	return &CoinRule{
		CoinValue:            coinValue,
		MinTransactionForUse: 0,
		MinTransactionHigh:   0,
		MaxCoinMid:           math.MaxInt64,
		MaxCoinHigh:          math.MaxInt64,
		IsDefault:            true,
	}
}

// MaxCoinFor returns the tiered coin cap for the given order total.
func (r *CoinRule) MaxCoinFor(orderTotal int64) int64 {
	if orderTotal >= r.MinTransactionHigh {
		return r.MaxCoinHigh
	}

	return r.MaxCoinMid
}

// CurrencyValue converts a number of coins into rupiah, saturating on overflow.
func (r *CoinRule) CurrencyValue(coins int64) int64 {
	if coins <= 0 || r.CoinValue <= 0 {
		return 0
	}
	if coins > math.MaxInt64/r.CoinValue {
		return math.MaxInt64
	}

	return coins * r.CoinValue
}

// CoinBalance is the quote returned for a client's balance.
type CoinBalance struct {
	ClientID      uuid.UUID `json:"client_id"`
	ClientName    string    `json:"client_name"`
	Level         string    `json:"level"`
	Balance       int64     `json:"balance"`
	CoinValue     int64     `json:"coin_value"`
	CurrencyValue int64     `json:"currency_value"`
}

// CoinDiscountQuote describes the effect of spending coins on an order.
type CoinDiscountQuote struct {
	CoinsUsed        int64 `json:"coins_used"`
	CoinValue        int64 `json:"coin_value"`
	OrderTotal       int64 `json:"order_total"`
	Discount         int64 `json:"discount"`
	FinalTotal       int64 `json:"final_total"`
	MaxCoin          int64 `json:"max_coin"`
	RemainingBalance int64 `json:"remaining_balance"`
}

// CoinHistoryKind classifies a coin ledger movement.
type CoinHistoryKind string

const (
	// CoinHistoryUse is a debit caused by spending coins on an order.
	CoinHistoryUse CoinHistoryKind = "use"
	// CoinHistoryEarn is a credit granted for a completed order.
	CoinHistoryEarn CoinHistoryKind = "earn"
	// CoinHistoryRefund returns coins from a cancelled order.
	CoinHistoryRefund CoinHistoryKind = "refund"
	// CoinHistoryAdjust is a manual correction.
	CoinHistoryAdjust CoinHistoryKind = "adjust"
)

// CoinHistory is one movement in a client's coin ledger. Amount is signed.
type CoinHistory struct {
	ID           uuid.UUID       `json:"id"`
	ClientID     uuid.UUID       `json:"client_id"`
	OrderID      *uuid.UUID      `json:"order_id,omitempty"`
	Amount       int64           `json:"amount"`
	BalanceAfter int64           `json:"balance_after"`
	Kind         CoinHistoryKind `json:"kind"`
	Note         string          `json:"note"`
	CreatedAt    time.Time       `json:"created_at"`
}
