// Package entity contains the core business objects of the loyalty program,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Client is a customer of the print shop who collects and spends loyalty coins.
// CoinBalance is never negative and only changes through the coin ledger.
type Client struct {
	ID          uuid.UUID `json:"id"`           // The Global Unique Identifier (GUID) for the client.
	FullName    string    `json:"full_name"`    // The client's display name.
	Level       string    `json:"level"`        // Membership tier label, e.g. "Silver".
	CoinBalance int64     `json:"coin_balance"` // Current loyalty coin balance.
	CreatedAt   time.Time `json:"created_at"`   // Timestamp of when the client was registered.
	UpdatedAt   time.Time `json:"updated_at"`   // Timestamp of the last modification.
}
