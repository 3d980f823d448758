// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"loyalty/internal/domain/entity"
	"loyalty/internal/errors"

	"github.com/google/uuid"
)

// Domain-specific errors for client persistence.
var (
	// ErrClientNotFound is returned when a client is not found.
	ErrClientNotFound = errors.New("client not found")
	// ErrInsufficientCoins is returned when a debit would make the coin balance negative.
	ErrInsufficientCoins = errors.New("insufficient coin balance")
)

// ClientRepository defines the interface for client-related database operations.
type ClientRepository interface {
	// FindClientByID retrieves a client by ID.
	FindClientByID(ctx context.Context, id uuid.UUID) (*entity.Client, error)

	// FindClientByIDForUpdate retrieves a client and locks the row until the transaction ends.
	FindClientByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Client, error)

	// AdjustCoinBalance adds delta (which may be negative) to the balance and returns the new balance.
	// It fails with ErrInsufficientCoins instead of letting the balance drop below zero.
	AdjustCoinBalance(ctx context.Context, id uuid.UUID, delta int64) (int64, error)
}
