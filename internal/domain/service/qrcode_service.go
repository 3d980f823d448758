package service

import (
	"github.com/google/uuid"
)

// QRCodeService defines the interface for QR code generation and parsing services
type QRCodeService interface {
	// GenerateReservationQR generates a QR code the cashier scans to redeem a voucher reservation
	GenerateReservationQR(token uuid.UUID) ([]byte, error)

	// ParseReservationQR parses QR code data and returns the reservation token
	ParseReservationQR(qrData string) (uuid.UUID, error)
}
