package qrcode

import (
	"encoding/json"
	"fmt"

	"loyalty/internal/domain/service"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// reservationQRType tags payloads that carry a voucher reservation token.
const reservationQRType = "voucher_reservation"

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// QRCodeData represents the QR code data structure
type QRCodeData struct {
	Token string `json:"token"`
	Type  string `json:"type"`
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel string) service.QRCodeService {
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	if size <= 0 {
		size = 256
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// GenerateReservationQR renders a reservation token as a PNG the cashier can scan
func (s *qrcodeService) GenerateReservationQR(token uuid.UUID) ([]byte, error) {
	payload, err := json.Marshal(QRCodeData{
		Token: token.String(),
		Type:  reservationQRType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal QR code data: %w", err)
	}

	qrCode, err := qrcode.New(string(payload), s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}

// ParseReservationQR extracts the reservation token from a scanned payload
func (s *qrcodeService) ParseReservationQR(qrData string) (uuid.UUID, error) {
	var data QRCodeData
	if err := json.Unmarshal([]byte(qrData), &data); err != nil {
		return uuid.Nil, fmt.Errorf("failed to unmarshal QR code data: %w", err)
	}

	if data.Type != reservationQRType {
		return uuid.Nil, fmt.Errorf("invalid QR code type: %s", data.Type)
	}

	token, err := uuid.Parse(data.Token)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse reservation token: %w", err)
	}

	return token, nil
}
