package errors

import (
	"net/http"

	"loyalty/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// PayloadCarrier is implemented by errors that expose structured diagnostics to the client,
// e.g. the coin cap that was exceeded.
type PayloadCarrier interface {
	Payload() any
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
	payload   any
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// Is matches errors by business error code, so copies created by WithDetails or
// WithPayload still match their predefined sentinel.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return t.errorCode == e.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// Payload returns the structured diagnostic attached to the error, if any
func (e *BaseError) Payload() any {
	return e.payload
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	clone := *e
	clone.details = details

	return &clone
}

// WithPayload attaches a structured diagnostic, e.g. map[string]any{"max_coin": 50}
func (e *BaseError) WithPayload(payload any) *BaseError {
	clone := *e
	clone.payload = payload

	return &clone
}

// Predefined error types
var (
	// Lookup errors
	ErrClientNotFound = NewBaseError(
		http.StatusNotFound,
		"CLIENT_NOT_FOUND",
		"Client tidak ditemukan",
		"",
	)

	ErrOrderNotFound = NewBaseError(
		http.StatusNotFound,
		"ORDER_NOT_FOUND",
		"Order tidak ditemukan atau bukan milik Anda",
		"",
	)

	ErrStaffNotFound = NewBaseError(
		http.StatusNotFound,
		"STAFF_NOT_FOUND",
		"Staf dengan peran tersebut tidak ditemukan",
		"",
	)

	ErrVoucherNotFound = NewBaseError(
		http.StatusNotFound,
		"VOUCHER_NOT_FOUND",
		"Voucher tidak ditemukan atau sudah tidak aktif",
		"",
	)

	ErrVoucherNotOwned = NewBaseError(
		http.StatusNotFound,
		"VOUCHER_NOT_OWNED",
		"Voucher tidak ditemukan atau sudah digunakan",
		"",
	)

	ErrReservationNotFound = NewBaseError(
		http.StatusNotFound,
		"RESERVATION_NOT_FOUND",
		"Reservasi voucher tidak ditemukan",
		"",
	)

	// Validation errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Input tidak valid",
		"",
	)

	ErrInvalidUserType = NewBaseError(
		http.StatusBadRequest,
		"INVALID_USER_TYPE",
		"user_type harus salah satu dari: owner, admin, operator, desainer, marketing, kasir",
		"",
	)

	ErrInvalidRating = NewBaseError(
		http.StatusBadRequest,
		"INVALID_RATING",
		"Rating harus bernilai 1 sampai 5",
		"",
	)

	// Coin rule rejections
	ErrInsufficientBalance = NewBaseError(
		http.StatusBadRequest,
		"INSUFFICIENT_BALANCE",
		"Coin tidak cukup",
		"",
	)

	ErrBelowMinimum = NewBaseError(
		http.StatusBadRequest,
		"BELOW_MINIMUM_TRANSACTION",
		"Total transaksi belum mencapai minimum",
		"",
	)

	ErrExceedsCap = NewBaseError(
		http.StatusBadRequest,
		"EXCEEDS_COIN_CAP",
		"Jumlah coin melebihi batas untuk transaksi ini",
		"",
	)

	// Voucher rule rejections
	ErrVoucherNotYetActive = NewBaseError(
		http.StatusBadRequest,
		"VOUCHER_NOT_YET_ACTIVE",
		"Voucher belum bisa digunakan",
		"",
	)

	ErrVoucherExpired = NewBaseError(
		http.StatusBadRequest,
		"VOUCHER_EXPIRED",
		"Voucher sudah kadaluarsa",
		"",
	)

	ErrPaymentNotAllowed = NewBaseError(
		http.StatusBadRequest,
		"PAYMENT_METHOD_NOT_ALLOWED",
		"Metode pembayaran tidak berlaku untuk voucher ini",
		"",
	)

	ErrReservationExpired = NewBaseError(
		http.StatusBadRequest,
		"RESERVATION_EXPIRED",
		"Reservasi voucher sudah kadaluarsa",
		"",
	)

	// State and quota conflicts
	ErrAlreadyClaimed = NewBaseError(
		http.StatusConflict,
		"VOUCHER_ALREADY_CLAIMED",
		"Anda sudah mengklaim voucher ini sebelumnya",
		"",
	)

	ErrQuotaExhausted = NewBaseError(
		http.StatusConflict,
		"VOUCHER_QUOTA_EXHAUSTED",
		"Voucher sudah mencapai batas maksimal penggunaan",
		"",
	)

	ErrUsageLimitReached = NewBaseError(
		http.StatusConflict,
		"VOUCHER_USAGE_LIMIT_REACHED",
		"Anda sudah mencapai batas penggunaan voucher ini",
		"",
	)

	ErrReservationConsumed = NewBaseError(
		http.StatusConflict,
		"RESERVATION_ALREADY_CONSUMED",
		"Reservasi voucher sudah digunakan",
		"",
	)

	// Upstream data integrity
	ErrNotAssigned = NewBaseError(
		http.StatusBadRequest,
		"STAFF_NOT_ASSIGNED",
		"Staf belum ditugaskan untuk pesanan ini",
		"",
	)

	ErrMisconfiguredRule = NewBaseError(
		http.StatusUnprocessableEntity,
		"VOUCHER_RULE_MISCONFIGURED",
		"Aturan voucher tidak valid",
		"",
	)

	// Transaction-related errors
	ErrTransactionConflict = NewBaseError(
		http.StatusConflict,
		"TRANSACTION_CONFLICT",
		"Permintaan bertabrakan dengan transaksi lain, silakan coba lagi",
		"",
	)

	ErrTransactionFailed = NewBaseError(
		http.StatusInternalServerError,
		"TRANSACTION_FAILED",
		"Transaksi database gagal",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Terjadi kesalahan pada sistem",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Data tidak ditemukan",
		"",
	)
)

// IsRetryable reports whether err is a transaction conflict the caller may retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransactionConflict)
}

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "Eksekusi database gagal"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
