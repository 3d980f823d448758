package handler

import (
	"log/slog"
	"net/http"

	"loyalty/internal/delivery/api/middleware"
	"loyalty/internal/delivery/api/response"
	"loyalty/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// VoucherHandlerParams holds dependencies for VoucherHandler, injected by Fx.
type VoucherHandlerParams struct {
	fx.In

	VoucherUC    usecase.VoucherUsecase
	RedemptionUC usecase.RedemptionUsecase
	Logger       *slog.Logger
}

// VoucherHandler serves the voucher wallet, claim and reservation endpoints
type VoucherHandler struct {
	voucherUC    usecase.VoucherUsecase
	redemptionUC usecase.RedemptionUsecase
	logger       *slog.Logger
}

// NewVoucherHandler is the constructor for VoucherHandler
func NewVoucherHandler(params VoucherHandlerParams) *VoucherHandler {
	return &VoucherHandler{
		voucherUC:    params.VoucherUC,
		redemptionUC: params.RedemptionUC,
		logger:       params.Logger,
	}
}

// ClaimVoucherRequest is the body of the claim endpoint
type ClaimVoucherRequest struct {
	Code string `json:"code" validate:"required"`
}

// VoucherOrderRequest describes the order a voucher is validated or reserved for
type VoucherOrderRequest struct {
	Code          string `json:"code" validate:"required"`
	OrderTotal    int64  `json:"order_total" validate:"required"`
	PaymentMethod string `json:"payment_method"`
}

// RedeemReservationRequest names a reservation by token or by its scanned QR payload
type RedeemReservationRequest struct {
	Token   uuid.UUID `json:"token" validate:"required_without=QRData"`
	QRData  string    `json:"qr_data" validate:"required_without=Token"`
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

// GetMyVouchers lists the client's unused vouchers
func (h *VoucherHandler) GetMyVouchers(c echo.Context) error {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid client ID in token")
	}

	vouchers, err := h.voucherUC.GetMyVouchers(c.Request().Context(), clientID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, vouchers)
}

// GetAvailableVouchers lists the vouchers open for claiming
func (h *VoucherHandler) GetAvailableVouchers(c echo.Context) error {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid client ID in token")
	}

	vouchers, err := h.voucherUC.GetAvailableVouchers(c.Request().Context(), clientID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, vouchers)
}

// ClaimVoucher adds a voucher to the client's wallet
func (h *VoucherHandler) ClaimVoucher(c echo.Context) error {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid client ID in token")
	}

	var req ClaimVoucherRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid claim input")
	}
	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	claimed, err := h.redemptionUC.ClaimVoucher(c.Request().Context(), clientID, req.Code)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, claimed)
}

// ValidateVoucher previews a voucher discount on an order
func (h *VoucherHandler) ValidateVoucher(c echo.Context) error {
	input, err := h.bindOrderInput(c)
	if err != nil || input == nil {
		return err
	}

	result, err := h.voucherUC.ValidateForOrder(c.Request().Context(), input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result)
}

// ReserveVoucher validates a voucher and holds the quote under a reservation token
func (h *VoucherHandler) ReserveVoucher(c echo.Context) error {
	input, err := h.bindOrderInput(c)
	if err != nil || input == nil {
		return err
	}

	result, err := h.redemptionUC.ReserveVoucher(c.Request().Context(), input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, result)
}

// GetReservationQR renders a pending reservation as a PNG QR code
func (h *VoucherHandler) GetReservationQR(c echo.Context) error {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid client ID in token")
	}

	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		return response.BadRequest(c, "INVALID_TOKEN_FORMAT", "Invalid reservation token format")
	}

	png, err := h.redemptionUC.GenerateReservationQR(c.Request().Context(), clientID, token)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// RedeemReservation applies a reserved voucher to an order
func (h *VoucherHandler) RedeemReservation(c echo.Context) error {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid client ID in token")
	}

	var req RedeemReservationRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid redeem input")
	}
	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	history, err := h.redemptionUC.RedeemReservation(c.Request().Context(), &usecase.RedeemReservationInput{
		ClientID: clientID,
		Token:    req.Token,
		QRData:   req.QRData,
		OrderID:  req.OrderID,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, history)
}

// bindOrderInput writes the error response itself and returns a nil input when the request is rejected.
func (h *VoucherHandler) bindOrderInput(c echo.Context) (*usecase.VoucherOrderInput, error) {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		return nil, response.Unauthorized(c, "INVALID_TOKEN", "Invalid client ID in token")
	}

	var req VoucherOrderRequest
	if err := c.Bind(&req); err != nil {
		return nil, response.BindingError(c, "INVALID_INPUT", "Invalid voucher input")
	}
	if err := c.Validate(&req); err != nil {
		return nil, response.ValidationError(c, err)
	}

	return &usecase.VoucherOrderInput{
		ClientID:      clientID,
		Code:          req.Code,
		OrderTotal:    req.OrderTotal,
		PaymentMethod: req.PaymentMethod,
	}, nil
}
