// Package handler contains the HTTP handlers for the loyalty API.
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

// CoinHandlerParams holds dependencies for CoinHandler, injected by Fx.
type CoinHandlerParams struct {
	fx.In

	CoinUC       usecase.CoinUsecase
	RedemptionUC usecase.RedemptionUsecase
	Logger       *slog.Logger
}

// CoinHandler serves the coin balance, history and discount endpoints
type CoinHandler struct {
	coinUC       usecase.CoinUsecase
	redemptionUC usecase.RedemptionUsecase
	logger       *slog.Logger
}

// NewCoinHandler is the constructor for CoinHandler
func NewCoinHandler(params CoinHandlerParams) *CoinHandler {
	return &CoinHandler{
		coinUC:       params.CoinUC,
		redemptionUC: params.RedemptionUC,
		logger:       params.Logger,
	}
}

// CoinDiscountRequest is the body of the coin preview endpoint
type CoinDiscountRequest struct {
	CoinsToUse int64 `json:"coins_to_use" validate:"required"`
	OrderTotal int64 `json:"order_total" validate:"required"`
}

// CommitCoinRequest is the body of the coin commit endpoint
type CommitCoinRequest struct {
	CoinsToUse int64     `json:"coins_to_use" validate:"required"`
	OrderTotal int64     `json:"order_total" validate:"required"`
	OrderID    uuid.UUID `json:"order_id" validate:"required"`
}

// GetBalance returns the client's coin balance and its rupiah value
func (h *CoinHandler) GetBalance(c echo.Context) error {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid client ID in token")
	}

	balance, err := h.coinUC.GetBalance(c.Request().Context(), clientID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, balance)
}

// GetHistory returns one page of the client's coin movements, newest first
func (h *CoinHandler) GetHistory(c echo.Context) error {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid client ID in token")
	}

	limit, offset := 0, 0
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).Int("offset", &offset).BindError(); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "limit and offset must be integers")
	}

	page, err := h.coinUC.GetHistory(c.Request().Context(), clientID, limit, offset)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, page)
}

// PreviewDiscount quotes a coin discount without spending anything
func (h *CoinHandler) PreviewDiscount(c echo.Context) error {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid client ID in token")
	}

	var req CoinDiscountRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid coin discount input")
	}
	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	quote, err := h.coinUC.PreviewDiscount(c.Request().Context(), clientID, req.CoinsToUse, req.OrderTotal)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, quote)
}

// CommitDiscount debits coins for an order
func (h *CoinHandler) CommitDiscount(c echo.Context) error {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid client ID in token")
	}

	var req CommitCoinRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid coin commit input")
	}
	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	result, err := h.redemptionUC.CommitCoinDiscount(c.Request().Context(), &usecase.CommitCoinInput{
		ClientID:   clientID,
		CoinsToUse: req.CoinsToUse,
		OrderTotal: req.OrderTotal,
		OrderID:    req.OrderID,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, result)
}
