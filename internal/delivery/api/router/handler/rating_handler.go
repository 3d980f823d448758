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

// RatingHandlerParams holds dependencies for RatingHandler, injected by Fx.
type RatingHandlerParams struct {
	fx.In

	RatingUC usecase.RatingUsecase
	Logger   *slog.Logger
}

// RatingHandler serves the staff rating endpoints
type RatingHandler struct {
	ratingUC usecase.RatingUsecase
	logger   *slog.Logger
}

// NewRatingHandler is the constructor for RatingHandler
func NewRatingHandler(params RatingHandlerParams) *RatingHandler {
	return &RatingHandler{
		ratingUC: params.RatingUC,
		logger:   params.Logger,
	}
}

// SubmitRatingRequest is the body of the rating endpoint. The score range is checked by the
// rating use case so that it answers with its own error code.
type SubmitRatingRequest struct {
	OrderID  uuid.UUID `json:"order_id" validate:"required"`
	UserType string    `json:"user_type" validate:"required"`
	Rating   int       `json:"rating"`
	Comment  string    `json:"comment" validate:"max=1000"`
}

// SubmitRating creates or updates the client's rating of a staff member
func (h *RatingHandler) SubmitRating(c echo.Context) error {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid client ID in token")
	}

	var req SubmitRatingRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid rating input")
	}
	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	result, err := h.ratingUC.SubmitRating(c.Request().Context(), &usecase.SubmitRatingInput{
		OrderID:  req.OrderID,
		ClientID: clientID,
		UserType: req.UserType,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	status := http.StatusCreated
	if result.Updated {
		status = http.StatusOK
	}

	return response.Success(c, status, result)
}

// GetPendingRatings lists completed orders that still need ratings
func (h *RatingHandler) GetPendingRatings(c echo.Context) error {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid client ID in token")
	}

	orders, err := h.ratingUC.GetOrdersNeedingRating(c.Request().Context(), clientID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, orders)
}

// GetOrderRatings lists the client's ratings on one order
func (h *RatingHandler) GetOrderRatings(c echo.Context) error {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid client ID in token")
	}

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ORDER_ID", "Invalid order ID format")
	}

	ratings, err := h.ratingUC.GetOrderRatings(c.Request().Context(), orderID, clientID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, ratings)
}
